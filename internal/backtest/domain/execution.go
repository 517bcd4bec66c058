package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrZeroQuantity 拒绝数量为零的模拟成交。
var ErrZeroQuantity = errors.New("simulated fill quantity must be non-zero")

// Fill 一笔模拟成交。Notional 带符号(买入为正), 成本字段恒为非负。
type Fill struct {
	Timestamp    time.Time
	Symbol       string
	Quantity     decimal.Decimal
	FillPrice    decimal.Decimal
	Notional     decimal.Decimal
	Commission   decimal.Decimal
	SlippageCost decimal.Decimal
}

// SimulatedExecutionHandler 按固定滑点与费率生成模拟成交。
// 滑点始终朝不利方向: 买入抬价, 卖出压价。
type SimulatedExecutionHandler struct {
	slippagePct decimal.Decimal
	feeRate     decimal.Decimal
}

func NewSimulatedExecutionHandler(slippagePct, feeRate decimal.Decimal) *SimulatedExecutionHandler {
	return &SimulatedExecutionHandler{slippagePct: slippagePct, feeRate: feeRate}
}

// ExecuteOrder 以参考价叠加不利滑点生成成交回报。
func (h *SimulatedExecutionHandler) ExecuteOrder(ts time.Time, symbol string, quantity, refPrice decimal.Decimal) (*Fill, error) {
	if quantity.IsZero() {
		return nil, ErrZeroQuantity
	}

	one := decimal.NewFromInt(1)
	var fillPrice decimal.Decimal
	if quantity.IsPositive() {
		fillPrice = refPrice.Mul(one.Add(h.slippagePct))
	} else {
		fillPrice = refPrice.Mul(one.Sub(h.slippagePct))
	}

	notional := quantity.Mul(fillPrice)
	commission := notional.Abs().Mul(h.feeRate)
	slippageCost := quantity.Abs().Mul(refPrice).Mul(h.slippagePct)

	return &Fill{
		Timestamp:    ts,
		Symbol:       symbol,
		Quantity:     quantity,
		FillPrice:    fillPrice,
		Notional:     notional,
		Commission:   commission,
		SlippageCost: slippageCost,
	}, nil
}
