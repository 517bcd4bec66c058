// Package domain 提供了执行成本估计与智能订单路由（Smart Order Routing）逻辑。
// 变更说明：实现订单簿深度遍历的成本估计，深度不足时按最后档位外推并
// 标记流动性告警，滑点以成交均价相对中间价的带方向偏移计量。
package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNoLiquidity 订单簿为空或缺少所需方向的档位
	ErrNoLiquidity = errors.New("order book has no usable liquidity")
	// ErrNoVenueAvailable 所有交易场所均无法提供可用订单簿
	ErrNoVenueAvailable = errors.New("no venue returned a usable order book")
)

// PriceLevel 价格档位
type PriceLevel struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// MarketDepth 单一场所的订单簿快照
type MarketDepth struct {
	Venue     string
	Symbol    string
	Bids      []PriceLevel // 价格降序
	Asks      []PriceLevel // 价格升序
	Timestamp time.Time
}

// MidPrice 最优买卖中间价
func (d *MarketDepth) MidPrice() (decimal.Decimal, bool) {
	if len(d.Bids) == 0 || len(d.Asks) == 0 {
		return decimal.Zero, false
	}
	return d.Bids[0].Price.Add(d.Asks[0].Price).Div(decimal.NewFromInt(2)), true
}

// ExecutionPlan 执行计划。一经返回不可变。
type ExecutionPlan struct {
	Venue            string
	Symbol           string
	Quantity         decimal.Decimal // 带符号，正为买入
	AvgFillPrice     decimal.Decimal
	TotalNotional    decimal.Decimal
	SlippageCost     decimal.Decimal // 相对中间价的货币成本，正为不利
	FeeCost          decimal.Decimal
	LiquidityWarning bool
}

// TotalCost 买入为名义金额加费用，卖出为净所得取负
func (p *ExecutionPlan) TotalCost() decimal.Decimal {
	if p.Quantity.IsPositive() {
		return p.TotalNotional.Add(p.FeeCost)
	}
	return p.TotalNotional.Sub(p.FeeCost).Neg()
}

// EstimateCost 遍历订单簿估计带符号数量的执行成本。
// 买单吃 Asks，卖单吃 Bids。深度不足时剩余部分按最后档位价格外推。
func EstimateCost(depth *MarketDepth, quantity decimal.Decimal, feeRate decimal.Decimal) (*ExecutionPlan, error) {
	if quantity.IsZero() {
		return nil, fmt.Errorf("zero quantity for %s", depth.Symbol)
	}

	mid, ok := depth.MidPrice()
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrNoLiquidity, depth.Symbol, depth.Venue)
	}

	levels := depth.Asks
	if quantity.IsNegative() {
		levels = depth.Bids
	}
	if len(levels) == 0 {
		return nil, fmt.Errorf("%w: %s on %s", ErrNoLiquidity, depth.Symbol, depth.Venue)
	}

	size := quantity.Abs()
	remaining := size
	notional := decimal.Zero
	warning := false

	for _, level := range levels {
		if remaining.IsZero() {
			break
		}
		fill := decimal.Min(remaining, level.Quantity)
		notional = notional.Add(fill.Mul(level.Price))
		remaining = remaining.Sub(fill)
	}

	if remaining.IsPositive() {
		// 深度不足，剩余量按最后档位价格外推
		lastPrice := levels[len(levels)-1].Price
		notional = notional.Add(remaining.Mul(lastPrice))
		warning = true
	}

	avgFill := notional.Div(size)

	// 滑点按方向取号：买入为均价高于中间价，卖出为均价低于中间价
	slippage := avgFill.Sub(mid)
	if quantity.IsNegative() {
		slippage = mid.Sub(avgFill)
	}
	slippageCost := slippage.Mul(size)

	return &ExecutionPlan{
		Venue:            depth.Venue,
		Symbol:           depth.Symbol,
		Quantity:         quantity,
		AvgFillPrice:     avgFill,
		TotalNotional:    notional,
		SlippageCost:     slippageCost,
		FeeCost:          notional.Mul(feeRate),
		LiquidityWarning: warning,
	}, nil
}
