// 变更说明：新增期权 delta 中性配比计算，用于以看跌期权对冲现货敞口。
package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrZeroDelta 期权 delta 为零，无法配比
var ErrZeroDelta = errors.New("option delta is zero")

// OptionHedgeSizing 期权对冲配比结果
type OptionHedgeSizing struct {
	Contracts      decimal.Decimal
	Premium        decimal.Decimal // 总权利金，计价货币
	HedgeDelta     decimal.Decimal
	ResultingDelta decimal.Decimal // 对冲后的组合 delta (标的数量口径)
}

// SizeOptionHedge 计算抵消现货 delta 所需的期权张数。
// contracts = |spotQty / optionDelta|，premium = contracts × optionPrice。
func SizeOptionHedge(spotQuantity, optionDelta, optionPrice decimal.Decimal) (*OptionHedgeSizing, error) {
	if optionDelta.IsZero() {
		return nil, ErrZeroDelta
	}

	contracts := spotQuantity.Div(optionDelta).Abs()
	hedgeDelta := contracts.Mul(optionDelta)

	return &OptionHedgeSizing{
		Contracts:      contracts,
		Premium:        contracts.Mul(optionPrice),
		HedgeDelta:     hedgeDelta,
		ResultingDelta: spotQuantity.Add(hedgeDelta),
	}, nil
}
