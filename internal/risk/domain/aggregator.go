// 变更说明：新增组合风险聚合，跨现货、线性衍生品与期权持仓汇总
// 净 delta/gamma/vega/theta，作为决策引擎与压测的唯一敞口来源。
package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RiskAggregate 组合净敞口，全部以计价货币表示
type RiskAggregate struct {
	DeltaUSD decimal.Decimal
	GammaUSD decimal.Decimal
	VegaUSD  decimal.Decimal
	ThetaUSD decimal.Decimal
}

// AggregatePortfolioRisk 汇总组合净敞口。
// 现货与线性衍生品按 1:1 delta 计入；期权按希腊字母乘标的价计入。
// 快照缺失价格的持仓视为数据不可用。
func AggregatePortfolioRisk(positions []*Position, prices MarketSnapshot) (*RiskAggregate, error) {
	agg := &RiskAggregate{}

	for _, pos := range positions {
		if err := pos.Validate(); err != nil {
			return nil, err
		}

		switch pos.Class {
		case AssetClassSpot, AssetClassLinear:
			price, ok := prices.Price(pos.Symbol)
			if !ok {
				return nil, fmt.Errorf("%w: no price for %s", ErrDataUnavailable, pos.Symbol)
			}
			agg.DeltaUSD = agg.DeltaUSD.Add(pos.Quantity.Mul(price))

		case AssetClassOption:
			underlyingPrice, ok := prices.Price(pos.Underlying)
			if !ok {
				return nil, fmt.Errorf("%w: no price for %s", ErrDataUnavailable, pos.Underlying)
			}
			agg.DeltaUSD = agg.DeltaUSD.Add(pos.Quantity.Mul(pos.Greeks.Delta).Mul(underlyingPrice))
			agg.GammaUSD = agg.GammaUSD.Add(pos.Quantity.Mul(pos.Greeks.Gamma))
			agg.VegaUSD = agg.VegaUSD.Add(pos.Quantity.Mul(pos.Greeks.Vega))
			agg.ThetaUSD = agg.ThetaUSD.Add(pos.Quantity.Mul(pos.Greeks.Theta))

		default:
			return nil, fmt.Errorf("unknown asset class %q for %s", pos.Class, pos.Symbol)
		}
	}

	return agg, nil
}
