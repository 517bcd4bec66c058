// 变更说明：新增基于 delta/gamma 的场景压力测试。
// 二阶泰勒局部近似，非全量重定价，结果仅用于快速风险预估。
package domain

import (
	"github.com/shopspring/decimal"
)

// StressScenario 假设的价格 / 波动率冲击
type StressScenario struct {
	Name        string
	PriceChange float64 // 比例，-0.2 表示下跌 20%
	IVChangePct float64 // 绝对波动率变化比例，可选
}

// StressResult 压测结果。DeltaExposureUSD 为冲击前的 delta 等效敞口，
// 不是组合市值。
type StressResult struct {
	Scenario         string
	DeltaExposureUSD decimal.Decimal
	StressedPnL      decimal.Decimal
}

// RunStressScenario 对已聚合的组合敞口施加冲击。
// PnL ≈ delta × shock + 0.5 × gamma × ΔS × shock (+ vega × Δσ)。
func RunStressScenario(agg *RiskAggregate, spotPrice decimal.Decimal, scenario StressScenario) *StressResult {
	shock := decimal.NewFromFloat(scenario.PriceChange)
	priceMove := spotPrice.Mul(shock)

	pnl := agg.DeltaUSD.Mul(shock)
	pnl = pnl.Add(agg.GammaUSD.Mul(priceMove).Mul(shock).Div(decimal.NewFromInt(2)))

	if scenario.IVChangePct != 0 {
		// Vega 口径为每 1% 绝对波动率变化
		pnl = pnl.Add(agg.VegaUSD.Mul(decimal.NewFromFloat(scenario.IVChangePct * 100)))
	}

	return &StressResult{
		Scenario:         scenario.Name,
		DeltaExposureUSD: agg.DeltaUSD,
		StressedPnL:      pnl,
	}
}
