// 变更说明：新增历史模拟法 VaR。以参照资产的日收益率乘以组合当前
// 总价值得到模拟日损益序列，取 (1-置信度) 分位数。
package domain

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

const (
	defaultVaRLookback   = 90
	defaultVaRConfidence = 0.95
)

// SpotPortfolioValue 按现货 / 线性口径计算组合总价值，快照缺价的持仓跳过
func SpotPortfolioValue(positions []*Position, prices MarketSnapshot) decimal.Decimal {
	total := decimal.Zero
	for _, pos := range positions {
		price, ok := prices.Price(pos.Symbol)
		if !ok {
			continue
		}
		total = total.Add(pos.Quantity.Mul(price))
	}
	return total
}

// VaRResult 历史 VaR 估计结果
type VaRResult struct {
	ValueAtRisk    float64 // 负数，表示损失阈值
	PortfolioValue decimal.Decimal
	Confidence     float64
	SampleSize     int
}

// EstimateHistoricalVaR 历史模拟法估计 1 日 VaR。
// 组合价值按现货 / 线性持仓口径计算 (见 AggregatePortfolioRisk)。
// 零敞口组合返回 0 而非不可用；历史数据缺失返回 ErrDataUnavailable。
func EstimateHistoricalVaR(
	positions []*Position,
	prices MarketSnapshot,
	referenceBars []HistoricalBar,
	confidence float64,
) (*VaRResult, error) {
	if confidence <= 0 || confidence >= 1 {
		confidence = defaultVaRConfidence
	}

	totalValue := SpotPortfolioValue(positions, prices)
	if totalValue.IsZero() {
		return &VaRResult{ValueAtRisk: 0, PortfolioValue: totalValue, Confidence: confidence}, nil
	}

	closes := make([]float64, len(referenceBars))
	for i, bar := range referenceBars {
		closes[i] = bar.Close
	}
	returns := simpleReturns(closes)
	if len(returns) == 0 {
		return nil, fmt.Errorf("%w: no historical returns for VaR", ErrDataUnavailable)
	}

	valueFloat, _ := totalValue.Float64()
	pnls := make([]float64, len(returns))
	for i, r := range returns {
		pnls[i] = valueFloat * r
	}
	sort.Float64s(pnls)

	idx := int(math.Floor((1 - confidence) * float64(len(pnls))))
	if idx >= len(pnls) {
		idx = len(pnls) - 1
	}

	return &VaRResult{
		ValueAtRisk:    pnls[idx],
		PortfolioValue: totalValue,
		Confidence:     confidence,
		SampleSize:     len(returns),
	}, nil
}
