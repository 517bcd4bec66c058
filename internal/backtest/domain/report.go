package domain

import (
	"math"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
)

// PerformanceReport 回测绩效汇总。
// 收益归因满足恒等式 SpotPnL + HedgePnL - TotalCosts = NetPnL。
type PerformanceReport struct {
	TotalReturn float64
	SharpeRatio float64
	MaxDrawdown float64

	SpotPnL    decimal.Decimal
	HedgePnL   decimal.Decimal
	TotalCosts decimal.Decimal
	NetPnL     decimal.Decimal

	UnhedgedReturn      float64
	UnhedgedMaxDrawdown float64

	TradeCount int
}

// BuildPerformanceReport 由权益曲线与账本派生绩效指标。
// 对冲盈亏取 净盈亏-现货盈亏+总成本, 与现货基准和成本口径自洽。
func BuildPerformanceReport(portfolio *SimulatedPortfolio, bars []MergedBar, initialSpotQty decimal.Decimal, periodsPerYear float64) *PerformanceReport {
	history := portfolio.ValueHistory()
	if len(history) == 0 || len(bars) == 0 {
		return &PerformanceReport{}
	}

	values := make([]float64, len(history))
	for i, vp := range history {
		values[i] = vp.Value.InexactFloat64()
	}

	finalValue := history[len(history)-1].Value
	netPnL := finalValue.Sub(portfolio.InitialCapital())
	spotPnL := bars[len(bars)-1].SpotClose.Sub(bars[0].SpotClose).Mul(initialSpotQty)
	totalCosts := portfolio.TotalCommission().Add(portfolio.TotalSlippage())
	hedgePnL := netPnL.Sub(spotPnL).Add(totalCosts)

	unhedged := make([]float64, len(bars))
	capital := portfolio.InitialCapital().InexactFloat64()
	firstClose := bars[0].SpotClose.InexactFloat64()
	qty := initialSpotQty.InexactFloat64()
	for i, b := range bars {
		unhedged[i] = capital + qty*(b.SpotClose.InexactFloat64()-firstClose)
	}

	return &PerformanceReport{
		TotalReturn:         totalReturn(values),
		SharpeRatio:         sharpeRatio(values, periodsPerYear),
		MaxDrawdown:         maxDrawdown(values),
		SpotPnL:             spotPnL,
		HedgePnL:            hedgePnL,
		TotalCosts:          totalCosts,
		NetPnL:              netPnL,
		UnhedgedReturn:      totalReturn(unhedged),
		UnhedgedMaxDrawdown: maxDrawdown(unhedged),
		TradeCount:          len(portfolio.Fills()),
	}
}

func totalReturn(values []float64) float64 {
	if len(values) < 2 || values[0] == 0 {
		return 0
	}
	return values[len(values)-1]/values[0] - 1
}

func sharpeRatio(values []float64, periodsPerYear float64) float64 {
	if len(values) < 3 {
		return 0
	}
	returns := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			return 0
		}
		returns = append(returns, values[i]/values[i-1]-1)
	}
	mean, err := stats.Mean(returns)
	if err != nil {
		return 0
	}
	std, err := stats.StandardDeviationSample(returns)
	if err != nil || std == 0 {
		return 0
	}
	return mean / std * math.Sqrt(periodsPerYear)
}

func maxDrawdown(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	peak := values[0]
	maxDD := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			dd := (v - peak) / peak
			if dd < maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}
