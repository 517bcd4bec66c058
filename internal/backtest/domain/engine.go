package domain

import (
	"context"

	"github.com/shopspring/decimal"

	hedgingdomain "github.com/wyfcoding/spothedge/internal/hedging/domain"
)

// BacktestParams 一次回测的全部输入。
type BacktestParams struct {
	SpotSymbol       string
	DerivativeSymbol string
	InitialCapital   decimal.Decimal
	InitialSpotQty   decimal.Decimal
	SlippagePct      decimal.Decimal
	FeeRate          decimal.Decimal
	PeriodsPerYear   float64
	Config           *hedgingdomain.HedgeConfig
	Bars             []MergedBar
}

// BacktestResult 回测终态: 账本、逐笔成交与绩效报告。
type BacktestResult struct {
	Portfolio *SimulatedPortfolio
	Report    *PerformanceReport
}

// BacktestEngine 逐根K线驱动实盘同款决策引擎, 成交走模拟撮合。
type BacktestEngine struct{}

func NewBacktestEngine() *BacktestEngine {
	return &BacktestEngine{}
}

// Run 执行回测。首根K线按收盘价建立初始现货仓位,
// 之后每根K线先评估决策再标记权益曲线。回测中建议与执行同等成交。
func (e *BacktestEngine) Run(ctx context.Context, params BacktestParams) (*BacktestResult, error) {
	if len(params.Bars) == 0 {
		return nil, ErrInsufficientData
	}
	engine, err := hedgingdomain.NewDecisionEngine(params.Config)
	if err != nil {
		return nil, err
	}

	handler := NewSimulatedExecutionHandler(params.SlippagePct, params.FeeRate)
	portfolio := NewSimulatedPortfolio(params.InitialCapital)

	// 初始建仓不计滑点与手续费, 仍走唯一的成交入账路径。
	first := params.Bars[0]
	if !params.InitialSpotQty.IsZero() {
		portfolio.ApplyFill(&Fill{
			Timestamp: first.Timestamp,
			Symbol:    params.SpotSymbol,
			Quantity:  params.InitialSpotQty,
			FillPrice: first.SpotClose,
			Notional:  params.InitialSpotQty.Mul(first.SpotClose),
		})
	}

	closes := make([]float64, 0, len(params.Bars))
	for _, bar := range params.Bars {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		closes = append(closes, bar.SpotClose.InexactFloat64())

		decision := engine.EvaluateCycle(hedgingdomain.CycleInput{
			SpotQuantity:      portfolio.Holding(params.SpotSymbol),
			SpotPrice:         bar.SpotClose,
			DerivativeHolding: portfolio.Holding(params.DerivativeSymbol),
			DerivativePrice:   bar.DerivativeClose,
			SpotCloses:        closes,
		})
		if decision.Regime == hedgingdomain.RegimeUndetermined {
			// 慢线未形成前既不成交也不记录权益
			continue
		}

		if decision.Action != hedgingdomain.ActionNone {
			fill, err := handler.ExecuteOrder(bar.Timestamp, params.DerivativeSymbol, decision.TradeQuantity, bar.DerivativeClose)
			if err != nil {
				return nil, err
			}
			portfolio.ApplyFill(fill)
		}

		portfolio.LogValue(bar.Timestamp, map[string]decimal.Decimal{
			params.SpotSymbol:       bar.SpotClose,
			params.DerivativeSymbol: bar.DerivativeClose,
		})
	}

	report := BuildPerformanceReport(portfolio, params.Bars, params.InitialSpotQty, params.PeriodsPerYear)
	return &BacktestResult{Portfolio: portfolio, Report: report}, nil
}
