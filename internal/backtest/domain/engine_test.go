package domain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/spothedge/internal/backtest/domain"
	hedgingdomain "github.com/wyfcoding/spothedge/internal/hedging/domain"
)

func runParams(bars []domain.MergedBar, config *hedgingdomain.HedgeConfig) domain.BacktestParams {
	return domain.BacktestParams{
		SpotSymbol:       "BTCUSDT",
		DerivativeSymbol: "BTC-PERP",
		InitialCapital:   d(100000),
		InitialSpotQty:   d(1),
		SlippagePct:      decimal.Zero,
		FeeRate:          decimal.Zero,
		PeriodsPerYear:   365,
		Config:           config,
		Bars:             bars,
	}
}

func flatConfig() *hedgingdomain.HedgeConfig {
	return &hedgingdomain.HedgeConfig{
		TargetHedgeRatio: d(0.5),
		DeltaThreshold:   d(100),
		AutoExecute:      true,
	}
}

// 价格不变：首根K线建仓并开出 -0.5 对冲，之后偏差为零不再交易。
func TestRunOpensHedgeOnce(t *testing.T) {
	bars := makeBars(
		[]float64{50000, 50000, 50000},
		[]float64{50000, 50000, 50000},
	)

	result, err := domain.NewBacktestEngine().Run(context.Background(), runParams(bars, flatConfig()))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !result.Portfolio.Holding("BTC-PERP").Equal(d(-0.5)) {
		t.Errorf("perp holding = %s, want -0.5", result.Portfolio.Holding("BTC-PERP"))
	}
	// 建仓 + 对冲各一笔
	if got := len(result.Portfolio.Fills()); got != 2 {
		t.Errorf("fills = %d, want 2", got)
	}
	if !result.Portfolio.Cash().Equal(d(75000)) {
		t.Errorf("cash = %s, want 75000", result.Portfolio.Cash())
	}
	if len(result.Portfolio.ValueHistory()) != len(bars) {
		t.Errorf("value points = %d, want %d", len(result.Portfolio.ValueHistory()), len(bars))
	}
}

// 下跌行情中对冲组合的净盈亏满足归因恒等式，且优于无对冲基准。
func TestRunHedgedOutperformsInDrop(t *testing.T) {
	bars := makeBars(
		[]float64{50000, 48000, 46000, 44000},
		[]float64{50000, 48000, 46000, 44000},
	)

	params := runParams(bars, flatConfig())
	params.SlippagePct = d(0.001)
	params.FeeRate = d(0.0005)

	result, err := domain.NewBacktestEngine().Run(context.Background(), params)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	report := result.Report

	identity := report.SpotPnL.Add(report.HedgePnL).Sub(report.TotalCosts)
	if diff := identity.Sub(report.NetPnL).Abs(); diff.GreaterThan(decimal.New(1, -6)) {
		t.Errorf("attribution drift %s, want < 1e-6", diff)
	}
	if report.TotalReturn <= report.UnhedgedReturn {
		t.Errorf("hedged return %v should beat unhedged %v in a drop", report.TotalReturn, report.UnhedgedReturn)
	}
	if !report.TotalCosts.IsPositive() {
		t.Errorf("total costs = %s, want positive", report.TotalCosts)
	}
}

// 同一输入运行两次结果完全一致。
func TestRunDeterministic(t *testing.T) {
	bars := makeBars(
		[]float64{50000, 51000, 49500, 48000, 50500},
		[]float64{50010, 51005, 49490, 47990, 50490},
	)

	first, err := domain.NewBacktestEngine().Run(context.Background(), runParams(bars, flatConfig()))
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := domain.NewBacktestEngine().Run(context.Background(), runParams(bars, flatConfig()))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if !first.Portfolio.Cash().Equal(second.Portfolio.Cash()) {
		t.Errorf("cash differs: %s vs %s", first.Portfolio.Cash(), second.Portfolio.Cash())
	}
	if len(first.Portfolio.Fills()) != len(second.Portfolio.Fills()) {
		t.Errorf("fill count differs: %d vs %d", len(first.Portfolio.Fills()), len(second.Portfolio.Fills()))
	}
	if first.Report.NetPnL.Cmp(second.Report.NetPnL) != 0 {
		t.Errorf("net pnl differs: %s vs %s", first.Report.NetPnL, second.Report.NetPnL)
	}
}

// 慢线形成前的K线既不评估也不计入权益曲线。
func TestRunSkipsUndeterminedRegime(t *testing.T) {
	bars := makeBars(
		[]float64{50000, 50100, 50200, 50300, 50400},
		[]float64{50000, 50100, 50200, 50300, 50400},
	)

	config := flatConfig()
	config.RegimeFilterEnabled = true
	config.FastWindow = 2
	config.SlowWindow = 3

	result, err := domain.NewBacktestEngine().Run(context.Background(), runParams(bars, config))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := len(result.Portfolio.ValueHistory()); got != len(bars)-2 {
		t.Errorf("value points = %d, want %d", got, len(bars)-2)
	}
}

// 偏差超阈值但折算数量低于尘埃线时不产生成交。
func TestRunDustNeverFills(t *testing.T) {
	bars := makeBars(
		[]float64{50000, 50000, 50000},
		[]float64{50000, 50000, 50000},
	)

	// 目标对冲仅 -25，折算 0.0005 张，低于 0.001 尘埃线
	config := flatConfig()
	config.TargetHedgeRatio = d(0.0005)
	config.DeltaThreshold = d(10)

	result, err := domain.NewBacktestEngine().Run(context.Background(), runParams(bars, config))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// 只有初始建仓
	if got := len(result.Portfolio.Fills()); got != 1 {
		t.Errorf("fills = %d, want 1", got)
	}
}

func TestRunEmptyBars(t *testing.T) {
	_, err := domain.NewBacktestEngine().Run(context.Background(), runParams(nil, flatConfig()))
	if !errors.Is(err, domain.ErrInsufficientData) {
		t.Errorf("err = %v, want ErrInsufficientData", err)
	}
}
