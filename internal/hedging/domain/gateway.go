// 变更说明：定义对冲上下文侧的协作方窄接口。
package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrCycleSkipped 本轮评估因数据不可用而跳过
var ErrCycleSkipped = errors.New("hedge cycle skipped, market data unavailable")

// MarketDataClient 对冲评估所需的行情能力
type MarketDataClient interface {
	GetPrice(ctx context.Context, venue, symbol string) (decimal.Decimal, error)
	// GetDailyCloses 返回按时间升序排列的最近 limit 个日线收盘价
	GetDailyCloses(ctx context.Context, venue, symbol string, limit int) ([]float64, error)
}

// HedgeRatioEstimator 对冲比率估计协作方 (风控上下文提供)
type HedgeRatioEstimator interface {
	EstimateHedgeRatio(ctx context.Context, venue, spotSymbol, derivativeSymbol string) (float64, error)
}

// HedgePlan 执行路由结果
type HedgePlan struct {
	Venue            string
	AvgFillPrice     decimal.Decimal
	TotalNotional    decimal.Decimal
	SlippageCost     decimal.Decimal
	FeeCost          decimal.Decimal
	LiquidityWarning bool
}

// ExecutionPlanner 最佳执行路由协作方 (智能路由上下文提供)
type ExecutionPlanner interface {
	PlanExecution(ctx context.Context, symbol string, quantity decimal.Decimal) (*HedgePlan, error)
}
