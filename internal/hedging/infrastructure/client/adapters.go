// Package client 对冲上下文协作方适配。
// 变更说明：将行情网关与智能路由服务适配为对冲侧的窄接口。
package client

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/spothedge/internal/hedging/domain"
	marketdata "github.com/wyfcoding/spothedge/internal/marketdata/domain"
	sorapp "github.com/wyfcoding/spothedge/internal/sor/application"
)

// MarketDataAdapter 将行情网关适配为对冲侧的 MarketDataClient
type MarketDataAdapter struct {
	gateway marketdata.MarketDataGateway
}

func NewMarketDataAdapter(gateway marketdata.MarketDataGateway) *MarketDataAdapter {
	return &MarketDataAdapter{gateway: gateway}
}

func (a *MarketDataAdapter) GetPrice(ctx context.Context, venue, symbol string) (decimal.Decimal, error) {
	return a.gateway.GetPrice(ctx, venue, symbol)
}

func (a *MarketDataAdapter) GetDailyCloses(ctx context.Context, venue, symbol string, limit int) ([]float64, error) {
	klines, err := a.gateway.GetKlines(ctx, venue, symbol, "1d", limit)
	if err != nil {
		return nil, fmt.Errorf("fetch klines: %w", err)
	}

	closes := make([]float64, 0, len(klines))
	for _, k := range klines {
		c, _ := k.Close.Float64()
		closes = append(closes, c)
	}
	return closes, nil
}

// ExecutionPlannerAdapter 将智能路由服务适配为对冲侧的 ExecutionPlanner
type ExecutionPlannerAdapter struct {
	execution *sorapp.ExecutionService
}

func NewExecutionPlannerAdapter(execution *sorapp.ExecutionService) *ExecutionPlannerAdapter {
	return &ExecutionPlannerAdapter{execution: execution}
}

func (a *ExecutionPlannerAdapter) PlanExecution(ctx context.Context, symbol string, quantity decimal.Decimal) (*domain.HedgePlan, error) {
	plan, err := a.execution.FindBestExecution(ctx, symbol, quantity)
	if err != nil {
		return nil, err
	}
	return &domain.HedgePlan{
		Venue:            plan.Venue,
		AvgFillPrice:     plan.AvgFillPrice,
		TotalNotional:    plan.TotalNotional,
		SlippageCost:     plan.SlippageCost,
		FeeCost:          plan.FeeCost,
		LiquidityWarning: plan.LiquidityWarning,
	}, nil
}
