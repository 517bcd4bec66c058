// 变更说明：新增跨场所最佳执行路由。逐场所估计成本后，买单取总成本
// 最小者，卖单取净所得最大者。单一场所失败不影响其余场所。
package domain

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const defaultBookDepth = 20

// VenueConfig 场所配置，吃单费率为名义金额的固定比例
type VenueConfig struct {
	Name         string
	TakerFeeRate decimal.Decimal
}

// DepthProvider 提供各场所的订单簿快照
type DepthProvider interface {
	GetDepth(ctx context.Context, venue, symbol string, levels int) (*MarketDepth, error)
}

// Router 最佳执行路由器
type Router struct {
	venues   []VenueConfig
	provider DepthProvider
	logger   *slog.Logger
	depth    int
}

func NewRouter(venues []VenueConfig, provider DepthProvider, logger *slog.Logger) *Router {
	return &Router{
		venues:   venues,
		provider: provider,
		logger:   logger,
		depth:    defaultBookDepth,
	}
}

// FindBestExecution 在所有配置场所中选择最优执行计划。
// 各场所深度并发拉取，全部失败时返回 ErrNoVenueAvailable。
func (r *Router) FindBestExecution(ctx context.Context, symbol string, quantity decimal.Decimal) (*ExecutionPlan, error) {
	if len(r.venues) == 0 {
		return nil, ErrNoVenueAvailable
	}

	var (
		mu    sync.Mutex
		plans []*ExecutionPlan
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, venue := range r.venues {
		g.Go(func() error {
			depth, err := r.provider.GetDepth(gctx, venue.Name, symbol, r.depth)
			if err != nil {
				r.logger.WarnContext(gctx, "venue depth unavailable",
					"venue", venue.Name, "symbol", symbol, "error", err)
				return nil // 单场所失败不中断路由
			}

			plan, err := EstimateCost(depth, quantity, venue.TakerFeeRate)
			if err != nil {
				r.logger.WarnContext(gctx, "cost estimation failed",
					"venue", venue.Name, "symbol", symbol, "error", err)
				return nil
			}

			mu.Lock()
			plans = append(plans, plan)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(plans) == 0 {
		return nil, ErrNoVenueAvailable
	}

	best := plans[0]
	for _, plan := range plans[1:] {
		// TotalCost 对买卖双向均为越小越优
		if plan.TotalCost().LessThan(best.TotalCost()) {
			best = plan
		}
	}

	r.logger.InfoContext(ctx, "best execution selected",
		"venue", best.Venue, "symbol", symbol,
		"avg_fill", best.AvgFillPrice, "liquidity_warning", best.LiquidityWarning)
	return best, nil
}
