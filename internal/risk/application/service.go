// Package application 风控应用层，编排 beta 估计、敞口聚合、VaR 与压测。
package application

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/spothedge/internal/risk/domain"
)

// RiskService 风控服务
type RiskService struct {
	beta   *domain.BetaEstimator
	client domain.MarketDataClient
	logger *slog.Logger
}

func NewRiskService(beta *domain.BetaEstimator, client domain.MarketDataClient, logger *slog.Logger) *RiskService {
	return &RiskService{
		beta:   beta,
		client: client,
		logger: logger,
	}
}

// EstimateHedgeRatio 估计现货对衍生品的对冲比率
func (s *RiskService) EstimateHedgeRatio(ctx context.Context, venue, spotSymbol, derivativeSymbol string) (float64, error) {
	return s.beta.EstimateHedgeRatio(ctx, venue, spotSymbol, derivativeSymbol)
}

// AggregateRisk 汇总组合净敞口
func (s *RiskService) AggregateRisk(positions []*domain.Position, prices domain.MarketSnapshot) (*domain.RiskAggregate, error) {
	return domain.AggregatePortfolioRisk(positions, prices)
}

// EstimateVaRQuery VaR 估计参数
type EstimateVaRQuery struct {
	Venue           string
	ReferenceSymbol string // 组合的参照资产，日收益率取自该符号
	Lookback        int
	Confidence      float64
}

// EstimateVaR 历史模拟法估计 1 日 VaR
func (s *RiskService) EstimateVaR(
	ctx context.Context,
	query EstimateVaRQuery,
	positions []*domain.Position,
	prices domain.MarketSnapshot,
) (*domain.VaRResult, error) {
	// 零敞口组合的 VaR 恒为 0，无需拉取历史数据
	if domain.SpotPortfolioValue(positions, prices).IsZero() {
		return domain.EstimateHistoricalVaR(positions, prices, nil, query.Confidence)
	}

	lookback := query.Lookback
	if lookback <= 0 {
		lookback = 90
	}

	bars, err := s.client.GetDailyCloses(ctx, query.Venue, query.ReferenceSymbol, lookback)
	if err != nil {
		s.logger.WarnContext(ctx, "var estimation skipped, historical data unavailable",
			"symbol", query.ReferenceSymbol, "error", err)
		return nil, err
	}

	return domain.EstimateHistoricalVaR(positions, prices, bars, query.Confidence)
}

// RunStressScenario 对组合运行单一压力场景
func (s *RiskService) RunStressScenario(
	positions []*domain.Position,
	prices domain.MarketSnapshot,
	spotPrice decimal.Decimal,
	scenario domain.StressScenario,
) (*domain.StressResult, error) {
	agg, err := domain.AggregatePortfolioRisk(positions, prices)
	if err != nil {
		return nil, err
	}
	return domain.RunStressScenario(agg, spotPrice, scenario), nil
}
