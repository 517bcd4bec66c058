// Package application 对冲服务应用层
// 生成摘要：
// 1) 监控持仓的创建 / 暂停 / 恢复。
// 2) 周期性对冲评估：并发取数 → 决策引擎 → 路由执行或建议，
//    单条持仓失败仅跳过该持仓。
// 3) 期权 delta 中性配比查询。
package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/pkg/messagequeue"
	"golang.org/x/sync/errgroup"

	"github.com/wyfcoding/spothedge/internal/hedging/domain"
)

// HedgeService 对冲应用服务
type HedgeService struct {
	positionRepo   domain.MonitoredPositionRepository
	recordRepo     domain.HedgeRecordRepository
	marketData     domain.MarketDataClient
	betaEstimator  domain.HedgeRatioEstimator
	planner        domain.ExecutionPlanner
	eventPublisher messagequeue.EventPublisher
	logger         *slog.Logger
}

func NewHedgeService(
	positionRepo domain.MonitoredPositionRepository,
	recordRepo domain.HedgeRecordRepository,
	marketData domain.MarketDataClient,
	betaEstimator domain.HedgeRatioEstimator,
	planner domain.ExecutionPlanner,
	eventPublisher messagequeue.EventPublisher,
	logger *slog.Logger,
) *HedgeService {
	return &HedgeService{
		positionRepo:   positionRepo,
		recordRepo:     recordRepo,
		marketData:     marketData,
		betaEstimator:  betaEstimator,
		planner:        planner,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// CreateMonitorCommand 创建监控持仓命令
type CreateMonitorCommand struct {
	UserID           uint64
	Venue            string
	SpotSymbol       string
	DerivativeSymbol string
	SpotQuantity     decimal.Decimal
	Config           domain.HedgeConfig
}

// CreateMonitor 创建监控持仓。配置在此边界校验，非法配置不落库。
func (s *HedgeService) CreateMonitor(ctx context.Context, cmd CreateMonitorCommand) (string, error) {
	if err := cmd.Config.Validate(); err != nil {
		return "", err
	}

	now := time.Now()
	positionID := fmt.Sprintf("HP%s%04d", now.Format("20060102150405"), now.UnixNano()%10000)

	position := &domain.MonitoredPosition{
		PositionID:              positionID,
		UserID:                  cmd.UserID,
		Venue:                   cmd.Venue,
		SpotSymbol:              cmd.SpotSymbol,
		DerivativeSymbol:        cmd.DerivativeSymbol,
		SpotQuantity:            cmd.SpotQuantity,
		Status:                  domain.MonitorStatusActive,
		TargetHedgeRatio:        cmd.Config.TargetHedgeRatio,
		DeltaThreshold:          cmd.Config.DeltaThreshold,
		VaRThreshold:            cmd.Config.VaRThreshold,
		RegimeFilterEnabled:     cmd.Config.RegimeFilterEnabled,
		FastWindow:              cmd.Config.FastWindow,
		SlowWindow:              cmd.Config.SlowWindow,
		AutoExecute:             cmd.Config.AutoExecute,
		LargeTradeNotionalLimit: cmd.Config.LargeTradeNotionalLimit,
	}

	if err := s.positionRepo.Save(ctx, position); err != nil {
		return "", err
	}

	s.logger.InfoContext(ctx, "monitored position created",
		"position_id", positionID, "user_id", cmd.UserID, "spot", cmd.SpotSymbol)
	return positionID, nil
}

// SetMonitorStatus 暂停或恢复监控
func (s *HedgeService) SetMonitorStatus(ctx context.Context, positionID string, status domain.MonitorStatus) error {
	position, err := s.positionRepo.GetByID(ctx, positionID)
	if err != nil {
		return err
	}
	position.Status = status
	return s.positionRepo.Save(ctx, position)
}

// ListMonitors 查询某用户的监控持仓
func (s *HedgeService) ListMonitors(ctx context.Context, userID uint64) ([]*domain.MonitoredPosition, error) {
	return s.positionRepo.ListByUser(ctx, userID)
}

// ListHedgeHistory 查询某持仓的对冲记录
func (s *HedgeService) ListHedgeHistory(ctx context.Context, positionID string, limit int) ([]*domain.HedgeRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.recordRepo.ListByPosition(ctx, positionID, limit)
}

// UpdateSpotQuantity 外部成交流驱动的现货持仓更新
func (s *HedgeService) UpdateSpotQuantity(ctx context.Context, positionID string, quantity decimal.Decimal) error {
	position, err := s.positionRepo.GetByID(ctx, positionID)
	if err != nil {
		return err
	}
	position.SpotQuantity = quantity
	return s.positionRepo.Save(ctx, position)
}

// ConfirmHedge 人工确认建议后按给定成交价落仓
func (s *HedgeService) ConfirmHedge(ctx context.Context, positionID string, quantity, fillPrice decimal.Decimal) error {
	position, err := s.positionRepo.GetByID(ctx, positionID)
	if err != nil {
		return err
	}

	position.ApplyHedgeFill(quantity, fillPrice)
	if err := s.positionRepo.Save(ctx, position); err != nil {
		return err
	}

	record := &domain.HedgeRecord{
		RecordID:      fmt.Sprintf("HR%s%04d", time.Now().Format("20060102150405"), time.Now().UnixNano()%10000),
		PositionID:    position.PositionID,
		UserID:        position.UserID,
		TradeQuantity: quantity,
		TradeNotional: quantity.Mul(fillPrice),
		AvgFillPrice:  fillPrice,
		Status:        domain.HedgeRecordStatusExecuted,
		Reason:        "manually confirmed recommendation",
	}
	if err := s.recordRepo.Save(ctx, record); err != nil {
		return err
	}

	s.publishEvents(ctx, position)
	return nil
}

// RunCycle 对所有活跃监控持仓执行一轮对冲评估。
// 持仓间严格串行，单条持仓的取数失败只记告警并继续。
func (s *HedgeService) RunCycle(ctx context.Context) error {
	positions, err := s.positionRepo.ListActive(ctx)
	if err != nil {
		return err
	}

	for _, position := range positions {
		if err := s.evaluatePosition(ctx, position); err != nil {
			s.logger.WarnContext(ctx, "hedge evaluation skipped",
				"position_id", position.PositionID, "error", err)
		}
	}
	return nil
}

// cycleMarketData 单轮评估所需的全部行情
type cycleMarketData struct {
	spotPrice  decimal.Decimal
	derivPrice decimal.Decimal
	closes     []float64
	beta       float64
}

// fetchCycleData 并发拉取行情，任一失败即视为本轮数据不可用
func (s *HedgeService) fetchCycleData(ctx context.Context, position *domain.MonitoredPosition) (*cycleMarketData, error) {
	data := &cycleMarketData{beta: 1.0}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		data.spotPrice, err = s.marketData.GetPrice(gctx, position.Venue, position.SpotSymbol)
		return err
	})
	g.Go(func() error {
		var err error
		data.derivPrice, err = s.marketData.GetPrice(gctx, position.Venue, position.DerivativeSymbol)
		return err
	})
	if position.RegimeFilterEnabled {
		g.Go(func() error {
			var err error
			data.closes, err = s.marketData.GetDailyCloses(gctx, position.Venue, position.SpotSymbol, position.SlowWindow)
			return err
		})
	}
	g.Go(func() error {
		beta, err := s.betaEstimator.EstimateHedgeRatio(gctx, position.Venue, position.SpotSymbol, position.DerivativeSymbol)
		if err != nil {
			return err
		}
		data.beta = beta
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCycleSkipped, err)
	}
	return data, nil
}

func (s *HedgeService) evaluatePosition(ctx context.Context, position *domain.MonitoredPosition) error {
	data, err := s.fetchCycleData(ctx, position)
	if err != nil {
		return err
	}

	engine, err := domain.NewDecisionEngine(position.Config())
	if err != nil {
		return err
	}

	decision := engine.EvaluateCycle(domain.CycleInput{
		SpotQuantity:      position.SpotQuantity,
		SpotPrice:         data.spotPrice,
		DerivativeHolding: position.HedgeHolding,
		DerivativePrice:   data.derivPrice,
		SpotCloses:        data.closes,
	})

	if decision.Regime == domain.RegimeUndetermined {
		// 状态不可判定，本轮完全跳过，不落记录
		return nil
	}

	switch decision.Action {
	case domain.ActionNone:
		if decision.Reason == domain.ReasonDustSuppressed {
			return s.recordSkip(ctx, position, decision, data)
		}
		return nil
	case domain.ActionRecommend:
		return s.recommend(ctx, position, decision, data)
	case domain.ActionExecute:
		return s.execute(ctx, position, decision, data)
	default:
		return fmt.Errorf("unknown decision action %q", decision.Action)
	}
}

// recordSkip 尘埃抑制不动仓，但仍落一条 SKIPPED 记录便于审计
func (s *HedgeService) recordSkip(ctx context.Context, position *domain.MonitoredPosition, decision *domain.Decision, data *cycleMarketData) error {
	record := s.newRecord(position, decision, data)
	record.Status = domain.HedgeRecordStatusSkipped
	return s.recordRepo.Save(ctx, record)
}

func (s *HedgeService) recommend(ctx context.Context, position *domain.MonitoredPosition, decision *domain.Decision, data *cycleMarketData) error {
	position.FlagThresholdBreach(decision.Discrepancy)
	position.RecommendHedge(decision)
	if err := s.positionRepo.Save(ctx, position); err != nil {
		return err
	}

	record := s.newRecord(position, decision, data)
	record.Status = domain.HedgeRecordStatusRecommended
	if err := s.recordRepo.Save(ctx, record); err != nil {
		return err
	}

	s.publishEvents(ctx, position)
	s.logger.InfoContext(ctx, "hedge recommended",
		"position_id", position.PositionID, "quantity", decision.TradeQuantity,
		"regime", decision.Regime, "reason", decision.Reason)
	return nil
}

func (s *HedgeService) execute(ctx context.Context, position *domain.MonitoredPosition, decision *domain.Decision, data *cycleMarketData) error {
	plan, err := s.planner.PlanExecution(ctx, position.DerivativeSymbol, decision.TradeQuantity)
	if err != nil {
		// 无可用场所时降级为建议，而不是丢弃决策
		s.logger.WarnContext(ctx, "execution routing failed, downgrading to recommendation",
			"position_id", position.PositionID, "error", err)
		return s.recommend(ctx, position, decision, data)
	}

	position.FlagThresholdBreach(decision.Discrepancy)
	position.ApplyHedgeFill(decision.TradeQuantity, plan.AvgFillPrice)
	if err := s.positionRepo.Save(ctx, position); err != nil {
		return err
	}

	record := s.newRecord(position, decision, data)
	record.Status = domain.HedgeRecordStatusExecuted
	record.Venue = plan.Venue
	record.AvgFillPrice = plan.AvgFillPrice
	if err := s.recordRepo.Save(ctx, record); err != nil {
		return err
	}

	s.publishEvents(ctx, position)
	s.logger.InfoContext(ctx, "hedge executed",
		"position_id", position.PositionID, "quantity", decision.TradeQuantity,
		"venue", plan.Venue, "avg_fill", plan.AvgFillPrice)
	return nil
}

func (s *HedgeService) newRecord(position *domain.MonitoredPosition, decision *domain.Decision, data *cycleMarketData) *domain.HedgeRecord {
	now := time.Now()
	return &domain.HedgeRecord{
		RecordID:      fmt.Sprintf("HR%s%04d", now.Format("20060102150405"), now.UnixNano()%10000),
		PositionID:    position.PositionID,
		UserID:        position.UserID,
		Regime:        string(decision.Regime),
		TradeQuantity: decision.TradeQuantity,
		TradeNotional: decision.TradeNotional,
		Discrepancy:   decision.Discrepancy,
		Beta:          decimal.NewFromFloat(data.beta),
		Reason:        decision.Reason,
	}
}

// publishEvents 发布领域事件
func (s *HedgeService) publishEvents(ctx context.Context, position *domain.MonitoredPosition) {
	for _, event := range position.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event.EventName(), position.PositionID, event); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish event",
				"event", event.EventName(), "error", err)
		}
	}
	position.ClearDomainEvents()
}

// SizeOptionHedge 期权 delta 中性配比
func (s *HedgeService) SizeOptionHedge(spotQuantity, optionDelta, optionPrice decimal.Decimal) (*domain.OptionHedgeSizing, error) {
	return domain.SizeOptionHedge(spotQuantity, optionDelta, optionPrice)
}
