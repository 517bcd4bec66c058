// 生成摘要：回测应用服务。提交任务后异步执行回测, 完成或失败均回写任务状态,
// 成功时落库绩效报告。
// 变更说明：任务创建与执行分离, HTTP 侧立即拿到任务号轮询结果。
package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/wyfcoding/spothedge/internal/backtest/domain"
	hedgingdomain "github.com/wyfcoding/spothedge/internal/hedging/domain"
)

// SubmitBacktestCommand 提交回测任务的入参。
type SubmitBacktestCommand struct {
	UserID           uint64
	Venue            string
	SpotSymbol       string
	DerivativeSymbol string
	Interval         string
	Bars             int
	InitialCapital   decimal.Decimal
	InitialSpotQty   decimal.Decimal
	SlippagePct      decimal.Decimal
	FeeRate          decimal.Decimal
	Config           hedgingdomain.HedgeConfig
	PeriodsPerYear   float64
}

// BacktestService 回测任务编排。
type BacktestService struct {
	repo   domain.BacktestRepository
	bars   domain.BarSource
	engine *domain.BacktestEngine
	logger *slog.Logger
}

func NewBacktestService(repo domain.BacktestRepository, bars domain.BarSource, logger *slog.Logger) *BacktestService {
	return &BacktestService{
		repo:   repo,
		bars:   bars,
		engine: domain.NewBacktestEngine(),
		logger: logger,
	}
}

// SubmitBacktest 校验入参并创建 PENDING 任务, 随后异步执行。
func (s *BacktestService) SubmitBacktest(ctx context.Context, cmd *SubmitBacktestCommand) (*domain.BacktestTask, error) {
	if err := cmd.Config.Validate(); err != nil {
		return nil, err
	}
	if !cmd.InitialCapital.IsPositive() {
		return nil, fmt.Errorf("initial capital %s must be positive", cmd.InitialCapital)
	}
	if cmd.Bars <= 0 {
		return nil, fmt.Errorf("bar count %d must be positive", cmd.Bars)
	}

	now := time.Now()
	task := &domain.BacktestTask{
		TaskID:           fmt.Sprintf("BT%s%04d", now.Format("20060102150405"), now.UnixNano()%10000),
		UserID:           cmd.UserID,
		Venue:            cmd.Venue,
		SpotSymbol:       cmd.SpotSymbol,
		DerivativeSymbol: cmd.DerivativeSymbol,
		Interval:         cmd.Interval,
		Bars:             cmd.Bars,
		InitialCapital:   cmd.InitialCapital,
		InitialSpotQty:   cmd.InitialSpotQty,
		SlippagePct:      cmd.SlippagePct,
		FeeRate:          cmd.FeeRate,

		TargetHedgeRatio:        cmd.Config.TargetHedgeRatio,
		DeltaThreshold:          cmd.Config.DeltaThreshold,
		RegimeFilterEnabled:     cmd.Config.RegimeFilterEnabled,
		FastWindow:              cmd.Config.FastWindow,
		SlowWindow:              cmd.Config.SlowWindow,
		LargeTradeNotionalLimit: cmd.Config.LargeTradeNotionalLimit,

		Status: domain.TaskStatusPending,
	}
	if err := s.repo.SaveTask(ctx, task); err != nil {
		return nil, fmt.Errorf("save backtest task: %w", err)
	}

	go s.runTask(task, cmd)

	s.logger.InfoContext(ctx, "回测任务已提交",
		"task_id", task.TaskID,
		"spot_symbol", task.SpotSymbol,
		"derivative_symbol", task.DerivativeSymbol,
		"bars", task.Bars)
	return task, nil
}

// runTask 在独立 goroutine 中执行, 不复用请求上下文。
func (s *BacktestService) runTask(task *domain.BacktestTask, cmd *SubmitBacktestCommand) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	result, err := s.execute(ctx, task, cmd)
	if err != nil {
		task.Status = domain.TaskStatusFailed
		task.Error = err.Error()
		if saveErr := s.repo.SaveTask(ctx, task); saveErr != nil {
			s.logger.ErrorContext(ctx, "回写失败任务状态失败", "task_id", task.TaskID, "error", saveErr)
		}
		s.logger.WarnContext(ctx, "回测任务失败", "task_id", task.TaskID, "error", err)
		return
	}

	report := toReportRecord(task.TaskID, result.Report)
	if err := s.repo.SaveReport(ctx, report); err != nil {
		s.logger.ErrorContext(ctx, "保存回测报告失败", "task_id", task.TaskID, "error", err)
		task.Status = domain.TaskStatusFailed
		task.Error = err.Error()
	} else {
		task.Status = domain.TaskStatusCompleted
	}
	if err := s.repo.SaveTask(ctx, task); err != nil {
		s.logger.ErrorContext(ctx, "回写任务状态失败", "task_id", task.TaskID, "error", err)
		return
	}

	s.logger.InfoContext(ctx, "回测任务完成",
		"task_id", task.TaskID,
		"status", task.Status,
		"trades", result.Report.TradeCount,
		"net_pnl", result.Report.NetPnL)
}

func (s *BacktestService) execute(ctx context.Context, task *domain.BacktestTask, cmd *SubmitBacktestCommand) (*domain.BacktestResult, error) {
	var spotBars, derivBars []domain.Bar
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		spotBars, err = s.bars.GetSeries(gctx, task.Venue, task.SpotSymbol, task.Interval, task.Bars)
		return err
	})
	g.Go(func() error {
		var err error
		derivBars, err = s.bars.GetSeries(gctx, task.Venue, task.DerivativeSymbol, task.Interval, task.Bars)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch historical bars: %w", err)
	}

	merged := domain.MergeSeries(spotBars, derivBars)
	if len(merged) == 0 {
		return nil, domain.ErrInsufficientData
	}

	periodsPerYear := cmd.PeriodsPerYear
	if periodsPerYear <= 0 {
		periodsPerYear = 365
	}

	return s.engine.Run(ctx, domain.BacktestParams{
		SpotSymbol:       task.SpotSymbol,
		DerivativeSymbol: task.DerivativeSymbol,
		InitialCapital:   task.InitialCapital,
		InitialSpotQty:   task.InitialSpotQty,
		SlippagePct:      task.SlippagePct,
		FeeRate:          task.FeeRate,
		PeriodsPerYear:   periodsPerYear,
		Config:           &cmd.Config,
		Bars:             merged,
	})
}

// GetTask 查询任务当前状态。
func (s *BacktestService) GetTask(ctx context.Context, taskID string) (*domain.BacktestTask, error) {
	return s.repo.GetTaskByID(ctx, taskID)
}

// GetReport 查询已完成任务的绩效报告。
func (s *BacktestService) GetReport(ctx context.Context, taskID string) (*domain.BacktestReport, error) {
	return s.repo.GetReportByTaskID(ctx, taskID)
}

// ListTasks 按用户倒序列出最近任务。
func (s *BacktestService) ListTasks(ctx context.Context, userID uint64, limit int) ([]*domain.BacktestTask, error) {
	return s.repo.ListTasksByUser(ctx, userID, limit)
}

func toReportRecord(taskID string, report *domain.PerformanceReport) *domain.BacktestReport {
	return &domain.BacktestReport{
		TaskID:              taskID,
		TotalReturn:         report.TotalReturn,
		SharpeRatio:         report.SharpeRatio,
		MaxDrawdown:         report.MaxDrawdown,
		SpotPnL:             report.SpotPnL,
		HedgePnL:            report.HedgePnL,
		TotalCosts:          report.TotalCosts,
		NetPnL:              report.NetPnL,
		UnhedgedReturn:      report.UnhedgedReturn,
		UnhedgedMaxDrawdown: report.UnhedgedMaxDrawdown,
		TradeCount:          report.TradeCount,
	}
}
