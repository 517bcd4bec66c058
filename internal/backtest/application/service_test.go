package application_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wyfcoding/spothedge/internal/backtest/application"
	"github.com/wyfcoding/spothedge/internal/backtest/domain"
	hedgingdomain "github.com/wyfcoding/spothedge/internal/hedging/domain"
)

type memBacktestRepo struct {
	mu      sync.Mutex
	tasks   map[string]*domain.BacktestTask
	reports map[string]*domain.BacktestReport
}

func newMemBacktestRepo() *memBacktestRepo {
	return &memBacktestRepo{
		tasks:   make(map[string]*domain.BacktestTask),
		reports: make(map[string]*domain.BacktestReport),
	}
}

func (r *memBacktestRepo) SaveTask(_ context.Context, task *domain.BacktestTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *task
	r.tasks[task.TaskID] = &clone
	return nil
}

func (r *memBacktestRepo) GetTaskByID(_ context.Context, taskID string) (*domain.BacktestTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[taskID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *task
	return &clone, nil
}

func (r *memBacktestRepo) ListTasksByUser(_ context.Context, userID uint64, limit int) ([]*domain.BacktestTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.BacktestTask
	for _, task := range r.tasks {
		if task.UserID == userID && len(out) < limit {
			clone := *task
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *memBacktestRepo) SaveReport(_ context.Context, report *domain.BacktestReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *report
	r.reports[report.TaskID] = &clone
	return nil
}

func (r *memBacktestRepo) GetReportByTaskID(_ context.Context, taskID string) (*domain.BacktestReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.reports[taskID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *report
	return &clone, nil
}

type fakeBarSource struct {
	closes map[string][]float64
	err    error
}

func (s *fakeBarSource) GetSeries(_ context.Context, _, symbol, _ string, limit int) ([]domain.Bar, error) {
	if s.err != nil {
		return nil, s.err
	}
	closes := s.closes[symbol]
	if limit < len(closes) {
		closes = closes[:limit]
	}
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]domain.Bar, len(closes))
	for i, c := range closes {
		bars[i] = domain.Bar{Timestamp: base.AddDate(0, 0, i), Close: decimal.NewFromFloat(c)}
	}
	return bars, nil
}

func submitCommand() *application.SubmitBacktestCommand {
	return &application.SubmitBacktestCommand{
		UserID:           7,
		Venue:            "mock",
		SpotSymbol:       "BTCUSDT",
		DerivativeSymbol: "BTC-PERP",
		Interval:         "1d",
		Bars:             4,
		InitialCapital:   decimal.NewFromInt(100000),
		InitialSpotQty:   decimal.NewFromInt(1),
		Config: hedgingdomain.HedgeConfig{
			TargetHedgeRatio: decimal.NewFromFloat(0.5),
			DeltaThreshold:   decimal.NewFromInt(100),
			AutoExecute:      true,
		},
	}
}

func waitForTerminal(t *testing.T, svc *application.BacktestService, taskID string) *domain.BacktestTask {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		task, err := svc.GetTask(context.Background(), taskID)
		if err != nil {
			t.Fatalf("GetTask: %v", err)
		}
		if task.Status != domain.TaskStatusPending {
			return task
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("task never left PENDING")
	return nil
}

func TestSubmitBacktestCompletes(t *testing.T) {
	repo := newMemBacktestRepo()
	bars := &fakeBarSource{closes: map[string][]float64{
		"BTCUSDT":  {50000, 48000, 46000, 44000},
		"BTC-PERP": {50000, 48000, 46000, 44000},
	}}
	svc := application.NewBacktestService(repo, bars, slog.Default())

	task, err := svc.SubmitBacktest(context.Background(), submitCommand())
	if err != nil {
		t.Fatalf("SubmitBacktest: %v", err)
	}
	if task.Status != domain.TaskStatusPending {
		t.Errorf("initial status = %s, want PENDING", task.Status)
	}

	final := waitForTerminal(t, svc, task.TaskID)
	if final.Status != domain.TaskStatusCompleted {
		t.Fatalf("final status = %s (%s), want COMPLETED", final.Status, final.Error)
	}

	report, err := svc.GetReport(context.Background(), task.TaskID)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if report.TradeCount == 0 {
		t.Error("report has no trades, expected initial purchase and hedge")
	}
	identity := report.SpotPnL.Add(report.HedgePnL).Sub(report.TotalCosts)
	if diff := identity.Sub(report.NetPnL).Abs(); diff.GreaterThan(decimal.New(1, -6)) {
		t.Errorf("attribution drift %s, want < 1e-6", diff)
	}
}

func TestSubmitBacktestDataFailure(t *testing.T) {
	repo := newMemBacktestRepo()
	bars := &fakeBarSource{err: errors.New("gateway down")}
	svc := application.NewBacktestService(repo, bars, slog.Default())

	task, err := svc.SubmitBacktest(context.Background(), submitCommand())
	if err != nil {
		t.Fatalf("SubmitBacktest: %v", err)
	}

	final := waitForTerminal(t, svc, task.TaskID)
	if final.Status != domain.TaskStatusFailed {
		t.Errorf("final status = %s, want FAILED", final.Status)
	}
	if final.Error == "" {
		t.Error("failed task should record error message")
	}
	if _, err := svc.GetReport(context.Background(), task.TaskID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("report err = %v, want not found", err)
	}
}

func TestSubmitBacktestRejectsInvalidConfig(t *testing.T) {
	repo := newMemBacktestRepo()
	svc := application.NewBacktestService(repo, &fakeBarSource{}, slog.Default())

	cmd := submitCommand()
	cmd.Config.DeltaThreshold = decimal.Zero

	if _, err := svc.SubmitBacktest(context.Background(), cmd); !errors.Is(err, hedgingdomain.ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}
