package application_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/spothedge/internal/hedging/application"
	"github.com/wyfcoding/spothedge/internal/hedging/domain"
)

func d(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

type memPositionRepo struct {
	positions map[string]*domain.MonitoredPosition
}

func newMemPositionRepo() *memPositionRepo {
	return &memPositionRepo{positions: make(map[string]*domain.MonitoredPosition)}
}

func (r *memPositionRepo) Save(ctx context.Context, p *domain.MonitoredPosition) error {
	r.positions[p.PositionID] = p
	return nil
}

func (r *memPositionRepo) GetByID(ctx context.Context, id string) (*domain.MonitoredPosition, error) {
	p, ok := r.positions[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func (r *memPositionRepo) ListActive(ctx context.Context) ([]*domain.MonitoredPosition, error) {
	var out []*domain.MonitoredPosition
	for _, p := range r.positions {
		if p.Status == domain.MonitorStatusActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPositionRepo) ListByUser(ctx context.Context, userID uint64) ([]*domain.MonitoredPosition, error) {
	var out []*domain.MonitoredPosition
	for _, p := range r.positions {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

type memRecordRepo struct {
	records []*domain.HedgeRecord
}

func (r *memRecordRepo) Save(ctx context.Context, record *domain.HedgeRecord) error {
	r.records = append(r.records, record)
	return nil
}

func (r *memRecordRepo) ListByPosition(ctx context.Context, positionID string, limit int) ([]*domain.HedgeRecord, error) {
	var out []*domain.HedgeRecord
	for _, rec := range r.records {
		if rec.PositionID == positionID {
			out = append(out, rec)
		}
	}
	return out, nil
}

type fakeMarketData struct {
	prices     map[string]decimal.Decimal
	failSymbol string
}

func (f *fakeMarketData) GetPrice(ctx context.Context, venue, symbol string) (decimal.Decimal, error) {
	if symbol == f.failSymbol {
		return decimal.Zero, errors.New("venue down")
	}
	p, ok := f.prices[symbol]
	if !ok {
		return decimal.Zero, errors.New("no price")
	}
	return p, nil
}

func (f *fakeMarketData) GetDailyCloses(ctx context.Context, venue, symbol string, limit int) ([]float64, error) {
	return []float64{100, 99, 98, 97}, nil
}

type fakeBeta struct{}

func (fakeBeta) EstimateHedgeRatio(ctx context.Context, venue, spot, deriv string) (float64, error) {
	return 1.02, nil
}

type fakePlanner struct {
	planned []decimal.Decimal
}

func (f *fakePlanner) PlanExecution(ctx context.Context, symbol string, quantity decimal.Decimal) (*domain.HedgePlan, error) {
	f.planned = append(f.planned, quantity)
	return &domain.HedgePlan{
		Venue:         "bybit",
		AvgFillPrice:  d(50010),
		TotalNotional: quantity.Abs().Mul(d(50010)),
	}, nil
}

type fakePublisher struct {
	topics []string
	events []any
}

func (f *fakePublisher) Publish(ctx context.Context, topic string, key string, event any) error {
	f.topics = append(f.topics, topic)
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) PublishInTx(ctx context.Context, tx any, topic string, key string, event any) error {
	f.topics = append(f.topics, topic)
	f.events = append(f.events, event)
	return nil
}

func newService(t *testing.T) (*application.HedgeService, *memPositionRepo, *memRecordRepo, *fakePlanner, *fakePublisher) {
	t.Helper()
	positionRepo := newMemPositionRepo()
	recordRepo := &memRecordRepo{}
	planner := &fakePlanner{}
	publisher := &fakePublisher{}
	service := application.NewHedgeService(
		positionRepo, recordRepo,
		&fakeMarketData{prices: map[string]decimal.Decimal{
			"BTC/USDT":      d(50000),
			"BTC/USDT:USDT": d(50000),
		}},
		fakeBeta{}, planner, publisher,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return service, positionRepo, recordRepo, planner, publisher
}

func createMonitor(t *testing.T, service *application.HedgeService, autoExecute bool) string {
	t.Helper()
	id, err := service.CreateMonitor(context.Background(), application.CreateMonitorCommand{
		UserID:           42,
		Venue:            "bybit",
		SpotSymbol:       "BTC/USDT",
		DerivativeSymbol: "BTC/USDT:USDT",
		SpotQuantity:     d(1),
		Config: domain.HedgeConfig{
			TargetHedgeRatio: d(0.6),
			DeltaThreshold:   d(1000),
			AutoExecute:      autoExecute,
		},
	})
	if err != nil {
		t.Fatalf("CreateMonitor: %v", err)
	}
	return id
}

func TestRunCycleExecutesHedge(t *testing.T) {
	service, positionRepo, recordRepo, planner, publisher := newService(t)
	id := createMonitor(t, service, true)

	if err := service.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	if len(planner.planned) != 1 {
		t.Fatalf("planned %d trades, want 1", len(planner.planned))
	}
	if !planner.planned[0].Equal(d(-0.4)) {
		t.Errorf("planned quantity = %s, want -0.4", planner.planned[0])
	}

	position, _ := positionRepo.GetByID(context.Background(), id)
	if !position.HedgeHolding.Equal(d(-0.4)) {
		t.Errorf("hedge holding = %s, want -0.4", position.HedgeHolding)
	}

	if len(recordRepo.records) != 1 || recordRepo.records[0].Status != domain.HedgeRecordStatusExecuted {
		t.Errorf("records = %+v, want one executed record", recordRepo.records)
	}
	// 偏差 30000 超过阈值 1000，越界事件先于成交事件发布
	wantTopics := []string{"hedging.risk_threshold_breached", "hedging.hedge_executed"}
	if len(publisher.topics) != 2 || publisher.topics[0] != wantTopics[0] || publisher.topics[1] != wantTopics[1] {
		t.Fatalf("published topics = %v, want %v", publisher.topics, wantTopics)
	}
	breach, ok := publisher.events[0].(*domain.RiskThresholdBreachedEvent)
	if !ok {
		t.Fatalf("event[0] = %T, want RiskThresholdBreachedEvent", publisher.events[0])
	}
	if !breach.Discrepancy.Equal(d(30000)) || !breach.Threshold.Equal(d(1000)) {
		t.Errorf("breach = {disc %s, threshold %s}, want {30000, 1000}", breach.Discrepancy, breach.Threshold)
	}
}

func TestRunCycleManualModeRecommends(t *testing.T) {
	service, _, recordRepo, planner, publisher := newService(t)
	createMonitor(t, service, false)

	if err := service.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	if len(planner.planned) != 0 {
		t.Errorf("planned %d trades, want 0 in manual mode", len(planner.planned))
	}
	if len(recordRepo.records) != 1 || recordRepo.records[0].Status != domain.HedgeRecordStatusRecommended {
		t.Errorf("records = %+v, want one recommended record", recordRepo.records)
	}
	wantTopics := []string{"hedging.risk_threshold_breached", "hedging.hedge_recommended"}
	if len(publisher.topics) != 2 || publisher.topics[0] != wantTopics[0] || publisher.topics[1] != wantTopics[1] {
		t.Errorf("published topics = %v, want %v", publisher.topics, wantTopics)
	}
}

// 尘埃抑制不动仓也不发事件，但落一条 SKIPPED 记录供审计。
func TestRunCycleDustLeavesSkippedRecord(t *testing.T) {
	service, _, recordRepo, planner, publisher := newService(t)

	// 偏差 30 超过阈值 10，但换算数量 0.0006 低于尘埃线 0.001
	if _, err := service.CreateMonitor(context.Background(), application.CreateMonitorCommand{
		UserID: 42, Venue: "bybit", SpotSymbol: "BTC/USDT", DerivativeSymbol: "BTC/USDT:USDT",
		SpotQuantity: d(0.001),
		Config: domain.HedgeConfig{
			TargetHedgeRatio: d(0.6),
			DeltaThreshold:   d(10),
			AutoExecute:      true,
		},
	}); err != nil {
		t.Fatalf("CreateMonitor: %v", err)
	}

	if err := service.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	if len(planner.planned) != 0 {
		t.Errorf("planned %d trades, want 0", len(planner.planned))
	}
	if len(publisher.topics) != 0 {
		t.Errorf("published topics = %v, want none", publisher.topics)
	}
	if len(recordRepo.records) != 1 {
		t.Fatalf("records = %d, want 1", len(recordRepo.records))
	}
	record := recordRepo.records[0]
	if record.Status != domain.HedgeRecordStatusSkipped {
		t.Errorf("record status = %d, want skipped", record.Status)
	}
	if record.Reason != domain.ReasonDustSuppressed {
		t.Errorf("record reason = %q, want %q", record.Reason, domain.ReasonDustSuppressed)
	}
	if !record.TradeQuantity.IsZero() {
		t.Errorf("trade quantity = %s, want 0", record.TradeQuantity)
	}
}

// 一条持仓取数失败只跳过该持仓，不影响其余持仓。
func TestRunCycleFailureIsolation(t *testing.T) {
	positionRepo := newMemPositionRepo()
	recordRepo := &memRecordRepo{}
	planner := &fakePlanner{}
	service := application.NewHedgeService(
		positionRepo, recordRepo,
		&fakeMarketData{
			prices: map[string]decimal.Decimal{
				"BTC/USDT":      d(50000),
				"BTC/USDT:USDT": d(50000),
			},
			failSymbol: "ETH/USDT",
		},
		fakeBeta{}, planner, &fakePublisher{},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)

	ctx := context.Background()
	for _, spot := range []string{"ETH/USDT", "BTC/USDT"} {
		deriv := "BTC/USDT:USDT"
		if _, err := service.CreateMonitor(ctx, application.CreateMonitorCommand{
			UserID: 42, Venue: "bybit", SpotSymbol: spot, DerivativeSymbol: deriv,
			SpotQuantity: d(1),
			Config: domain.HedgeConfig{
				TargetHedgeRatio: d(0.6), DeltaThreshold: d(1000), AutoExecute: true,
			},
		}); err != nil {
			t.Fatalf("CreateMonitor(%s): %v", spot, err)
		}
	}

	if err := service.RunCycle(ctx); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	// ETH 持仓取数失败被跳过，BTC 持仓照常成交
	if len(planner.planned) != 1 {
		t.Errorf("planned %d trades, want 1", len(planner.planned))
	}
}

func TestCreateMonitorRejectsInvalidConfig(t *testing.T) {
	service, _, _, _, _ := newService(t)

	_, err := service.CreateMonitor(context.Background(), application.CreateMonitorCommand{
		UserID: 42, Venue: "bybit", SpotSymbol: "BTC/USDT", DerivativeSymbol: "BTC/USDT:USDT",
		SpotQuantity: d(1),
		Config: domain.HedgeConfig{
			TargetHedgeRatio: d(1.5), // 超出 [0,1]
			DeltaThreshold:   d(1000),
		},
	})
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("error = %v, want ErrInvalidConfig", err)
	}
}
