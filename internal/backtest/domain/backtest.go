package domain

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 回测任务状态
const (
	TaskStatusPending   = "PENDING"
	TaskStatusCompleted = "COMPLETED"
	TaskStatusFailed    = "FAILED"
)

// BacktestTask 回测任务。策略配置随任务快照落库, 保证结果可复现。
type BacktestTask struct {
	gorm.Model
	TaskID           string          `gorm:"column:task_id;type:varchar(64);uniqueIndex;not null"`
	UserID           uint64          `gorm:"column:user_id;index;not null"`
	Venue            string          `gorm:"column:venue;type:varchar(32);not null"`
	SpotSymbol       string          `gorm:"column:spot_symbol;type:varchar(32);not null"`
	DerivativeSymbol string          `gorm:"column:derivative_symbol;type:varchar(32);not null"`
	Interval         string          `gorm:"column:bar_interval;type:varchar(8);not null"`
	Bars             int             `gorm:"column:bars;not null"`
	InitialCapital   decimal.Decimal `gorm:"column:initial_capital;type:decimal(32,8);not null"`
	InitialSpotQty   decimal.Decimal `gorm:"column:initial_spot_qty;type:decimal(32,8);not null"`
	SlippagePct      decimal.Decimal `gorm:"column:slippage_pct;type:decimal(12,8);not null"`
	FeeRate          decimal.Decimal `gorm:"column:fee_rate;type:decimal(12,8);not null"`

	TargetHedgeRatio        decimal.Decimal `gorm:"column:target_hedge_ratio;type:decimal(12,8);not null"`
	DeltaThreshold          decimal.Decimal `gorm:"column:delta_threshold;type:decimal(32,8);not null"`
	RegimeFilterEnabled     bool            `gorm:"column:regime_filter_enabled;not null"`
	FastWindow              int             `gorm:"column:fast_window"`
	SlowWindow              int             `gorm:"column:slow_window"`
	LargeTradeNotionalLimit decimal.Decimal `gorm:"column:large_trade_limit;type:decimal(32,8)"`

	Status string `gorm:"column:status;type:varchar(16);index;not null"`
	Error  string `gorm:"column:error;type:varchar(512)"`
}

func (BacktestTask) TableName() string { return "backtest_tasks" }

// BacktestReport 回测绩效落库快照。
type BacktestReport struct {
	gorm.Model
	TaskID              string          `gorm:"column:task_id;type:varchar(64);uniqueIndex;not null"`
	TotalReturn         float64         `gorm:"column:total_return;not null"`
	SharpeRatio         float64         `gorm:"column:sharpe_ratio;not null"`
	MaxDrawdown         float64         `gorm:"column:max_drawdown;not null"`
	SpotPnL             decimal.Decimal `gorm:"column:spot_pnl;type:decimal(32,8);not null"`
	HedgePnL            decimal.Decimal `gorm:"column:hedge_pnl;type:decimal(32,8);not null"`
	TotalCosts          decimal.Decimal `gorm:"column:total_costs;type:decimal(32,8);not null"`
	NetPnL              decimal.Decimal `gorm:"column:net_pnl;type:decimal(32,8);not null"`
	UnhedgedReturn      float64         `gorm:"column:unhedged_return;not null"`
	UnhedgedMaxDrawdown float64         `gorm:"column:unhedged_max_drawdown;not null"`
	TradeCount          int             `gorm:"column:trade_count;not null"`
}

func (BacktestReport) TableName() string { return "backtest_reports" }

// BacktestRepository 回测任务与报告持久化。
type BacktestRepository interface {
	SaveTask(ctx context.Context, task *BacktestTask) error
	GetTaskByID(ctx context.Context, taskID string) (*BacktestTask, error)
	ListTasksByUser(ctx context.Context, userID uint64, limit int) ([]*BacktestTask, error)
	SaveReport(ctx context.Context, report *BacktestReport) error
	GetReportByTaskID(ctx context.Context, taskID string) (*BacktestReport, error)
}
