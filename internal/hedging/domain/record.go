// Package domain 对冲服务领域层
// 生成摘要：
// 1) 定义监控持仓聚合根 (每个用户组合一条)
// 2) 定义对冲记录实体
// 3) 定义仓储接口与领域事件
package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MonitorStatus 监控状态
type MonitorStatus int8

const (
	MonitorStatusActive MonitorStatus = 1
	MonitorStatusPaused MonitorStatus = 2
)

// MonitoredPosition 受监控的现货持仓聚合根。
// 周期评估逐条遍历，一条持仓的失败不影响其余持仓。
type MonitoredPosition struct {
	gorm.Model
	PositionID       string          `gorm:"column:position_id;type:varchar(32);uniqueIndex;not null"`
	UserID           uint64          `gorm:"column:user_id;index;not null"`
	Venue            string          `gorm:"column:venue;type:varchar(32);not null"`
	SpotSymbol       string          `gorm:"column:spot_symbol;type:varchar(32);not null"`
	DerivativeSymbol string          `gorm:"column:derivative_symbol;type:varchar(32);not null"`
	SpotQuantity     decimal.Decimal `gorm:"column:spot_quantity;type:decimal(32,16);not null"`
	HedgeHolding     decimal.Decimal `gorm:"column:hedge_holding;type:decimal(32,16);not null;default:0"`
	Status           MonitorStatus   `gorm:"column:status;type:tinyint;not null;default:1"`

	// 策略配置，内联存储
	TargetHedgeRatio        decimal.Decimal `gorm:"column:target_hedge_ratio;type:decimal(8,4);not null"`
	DeltaThreshold          decimal.Decimal `gorm:"column:delta_threshold;type:decimal(32,8);not null"`
	VaRThreshold            decimal.Decimal `gorm:"column:var_threshold;type:decimal(32,8);not null;default:0"`
	RegimeFilterEnabled     bool            `gorm:"column:regime_filter_enabled;not null;default:0"`
	FastWindow              int             `gorm:"column:fast_window;not null;default:0"`
	SlowWindow              int             `gorm:"column:slow_window;not null;default:0"`
	AutoExecute             bool            `gorm:"column:auto_execute;not null;default:0"`
	LargeTradeNotionalLimit decimal.Decimal `gorm:"column:large_trade_notional_limit;type:decimal(32,8);not null;default:0"`

	domainEvents []DomainEvent `gorm:"-"`
}

func (MonitoredPosition) TableName() string {
	return "monitored_positions"
}

// Config 导出为决策引擎配置
func (p *MonitoredPosition) Config() *HedgeConfig {
	return &HedgeConfig{
		TargetHedgeRatio:        p.TargetHedgeRatio,
		DeltaThreshold:          p.DeltaThreshold,
		VaRThreshold:            p.VaRThreshold,
		RegimeFilterEnabled:     p.RegimeFilterEnabled,
		FastWindow:              p.FastWindow,
		SlowWindow:              p.SlowWindow,
		AutoExecute:             p.AutoExecute,
		LargeTradeNotionalLimit: p.LargeTradeNotionalLimit,
	}
}

// ApplyHedgeFill 成交后更新对冲持仓并发出事件
func (p *MonitoredPosition) ApplyHedgeFill(quantity, fillPrice decimal.Decimal) {
	p.HedgeHolding = p.HedgeHolding.Add(quantity)
	p.addEvent(&HedgeExecutedEvent{
		PositionID: p.PositionID,
		UserID:     p.UserID,
		Quantity:   quantity,
		FillPrice:  fillPrice,
		Timestamp:  time.Now(),
	})
}

// RecommendHedge 产生人工确认建议事件
func (p *MonitoredPosition) RecommendHedge(decision *Decision) {
	p.addEvent(&HedgeRecommendedEvent{
		PositionID: p.PositionID,
		UserID:     p.UserID,
		Quantity:   decision.TradeQuantity,
		Notional:   decision.TradeNotional,
		Regime:     string(decision.Regime),
		Reason:     decision.Reason,
		Timestamp:  time.Now(),
	})
}

// FlagThresholdBreach 偏差超过阈值时发出风险越界事件，未超阈值不发。
// 多头市清仓可能在阈值以内触发交易，此时不算越界。
func (p *MonitoredPosition) FlagThresholdBreach(discrepancy decimal.Decimal) {
	if discrepancy.Abs().LessThanOrEqual(p.DeltaThreshold) {
		return
	}
	p.addEvent(&RiskThresholdBreachedEvent{
		PositionID:  p.PositionID,
		UserID:      p.UserID,
		Discrepancy: discrepancy,
		Threshold:   p.DeltaThreshold,
		Timestamp:   time.Now(),
	})
}

func (p *MonitoredPosition) addEvent(event DomainEvent) {
	p.domainEvents = append(p.domainEvents, event)
}

// GetDomainEvents 获取待发布领域事件
func (p *MonitoredPosition) GetDomainEvents() []DomainEvent {
	return p.domainEvents
}

// ClearDomainEvents 清空领域事件
func (p *MonitoredPosition) ClearDomainEvents() {
	p.domainEvents = nil
}

// HedgeRecordStatus 对冲记录状态
type HedgeRecordStatus int8

const (
	HedgeRecordStatusRecommended HedgeRecordStatus = 1
	HedgeRecordStatusExecuted    HedgeRecordStatus = 2
	HedgeRecordStatusSkipped     HedgeRecordStatus = 3
)

// HedgeRecord 单轮对冲评估的落库记录
type HedgeRecord struct {
	gorm.Model
	RecordID      string            `gorm:"column:record_id;type:varchar(32);uniqueIndex;not null"`
	PositionID    string            `gorm:"column:position_id;type:varchar(32);index;not null"`
	UserID        uint64            `gorm:"column:user_id;index;not null"`
	Regime        string            `gorm:"column:regime;type:varchar(16);not null"`
	TradeQuantity decimal.Decimal   `gorm:"column:trade_quantity;type:decimal(32,16);not null;default:0"`
	TradeNotional decimal.Decimal   `gorm:"column:trade_notional;type:decimal(32,8);not null;default:0"`
	Discrepancy   decimal.Decimal   `gorm:"column:discrepancy;type:decimal(32,8);not null;default:0"`
	Beta          decimal.Decimal   `gorm:"column:beta;type:decimal(16,8);not null;default:1"`
	Venue         string            `gorm:"column:venue;type:varchar(32)"`
	AvgFillPrice  decimal.Decimal   `gorm:"column:avg_fill_price;type:decimal(32,8);not null;default:0"`
	Status        HedgeRecordStatus `gorm:"column:status;type:tinyint;not null"`
	Reason        string            `gorm:"column:reason;type:varchar(255)"`
}

func (HedgeRecord) TableName() string {
	return "hedge_records"
}
