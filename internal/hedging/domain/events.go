// Package domain 对冲服务领域事件
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type DomainEvent interface {
	EventName() string
	OccurredAt() time.Time
}

// HedgeExecutedEvent 对冲交易已执行事件
type HedgeExecutedEvent struct {
	PositionID string          `json:"position_id"`
	UserID     uint64          `json:"user_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	FillPrice  decimal.Decimal `json:"fill_price"`
	Timestamp  time.Time       `json:"timestamp"`
}

func (e *HedgeExecutedEvent) EventName() string     { return "hedging.hedge_executed" }
func (e *HedgeExecutedEvent) OccurredAt() time.Time { return e.Timestamp }

// HedgeRecommendedEvent 对冲建议待人工确认事件
type HedgeRecommendedEvent struct {
	PositionID string          `json:"position_id"`
	UserID     uint64          `json:"user_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Notional   decimal.Decimal `json:"notional"`
	Regime     string          `json:"regime"`
	Reason     string          `json:"reason"`
	Timestamp  time.Time       `json:"timestamp"`
}

func (e *HedgeRecommendedEvent) EventName() string     { return "hedging.hedge_recommended" }
func (e *HedgeRecommendedEvent) OccurredAt() time.Time { return e.Timestamp }

// RiskThresholdBreachedEvent 风险阈值突破事件
type RiskThresholdBreachedEvent struct {
	PositionID  string          `json:"position_id"`
	UserID      uint64          `json:"user_id"`
	Discrepancy decimal.Decimal `json:"discrepancy"`
	Threshold   decimal.Decimal `json:"threshold"`
	Timestamp   time.Time       `json:"timestamp"`
}

func (e *RiskThresholdBreachedEvent) EventName() string     { return "hedging.risk_threshold_breached" }
func (e *RiskThresholdBreachedEvent) OccurredAt() time.Time { return e.Timestamp }
