package consumer

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/wyfcoding/spothedge/internal/hedging/application"
)

const (
	// TopicPositionUpdated 外部成交流推送的现货持仓变更
	TopicPositionUpdated = "portfolio.position_updated"
	// TopicHedgeConfirmed 人工确认对冲建议
	TopicHedgeConfirmed = "hedging.hedge_confirmed"
)

// EventHandler 消费上游事件驱动对冲状态变更
type EventHandler struct {
	hedgeService *application.HedgeService
	logger       *slog.Logger
}

func NewEventHandler(hedgeService *application.HedgeService, logger *slog.Logger) *EventHandler {
	return &EventHandler{hedgeService: hedgeService, logger: logger}
}

func (h *EventHandler) Handle(ctx context.Context, msg kafka.Message) error {
	switch msg.Topic {
	case TopicPositionUpdated:
		var payload struct {
			PositionID   string          `json:"position_id"`
			SpotQuantity decimal.Decimal `json:"spot_quantity"`
		}
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			h.logger.ErrorContext(ctx, "failed to unmarshal position update", "error", err)
			return err
		}
		return h.hedgeService.UpdateSpotQuantity(ctx, payload.PositionID, payload.SpotQuantity)

	case TopicHedgeConfirmed:
		var payload struct {
			PositionID string          `json:"position_id"`
			Quantity   decimal.Decimal `json:"quantity"`
			FillPrice  decimal.Decimal `json:"fill_price"`
		}
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			h.logger.ErrorContext(ctx, "failed to unmarshal hedge confirmation", "error", err)
			return err
		}
		return h.hedgeService.ConfirmHedge(ctx, payload.PositionID, payload.Quantity, payload.FillPrice)

	default:
		h.logger.WarnContext(ctx, "unknown hedging event topic", "topic", msg.Topic)
		return nil
	}
}
