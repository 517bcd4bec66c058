// Package domain 对冲服务仓储接口
package domain

import "context"

type MonitoredPositionRepository interface {
	Save(ctx context.Context, position *MonitoredPosition) error
	GetByID(ctx context.Context, positionID string) (*MonitoredPosition, error)
	ListActive(ctx context.Context) ([]*MonitoredPosition, error)
	ListByUser(ctx context.Context, userID uint64) ([]*MonitoredPosition, error)
}

type HedgeRecordRepository interface {
	Save(ctx context.Context, record *HedgeRecord) error
	ListByPosition(ctx context.Context, positionID string, limit int) ([]*HedgeRecord, error)
}
