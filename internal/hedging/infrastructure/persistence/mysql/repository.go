// 生成摘要：实现对冲服务的 MySQL 仓储层，基于 GORM。
package mysql

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/wyfcoding/spothedge/internal/hedging/domain"
)

// monitoredPositionRepository GORM 监控持仓仓储实现
type monitoredPositionRepository struct {
	db *gorm.DB
}

// NewMonitoredPositionRepository 创建监控持仓仓储
func NewMonitoredPositionRepository(db *gorm.DB) domain.MonitoredPositionRepository {
	return &monitoredPositionRepository{db: db}
}

// Save 保存监控持仓聚合根
func (r *monitoredPositionRepository) Save(ctx context.Context, position *domain.MonitoredPosition) error {
	return r.db.WithContext(ctx).Save(position).Error
}

// GetByID 根据业务 ID 获取监控持仓
func (r *monitoredPositionRepository) GetByID(ctx context.Context, positionID string) (*domain.MonitoredPosition, error) {
	var position domain.MonitoredPosition
	if err := r.db.WithContext(ctx).Where("position_id = ?", positionID).First(&position).Error; err != nil {
		return nil, fmt.Errorf("monitored position not found: %w", err)
	}
	return &position, nil
}

// ListActive 获取所有活跃监控持仓
func (r *monitoredPositionRepository) ListActive(ctx context.Context) ([]*domain.MonitoredPosition, error) {
	var positions []*domain.MonitoredPosition
	if err := r.db.WithContext(ctx).Where("status = ?", domain.MonitorStatusActive).Find(&positions).Error; err != nil {
		return nil, err
	}
	return positions, nil
}

// ListByUser 获取某用户的全部监控持仓
func (r *monitoredPositionRepository) ListByUser(ctx context.Context, userID uint64) ([]*domain.MonitoredPosition, error) {
	var positions []*domain.MonitoredPosition
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&positions).Error; err != nil {
		return nil, err
	}
	return positions, nil
}

// hedgeRecordRepository GORM 对冲记录仓储实现
type hedgeRecordRepository struct {
	db *gorm.DB
}

// NewHedgeRecordRepository 创建对冲记录仓储
func NewHedgeRecordRepository(db *gorm.DB) domain.HedgeRecordRepository {
	return &hedgeRecordRepository{db: db}
}

// Save 保存对冲记录
func (r *hedgeRecordRepository) Save(ctx context.Context, record *domain.HedgeRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// ListByPosition 按时间倒序获取某持仓的对冲记录
func (r *hedgeRecordRepository) ListByPosition(ctx context.Context, positionID string, limit int) ([]*domain.HedgeRecord, error) {
	var records []*domain.HedgeRecord
	if err := r.db.WithContext(ctx).
		Where("position_id = ?", positionID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
