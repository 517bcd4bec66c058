package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/wyfcoding/spothedge/internal/backtest/domain"
)

type backtestRepository struct {
	db *gorm.DB
}

// NewBacktestRepository 创建基于 GORM 的回测仓储。
func NewBacktestRepository(db *gorm.DB) domain.BacktestRepository {
	return &backtestRepository{db: db}
}

func (r *backtestRepository) SaveTask(ctx context.Context, task *domain.BacktestTask) error {
	return r.db.WithContext(ctx).Save(task).Error
}

func (r *backtestRepository) GetTaskByID(ctx context.Context, taskID string) (*domain.BacktestTask, error) {
	var task domain.BacktestTask
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *backtestRepository) ListTasksByUser(ctx context.Context, userID uint64, limit int) ([]*domain.BacktestTask, error) {
	var tasks []*domain.BacktestTask
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *backtestRepository) SaveReport(ctx context.Context, report *domain.BacktestReport) error {
	return r.db.WithContext(ctx).Save(report).Error
}

func (r *backtestRepository) GetReportByTaskID(ctx context.Context, taskID string) (*domain.BacktestReport, error) {
	var report domain.BacktestReport
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).First(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}
