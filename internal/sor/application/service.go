// Package application 智能路由应用层
package application

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/spothedge/internal/sor/domain"
)

// ExecutionService 执行成本估计与路由服务
type ExecutionService struct {
	router *domain.Router
	logger *slog.Logger
}

func NewExecutionService(router *domain.Router, logger *slog.Logger) *ExecutionService {
	return &ExecutionService{router: router, logger: logger}
}

// FindBestExecution 为带符号交易量选择最优场所执行计划
func (s *ExecutionService) FindBestExecution(ctx context.Context, symbol string, quantity decimal.Decimal) (*domain.ExecutionPlan, error) {
	plan, err := s.router.FindBestExecution(ctx, symbol, quantity)
	if err != nil {
		s.logger.WarnContext(ctx, "execution routing failed", "symbol", symbol, "error", err)
		return nil, err
	}
	return plan, nil
}
