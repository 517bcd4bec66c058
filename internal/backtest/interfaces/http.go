// Package interfaces 回测服务接口层
package interfaces

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wyfcoding/spothedge/internal/backtest/application"
	hedgingdomain "github.com/wyfcoding/spothedge/internal/hedging/domain"
)

// HTTPHandler HTTP 接口处理器
type HTTPHandler struct {
	backtestService *application.BacktestService
}

// NewHTTPHandler 创建 HTTP 处理器
func NewHTTPHandler(backtestService *application.BacktestService) *HTTPHandler {
	return &HTTPHandler{backtestService: backtestService}
}

// RegisterRoutes 注册路由
func (h *HTTPHandler) RegisterRoutes(r *gin.RouterGroup) {
	backtest := r.Group("/backtests")
	{
		backtest.POST("", h.SubmitBacktest)
		backtest.GET("", h.ListTasks)
		backtest.GET("/:id", h.GetTask)
		backtest.GET("/:id/report", h.GetReport)
	}
}

// SubmitBacktestRequest 提交回测请求
type SubmitBacktestRequest struct {
	UserID           uint64          `json:"user_id" binding:"required"`
	Venue            string          `json:"venue" binding:"required"`
	SpotSymbol       string          `json:"spot_symbol" binding:"required"`
	DerivativeSymbol string          `json:"derivative_symbol" binding:"required"`
	Interval         string          `json:"interval" binding:"required"`
	Bars             int             `json:"bars" binding:"required"`
	InitialCapital   decimal.Decimal `json:"initial_capital" binding:"required"`
	InitialSpotQty   decimal.Decimal `json:"initial_spot_qty"`
	SlippagePct      decimal.Decimal `json:"slippage_pct"`
	FeeRate          decimal.Decimal `json:"fee_rate"`
	PeriodsPerYear   float64         `json:"periods_per_year"`

	TargetHedgeRatio        decimal.Decimal `json:"target_hedge_ratio"`
	DeltaThreshold          decimal.Decimal `json:"delta_threshold" binding:"required"`
	RegimeFilterEnabled     bool            `json:"regime_filter_enabled"`
	FastWindow              int             `json:"fast_window"`
	SlowWindow              int             `json:"slow_window"`
	LargeTradeNotionalLimit decimal.Decimal `json:"large_trade_notional_limit"`
}

// SubmitBacktest 提交回测任务, 返回任务号供轮询
func (h *HTTPHandler) SubmitBacktest(c *gin.Context) {
	var req SubmitBacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cmd := &application.SubmitBacktestCommand{
		UserID:           req.UserID,
		Venue:            req.Venue,
		SpotSymbol:       req.SpotSymbol,
		DerivativeSymbol: req.DerivativeSymbol,
		Interval:         req.Interval,
		Bars:             req.Bars,
		InitialCapital:   req.InitialCapital,
		InitialSpotQty:   req.InitialSpotQty,
		SlippagePct:      req.SlippagePct,
		FeeRate:          req.FeeRate,
		PeriodsPerYear:   req.PeriodsPerYear,
		Config: hedgingdomain.HedgeConfig{
			TargetHedgeRatio:        req.TargetHedgeRatio,
			DeltaThreshold:          req.DeltaThreshold,
			RegimeFilterEnabled:     req.RegimeFilterEnabled,
			FastWindow:              req.FastWindow,
			SlowWindow:              req.SlowWindow,
			AutoExecute:             true,
			LargeTradeNotionalLimit: req.LargeTradeNotionalLimit,
		},
	}

	task, err := h.backtestService.SubmitBacktest(c.Request.Context(), cmd)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"task_id": task.TaskID, "status": task.Status})
}

// GetTask 查询任务状态
func (h *HTTPHandler) GetTask(c *gin.Context) {
	task, err := h.backtestService.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, task)
}

// GetReport 查询绩效报告
func (h *HTTPHandler) GetReport(c *gin.Context) {
	report, err := h.backtestService.GetReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not ready"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

// ListTasks 按用户列出任务
func (h *HTTPHandler) ListTasks(c *gin.Context) {
	var query struct {
		UserID uint64 `form:"user_id" binding:"required"`
		Limit  int    `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if query.Limit <= 0 {
		query.Limit = 20
	}

	tasks, err := h.backtestService.ListTasks(c.Request.Context(), query.UserID, query.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}
