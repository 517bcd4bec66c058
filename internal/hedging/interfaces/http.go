// Package interfaces 对冲服务接口层
package interfaces

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/wyfcoding/spothedge/internal/hedging/application"
	"github.com/wyfcoding/spothedge/internal/hedging/domain"
)

// HTTPHandler HTTP 接口处理器
type HTTPHandler struct {
	hedgeService *application.HedgeService
}

// NewHTTPHandler 创建 HTTP 处理器
func NewHTTPHandler(hedgeService *application.HedgeService) *HTTPHandler {
	return &HTTPHandler{hedgeService: hedgeService}
}

// RegisterRoutes 注册路由
func (h *HTTPHandler) RegisterRoutes(r *gin.RouterGroup) {
	hedging := r.Group("/hedging")
	{
		hedging.POST("/monitors", h.CreateMonitor)
		hedging.POST("/monitors/:id/pause", h.PauseMonitor)
		hedging.POST("/monitors/:id/resume", h.ResumeMonitor)
		hedging.GET("/monitors", h.ListMonitors)
		hedging.GET("/monitors/:id/records", h.ListHedgeHistory)
		hedging.POST("/cycle", h.RunCycle)
		hedging.POST("/options/sizing", h.SizeOptionHedge)
	}
}

// CreateMonitorRequest 创建监控持仓请求
type CreateMonitorRequest struct {
	UserID                  uint64          `json:"user_id" binding:"required"`
	Venue                   string          `json:"venue" binding:"required"`
	SpotSymbol              string          `json:"spot_symbol" binding:"required"`
	DerivativeSymbol        string          `json:"derivative_symbol" binding:"required"`
	SpotQuantity            decimal.Decimal `json:"spot_quantity" binding:"required"`
	TargetHedgeRatio        decimal.Decimal `json:"target_hedge_ratio"`
	DeltaThreshold          decimal.Decimal `json:"delta_threshold" binding:"required"`
	VaRThreshold            decimal.Decimal `json:"var_threshold"`
	RegimeFilterEnabled     bool            `json:"regime_filter_enabled"`
	FastWindow              int             `json:"fast_window"`
	SlowWindow              int             `json:"slow_window"`
	AutoExecute             bool            `json:"auto_execute"`
	LargeTradeNotionalLimit decimal.Decimal `json:"large_trade_notional_limit"`
}

// CreateMonitor 创建监控持仓
func (h *HTTPHandler) CreateMonitor(c *gin.Context) {
	var req CreateMonitorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cmd := application.CreateMonitorCommand{
		UserID:           req.UserID,
		Venue:            req.Venue,
		SpotSymbol:       req.SpotSymbol,
		DerivativeSymbol: req.DerivativeSymbol,
		SpotQuantity:     req.SpotQuantity,
		Config: domain.HedgeConfig{
			TargetHedgeRatio:        req.TargetHedgeRatio,
			DeltaThreshold:          req.DeltaThreshold,
			VaRThreshold:            req.VaRThreshold,
			RegimeFilterEnabled:     req.RegimeFilterEnabled,
			FastWindow:              req.FastWindow,
			SlowWindow:              req.SlowWindow,
			AutoExecute:             req.AutoExecute,
			LargeTradeNotionalLimit: req.LargeTradeNotionalLimit,
		},
	}

	id, err := h.hedgeService.CreateMonitor(c.Request.Context(), cmd)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"position_id": id})
}

// PauseMonitor 暂停监控
func (h *HTTPHandler) PauseMonitor(c *gin.Context) {
	h.setStatus(c, domain.MonitorStatusPaused, "paused")
}

// ResumeMonitor 恢复监控
func (h *HTTPHandler) ResumeMonitor(c *gin.Context) {
	h.setStatus(c, domain.MonitorStatusActive, "resumed")
}

func (h *HTTPHandler) setStatus(c *gin.Context, status domain.MonitorStatus, message string) {
	id := c.Param("id")
	if err := h.hedgeService.SetMonitorStatus(c.Request.Context(), id, status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// ListMonitors 查询用户的监控持仓
func (h *HTTPHandler) ListMonitors(c *gin.Context) {
	var query struct {
		UserID uint64 `form:"user_id" binding:"required"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	monitors, err := h.hedgeService.ListMonitors(c.Request.Context(), query.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"monitors": monitors})
}

// ListHedgeHistory 查询某持仓的对冲记录
func (h *HTTPHandler) ListHedgeHistory(c *gin.Context) {
	var query struct {
		Limit int `form:"limit"`
	}
	_ = c.ShouldBindQuery(&query)

	records, err := h.hedgeService.ListHedgeHistory(c.Request.Context(), c.Param("id"), query.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// RunCycle 手动触发一轮对冲评估
func (h *HTTPHandler) RunCycle(c *gin.Context) {
	if err := h.hedgeService.RunCycle(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cycle completed"})
}

// SizeOptionHedgeRequest 期权配比请求
type SizeOptionHedgeRequest struct {
	SpotQuantity decimal.Decimal `json:"spot_quantity" binding:"required"`
	OptionDelta  decimal.Decimal `json:"option_delta" binding:"required"`
	OptionPrice  decimal.Decimal `json:"option_price" binding:"required"`
}

// SizeOptionHedge 期权 delta 中性配比
func (h *HTTPHandler) SizeOptionHedge(c *gin.Context) {
	var req SizeOptionHedgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sizing, err := h.hedgeService.SizeOptionHedge(req.SpotQuantity, req.OptionDelta, req.OptionPrice)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sizing)
}
