// Package interfaces 风控服务接口层
package interfaces

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/wyfcoding/spothedge/internal/risk/application"
	"github.com/wyfcoding/spothedge/internal/risk/domain"
)

// HTTPHandler HTTP 接口处理器
type HTTPHandler struct {
	riskService *application.RiskService
}

// NewHTTPHandler 创建 HTTP 处理器
func NewHTTPHandler(riskService *application.RiskService) *HTTPHandler {
	return &HTTPHandler{riskService: riskService}
}

// RegisterRoutes 注册路由
func (h *HTTPHandler) RegisterRoutes(r *gin.RouterGroup) {
	risk := r.Group("/risk")
	{
		risk.GET("/hedge-ratio", h.EstimateHedgeRatio)
		risk.POST("/aggregate", h.AggregateRisk)
		risk.POST("/var", h.EstimateVaR)
		risk.POST("/stress", h.RunStress)
	}
}

// EstimateHedgeRatio 估计 beta 对冲比率
func (h *HTTPHandler) EstimateHedgeRatio(c *gin.Context) {
	var query struct {
		Venue            string `form:"venue" binding:"required"`
		SpotSymbol       string `form:"spot_symbol" binding:"required"`
		DerivativeSymbol string `form:"derivative_symbol" binding:"required"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	beta, err := h.riskService.EstimateHedgeRatio(c.Request.Context(), query.Venue, query.SpotSymbol, query.DerivativeSymbol)
	if err != nil {
		if errors.Is(err, domain.ErrDataUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "could not complete this risk assessment"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"beta": beta})
}

// PositionRequest 请求中的单个持仓
type PositionRequest struct {
	Symbol     string               `json:"symbol" binding:"required"`
	Class      domain.AssetClass    `json:"class" binding:"required"`
	Quantity   decimal.Decimal      `json:"quantity" binding:"required"`
	Underlying string               `json:"underlying"`
	Greeks     *domain.OptionGreeks `json:"greeks"`
}

// PortfolioRequest 组合敞口聚合请求
type PortfolioRequest struct {
	Positions []PositionRequest          `json:"positions" binding:"required"`
	Prices    map[string]decimal.Decimal `json:"prices" binding:"required"`
}

func toPositions(reqs []PositionRequest) []*domain.Position {
	positions := make([]*domain.Position, 0, len(reqs))
	for _, r := range reqs {
		positions = append(positions, &domain.Position{
			Symbol:     r.Symbol,
			Class:      r.Class,
			Quantity:   r.Quantity,
			Underlying: r.Underlying,
			Greeks:     r.Greeks,
		})
	}
	return positions
}

// AggregateRisk 汇总组合净敞口
func (h *HTTPHandler) AggregateRisk(c *gin.Context) {
	var req PortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	agg, err := h.riskService.AggregateRisk(toPositions(req.Positions), req.Prices)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, agg)
}

// EstimateVaRRequest VaR 估计请求
type EstimateVaRRequest struct {
	PortfolioRequest
	Venue           string  `json:"venue" binding:"required"`
	ReferenceSymbol string  `json:"reference_symbol" binding:"required"`
	Lookback        int     `json:"lookback"`
	Confidence      float64 `json:"confidence"`
}

// EstimateVaR 历史模拟法 VaR
func (h *HTTPHandler) EstimateVaR(c *gin.Context) {
	var req EstimateVaRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Confidence <= 0 || req.Confidence >= 1 {
		req.Confidence = 0.95
	}

	result, err := h.riskService.EstimateVaR(c.Request.Context(), application.EstimateVaRQuery{
		Venue:           req.Venue,
		ReferenceSymbol: req.ReferenceSymbol,
		Lookback:        req.Lookback,
		Confidence:      req.Confidence,
	}, toPositions(req.Positions), req.Prices)
	if err != nil {
		if errors.Is(err, domain.ErrDataUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "could not complete this risk assessment"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// RunStressRequest 压力场景请求
type RunStressRequest struct {
	PortfolioRequest
	SpotPrice   decimal.Decimal `json:"spot_price" binding:"required"`
	Name        string          `json:"name" binding:"required"`
	PriceChange float64         `json:"price_change" binding:"required"`
	IVChangePct float64         `json:"iv_change_pct"`
}

// RunStress 运行单一压力场景
func (h *HTTPHandler) RunStress(c *gin.Context) {
	var req RunStressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.riskService.RunStressScenario(toPositions(req.Positions), req.Prices, req.SpotPrice, domain.StressScenario{
		Name:        req.Name,
		PriceChange: req.PriceChange,
		IVChangePct: req.IVChangePct,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
