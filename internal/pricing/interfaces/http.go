// Package interfaces 期权定价接口层
package interfaces

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/wyfcoding/spothedge/internal/pricing/application"
	"github.com/wyfcoding/spothedge/internal/pricing/domain"
)

// HTTPHandler HTTP 接口处理器
type HTTPHandler struct {
	pricingService *application.PricingService
}

// NewHTTPHandler 创建 HTTP 处理器
func NewHTTPHandler(pricingService *application.PricingService) *HTTPHandler {
	return &HTTPHandler{pricingService: pricingService}
}

// RegisterRoutes 注册路由
func (h *HTTPHandler) RegisterRoutes(r *gin.RouterGroup) {
	pricing := r.Group("/pricing")
	{
		pricing.POST("/options/greeks", h.PriceOption)
	}
}

// PriceOptionRequest 期权定价请求
type PriceOptionRequest struct {
	InstrumentName  string          `json:"instrument_name" binding:"required"`
	UnderlyingPrice decimal.Decimal `json:"underlying_price" binding:"required"`
	MarkPrice       float64         `json:"mark_price"`
	MarkIV          float64         `json:"mark_iv"`
	UseForecastVol  bool            `json:"use_forecast_vol"`

	Delta *float64 `json:"delta"`
	Gamma *float64 `json:"gamma"`
	Vega  *float64 `json:"vega"`
	Theta *float64 `json:"theta"`
}

// PriceOption 计算期权希腊字母与计价货币价格
func (h *HTTPHandler) PriceOption(c *gin.Context) {
	var req PriceOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quote := &domain.OptionQuote{
		InstrumentName: req.InstrumentName,
		MarkPrice:      req.MarkPrice,
		MarkIV:         req.MarkIV,
	}
	if req.Delta != nil && req.Gamma != nil && req.Vega != nil && req.Theta != nil {
		quote.Greeks = &domain.QuotedGreeks{
			Delta: *req.Delta,
			Gamma: *req.Gamma,
			Vega:  *req.Vega,
			Theta: *req.Theta,
		}
	}

	greeks, err := h.pricingService.PriceOption(c.Request.Context(), req.UnderlyingPrice, quote, req.UseForecastVol)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBadInstrument):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrNoQuotedGreeks), errors.Is(err, domain.ErrNoVolModel):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, greeks)
}
