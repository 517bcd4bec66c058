// Package application 期权定价应用层
package application

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/spothedge/internal/pricing/domain"
)

// PricingService 期权定价服务。
// 根据调用方配置在交易所报价与波动率预测两条路径间切换。
type PricingService struct {
	quoted   domain.GreeksProvider
	forecast domain.GreeksProvider
	logger   *slog.Logger
}

func NewPricingService(quoted, forecast domain.GreeksProvider, logger *slog.Logger) *PricingService {
	return &PricingService{
		quoted:   quoted,
		forecast: forecast,
		logger:   logger,
	}
}

// PriceOption 计算单个期权的计价货币口径希腊字母与价格。
// useForecastVol 为真时走闭式定价路径，否则直接采用交易所报价。
func (s *PricingService) PriceOption(
	ctx context.Context,
	underlyingPrice decimal.Decimal,
	quote *domain.OptionQuote,
	useForecastVol bool,
) (*domain.Greeks, error) {
	if quote == nil {
		return nil, domain.ErrNoQuotedGreeks
	}

	provider := s.quoted
	if useForecastVol {
		provider = s.forecast
	}

	greeks, err := provider.Greeks(ctx, underlyingPrice, quote)
	if err != nil {
		s.logger.WarnContext(ctx, "option pricing failed",
			"instrument", quote.InstrumentName,
			"forecast_path", useForecastVol,
			"error", err,
		)
		return nil, err
	}

	return greeks, nil
}
