package infrastructure

import (
	"context"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/wyfcoding/spothedge/internal/marketdata/domain"
)

const (
	defaultVolLookback = 30
	minVolObservations = 10
	tradingDaysPerYear = 365.0
)

// RealizedVolForecaster 以近期日收益率的样本标准差年化作为波动率预测。
// 外部训练模型不可用时的朴素替代, 历史不足返回 ErrNoModel。
type RealizedVolForecaster struct {
	gateway  domain.MarketDataGateway
	venue    string
	symbol   string
	lookback int
}

func NewRealizedVolForecaster(gateway domain.MarketDataGateway, venue, symbol string) *RealizedVolForecaster {
	return &RealizedVolForecaster{
		gateway:  gateway,
		venue:    venue,
		symbol:   symbol,
		lookback: defaultVolLookback,
	}
}

func (f *RealizedVolForecaster) ForecastAnnualizedVol(ctx context.Context) (float64, error) {
	klines, err := f.gateway.GetKlines(ctx, f.venue, f.symbol, "1d", f.lookback)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrNoModel, err)
	}
	if len(klines) < minVolObservations {
		return 0, fmt.Errorf("%w: only %d daily bars", domain.ErrNoModel, len(klines))
	}

	returns := make([]float64, 0, len(klines)-1)
	for i := 1; i < len(klines); i++ {
		prev := klines[i-1].Close.InexactFloat64()
		if prev == 0 {
			continue
		}
		returns = append(returns, klines[i].Close.InexactFloat64()/prev-1)
	}

	std, err := stats.StandardDeviationSample(returns)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrNoModel, err)
	}
	return std * math.Sqrt(tradingDaysPerYear), nil
}
