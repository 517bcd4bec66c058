package client

import (
	"context"

	backtestdomain "github.com/wyfcoding/spothedge/internal/backtest/domain"
	marketdomain "github.com/wyfcoding/spothedge/internal/marketdata/domain"
)

// BarSourceAdapter 将行情网关K线裁剪为回测所需的收盘序列。
type BarSourceAdapter struct {
	gateway marketdomain.MarketDataGateway
}

func NewBarSourceAdapter(gateway marketdomain.MarketDataGateway) *BarSourceAdapter {
	return &BarSourceAdapter{gateway: gateway}
}

func (a *BarSourceAdapter) GetSeries(ctx context.Context, venue, symbol, interval string, limit int) ([]backtestdomain.Bar, error) {
	klines, err := a.gateway.GetKlines(ctx, venue, symbol, interval, limit)
	if err != nil {
		return nil, err
	}
	bars := make([]backtestdomain.Bar, 0, len(klines))
	for _, k := range klines {
		bars = append(bars, backtestdomain.Bar{Timestamp: k.OpenTime, Close: k.Close})
	}
	return bars, nil
}
