// Package client 行情网关到风控窄接口的适配。
package client

import (
	"context"
	"fmt"

	marketdata "github.com/wyfcoding/spothedge/internal/marketdata/domain"
	"github.com/wyfcoding/spothedge/internal/risk/domain"
)

// MarketDataAdapter 将行情网关适配为风控侧的 MarketDataClient
type MarketDataAdapter struct {
	gateway marketdata.MarketDataGateway
}

func NewMarketDataAdapter(gateway marketdata.MarketDataGateway) *MarketDataAdapter {
	return &MarketDataAdapter{gateway: gateway}
}

func (a *MarketDataAdapter) GetDailyCloses(ctx context.Context, venue, symbol string, limit int) ([]domain.HistoricalBar, error) {
	klines, err := a.gateway.GetKlines(ctx, venue, symbol, "1d", limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDataUnavailable, err)
	}

	bars := make([]domain.HistoricalBar, 0, len(klines))
	for _, k := range klines {
		closePrice, _ := k.Close.Float64()
		bars = append(bars, domain.HistoricalBar{
			Timestamp: k.OpenTime,
			Close:     closePrice,
		})
	}
	return bars, nil
}
