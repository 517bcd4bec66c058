// Package client 行情网关到路由侧深度接口的适配。
package client

import (
	"context"
	"fmt"

	marketdata "github.com/wyfcoding/spothedge/internal/marketdata/domain"
	"github.com/wyfcoding/spothedge/internal/sor/domain"
)

// GatewayDepthProvider 将行情网关适配为路由侧的 DepthProvider
type GatewayDepthProvider struct {
	gateway marketdata.MarketDataGateway
}

func NewGatewayDepthProvider(gateway marketdata.MarketDataGateway) *GatewayDepthProvider {
	return &GatewayDepthProvider{gateway: gateway}
}

func (p *GatewayDepthProvider) GetDepth(ctx context.Context, venue, symbol string, levels int) (*domain.MarketDepth, error) {
	book, err := p.gateway.GetOrderBook(ctx, venue, symbol, levels)
	if err != nil {
		return nil, fmt.Errorf("fetch order book: %w", err)
	}

	depth := &domain.MarketDepth{
		Venue:     venue,
		Symbol:    symbol,
		Timestamp: book.Timestamp,
	}
	for _, bid := range book.Bids {
		depth.Bids = append(depth.Bids, domain.PriceLevel{Price: bid.Price, Quantity: bid.Quantity})
	}
	for _, ask := range book.Asks {
		depth.Asks = append(depth.Asks, domain.PriceLevel{Price: ask.Price, Quantity: ask.Quantity})
	}
	return depth, nil
}
