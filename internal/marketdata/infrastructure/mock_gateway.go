// Package infrastructure 行情网关的模拟实现。
// 变更说明：生产环境应替换为交易所 REST/WebSocket 适配器，此实现用于
// 本地联调与测试，基于固定种子的随机游走生成确定性行情。
package infrastructure

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/spothedge/internal/marketdata/domain"
)

// MockGateway 确定性模拟行情网关
type MockGateway struct {
	mu         sync.RWMutex
	basePrices map[string]float64 // symbol -> 基准价
	seed       int64
}

func NewMockGateway(seed int64) *MockGateway {
	return &MockGateway{
		basePrices: map[string]float64{
			"BTC/USDT":      50000,
			"BTC/USDT:USDT": 50000,
			"ETH/USDT":      3000,
			"ETH/USDT:USDT": 3000,
		},
		seed: seed,
	}
}

// SetBasePrice 设置某一交易对的基准价
func (g *MockGateway) SetBasePrice(symbol string, price float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.basePrices[symbol] = price
}

func (g *MockGateway) basePrice(symbol string) (float64, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.basePrices[symbol]
	return p, ok
}

// GetPrice 返回基准价附近的小幅扰动价
func (g *MockGateway) GetPrice(ctx context.Context, venue, symbol string) (decimal.Decimal, error) {
	base, ok := g.basePrice(symbol)
	if !ok {
		return decimal.Zero, domain.ErrUnavailable
	}
	rng := rand.New(rand.NewSource(g.seed + int64(len(venue)+len(symbol))))
	drift := (rng.Float64() - 0.5) * 0.002
	return decimal.NewFromFloat(base * (1 + drift)), nil
}

// GetKlines 生成确定性的随机游走 K 线序列
func (g *MockGateway) GetKlines(ctx context.Context, venue, symbol, interval string, limit int) ([]*domain.Kline, error) {
	base, ok := g.basePrice(symbol)
	if !ok {
		return nil, domain.ErrUnavailable
	}

	step, err := intervalDuration(interval)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(g.seed + int64(len(symbol))))
	klines := make([]*domain.Kline, 0, limit)
	price := base
	start := time.Now().UTC().Truncate(step).Add(-step * time.Duration(limit))
	for i := 0; i < limit; i++ {
		change := (rng.Float64() - 0.5) * 0.02
		open := price
		price *= 1 + change
		high := max(open, price) * 1.001
		low := min(open, price) * 0.999
		openTime := start.Add(step * time.Duration(i))
		klines = append(klines, &domain.Kline{
			Symbol:    symbol,
			Interval:  interval,
			OpenTime:  openTime,
			CloseTime: openTime.Add(step),
			Open:      decimal.NewFromFloat(open),
			High:      decimal.NewFromFloat(high),
			Low:       decimal.NewFromFloat(low),
			Close:     decimal.NewFromFloat(price),
			Volume:    decimal.NewFromFloat(100 + rng.Float64()*900),
		})
	}
	return klines, nil
}

// GetOrderBook 围绕基准价生成对称深度
func (g *MockGateway) GetOrderBook(ctx context.Context, venue, symbol string, depth int) (*domain.OrderBook, error) {
	base, ok := g.basePrice(symbol)
	if !ok {
		return nil, domain.ErrUnavailable
	}

	book := &domain.OrderBook{
		Venue:     venue,
		Symbol:    symbol,
		Timestamp: time.Now().UTC(),
	}
	tick := base * 0.0001
	for i := 0; i < depth; i++ {
		size := decimal.NewFromFloat(0.5 + 0.5*float64(i))
		book.Asks = append(book.Asks, domain.OrderBookItem{
			Price:    decimal.NewFromFloat(base + tick*float64(i+1)),
			Quantity: size,
		})
		book.Bids = append(book.Bids, domain.OrderBookItem{
			Price:    decimal.NewFromFloat(base - tick*float64(i+1)),
			Quantity: size,
		})
	}
	return book, nil
}

// ListOptionInstruments 生成围绕基准价的一组模拟期权合约
func (g *MockGateway) ListOptionInstruments(ctx context.Context, underlying string) ([]string, error) {
	base, ok := g.basePrice(underlying + "/USDT")
	if !ok {
		return nil, domain.ErrUnavailable
	}

	expiry := time.Now().UTC().AddDate(0, 1, 0)
	expiryTag := fmt.Sprintf("%d%s%s", expiry.Day(), strings.ToUpper(expiry.Format("Jan")), expiry.Format("06"))
	var instruments []string
	for _, pct := range []float64{0.8, 0.9, 1.0, 1.1, 1.2} {
		strike := int(base*pct/1000) * 1000
		for _, t := range []string{"C", "P"} {
			instruments = append(instruments, fmt.Sprintf("%s-%s-%d-%s", underlying, expiryTag, strike, t))
		}
	}
	return instruments, nil
}

// GetOptionTicker 返回带行权希腊字母的模拟期权行情
func (g *MockGateway) GetOptionTicker(ctx context.Context, instrument string) (*domain.OptionTicker, error) {
	return &domain.OptionTicker{
		InstrumentName: instrument,
		MarkPrice:      0.05, // 标的本位
		MarkIV:         0.65,
		Greeks: &domain.OptionQuotedGreeks{
			Delta: -0.45,
			Gamma: 0.0001,
			Vega:  25.0,
			Theta: -18.0,
		},
		Timestamp: time.Now().UTC(),
	}, nil
}

func intervalDuration(interval string) (time.Duration, error) {
	switch interval {
	case "1m":
		return time.Minute, nil
	case "1h":
		return time.Hour, nil
	case "1d":
		return 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unsupported interval %q", interval)
	}
}
