// Package domain 行情网关领域层
// 生成摘要：
// 1) 定义行情/历史K线/订单簿/期权行情的统一网关接口
// 2) 定义波动率预测器接口（外部模型，黑盒）
// 3) 定义数据不可用的哨兵错误
package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnavailable 上游数据拉取失败或返回为空。恢复方式是跳过当前周期，绝不编造数值。
	ErrUnavailable = errors.New("market data unavailable")

	// ErrNoModel 波动率预测模型尚未就绪
	ErrNoModel = errors.New("volatility model unavailable")
)

// MarketDataGateway 行情网关接口。各交易所适配器实现此接口。
type MarketDataGateway interface {
	// GetPrice 获取最新成交价
	GetPrice(ctx context.Context, venue, symbol string) (decimal.Decimal, error)
	// GetKlines 获取最近 limit 根 K 线，按时间升序排列
	GetKlines(ctx context.Context, venue, symbol, interval string, limit int) ([]*Kline, error)
	// GetOrderBook 获取订单簿深度快照
	GetOrderBook(ctx context.Context, venue, symbol string, depth int) (*OrderBook, error)
	// ListOptionInstruments 列出某一标的的全部活跃期权合约
	ListOptionInstruments(ctx context.Context, underlying string) ([]string, error)
	// GetOptionTicker 获取期权合约的行情快照
	GetOptionTicker(ctx context.Context, instrument string) (*OptionTicker, error)
}

// VolatilityForecaster 年化波动率预测器。模型训练在本仓库范围之外。
type VolatilityForecaster interface {
	ForecastAnnualizedVol(ctx context.Context) (float64, error)
}
