// 变更说明：定义风控上下文侧的行情客户端窄接口与数据不可用哨兵错误。
package domain

import (
	"context"
	"errors"
	"time"
)

// ErrDataUnavailable 上游行情或历史数据不可用。
// 可恢复错误，调用方应跳过本轮计算而非崩溃。
var ErrDataUnavailable = errors.New("market data unavailable")

// HistoricalBar 历史日线收盘记录
type HistoricalBar struct {
	Timestamp time.Time
	Close     float64
}

// MarketDataClient 风控所需的行情能力
type MarketDataClient interface {
	// GetDailyCloses 返回按时间升序排列的最近 limit 根日线
	GetDailyCloses(ctx context.Context, venue, symbol string, limit int) ([]HistoricalBar, error)
}
