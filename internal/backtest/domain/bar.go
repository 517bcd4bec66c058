package domain

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInsufficientData 历史数据不足以驱动回测。
var ErrInsufficientData = errors.New("insufficient historical data for backtest")

// Bar 回测用的单根K线收盘快照。
type Bar struct {
	Timestamp time.Time
	Close     decimal.Decimal
}

// MergedBar 现货与对冲工具在同一时间戳上的对齐收盘价。
type MergedBar struct {
	Timestamp       time.Time
	SpotClose       decimal.Decimal
	DerivativeClose decimal.Decimal
}

// BarSource 行情历史数据源。由基础设施层适配行情网关实现。
type BarSource interface {
	GetSeries(ctx context.Context, venue, symbol, interval string, limit int) ([]Bar, error)
}

// MergeSeries 按时间戳取两条序列的交集并升序排列。
// 任一侧缺失的时间点直接丢弃, 保证每根合并K线两侧都有价格。
func MergeSeries(spot, derivative []Bar) []MergedBar {
	derivByTime := make(map[int64]decimal.Decimal, len(derivative))
	for _, b := range derivative {
		derivByTime[b.Timestamp.Unix()] = b.Close
	}

	merged := make([]MergedBar, 0, len(spot))
	for _, b := range spot {
		dc, ok := derivByTime[b.Timestamp.Unix()]
		if !ok {
			continue
		}
		merged = append(merged, MergedBar{
			Timestamp:       b.Timestamp,
			SpotClose:       b.Close,
			DerivativeClose: dc,
		})
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})
	return merged
}
