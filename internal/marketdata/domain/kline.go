package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kline 单根K线。时间区间为 [OpenTime, CloseTime)，价格字段以计价货币表示。
// 风控与回测只消费 OpenTime 与 Close，其余字段供完整行情适配器填充。
type Kline struct {
	Symbol    string
	Interval  string
	OpenTime  time.Time
	CloseTime time.Time
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    decimal.Decimal
}
