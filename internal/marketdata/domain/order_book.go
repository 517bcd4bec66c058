package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderBookItem 价格档位
type OrderBookItem struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// OrderBook 订单簿深度快照
type OrderBook struct {
	Venue     string
	Symbol    string
	Bids      []OrderBookItem
	Asks      []OrderBookItem
	Timestamp time.Time
}

// MidPrice 买一卖一的中间价。任一侧为空时返回 false。
func (b *OrderBook) MidPrice() (decimal.Decimal, bool) {
	if len(b.Bids) == 0 || len(b.Asks) == 0 {
		return decimal.Zero, false
	}
	two := decimal.NewFromInt(2)
	return b.Bids[0].Price.Add(b.Asks[0].Price).Div(two), true
}
