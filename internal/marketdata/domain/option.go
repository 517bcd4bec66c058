package domain

import "time"

// OptionQuotedGreeks 交易所随行情给出的希腊字母（标的计价约定）
type OptionQuotedGreeks struct {
	Delta float64
	Gamma float64
	Vega  float64
	Theta float64
}

// OptionTicker 期权行情快照。
// MarkPrice 以标的资产计价（如 Deribit 的 BTC 本位报价），
// 换算为计价货币在定价模块完成。
type OptionTicker struct {
	InstrumentName string
	MarkPrice      float64
	MarkIV         float64
	Greeks         *OptionQuotedGreeks
	Timestamp      time.Time
}
