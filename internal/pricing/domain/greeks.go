// 生成摘要：
// 1. 定义计价货币口径的希腊字母结果 (Greeks)。
// 2. 定义希腊字母来源策略接口 GreeksProvider 与两种实现：
//    交易所报价路径 (QuotedGreeksSource) 与波动率预测路径 (ForecastGreeksSource)。
// 变更说明：两条路径输出口径一致 (Vega 每 1%，Theta 每日)，可直接互换比较。
package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNoQuotedGreeks 交易所行情中缺失希腊字母
	ErrNoQuotedGreeks = errors.New("option ticker carries no greeks")
	// ErrExpired 合约已到期
	ErrExpired = errors.New("option instrument already expired")
	// ErrNoVolModel 波动率预测模型不可用
	ErrNoVolModel = errors.New("volatility forecast unavailable")
)

// QuotedGreeks 交易所报价的希腊字母
type QuotedGreeks struct {
	Delta float64
	Gamma float64
	Vega  float64
	Theta float64
}

// OptionQuote 期权行情快照。MarkPrice 以标的本位计价 (如 Deribit 惯例)。
type OptionQuote struct {
	InstrumentName string
	MarkPrice      float64
	MarkIV         float64
	Greeks         *QuotedGreeks
}

// Greeks 期权风险敏感度，全部以计价货币表示
type Greeks struct {
	Delta decimal.Decimal
	Gamma decimal.Decimal
	Vega  decimal.Decimal
	Theta decimal.Decimal
	Price decimal.Decimal
}

// VolatilityForecaster 波动率预测协作方
type VolatilityForecaster interface {
	// ForecastAnnualizedVol 返回下一周期的年化波动率预测
	ForecastAnnualizedVol(ctx context.Context) (float64, error)
}

// GreeksProvider 希腊字母来源策略
type GreeksProvider interface {
	Greeks(ctx context.Context, underlyingPrice decimal.Decimal, quote *OptionQuote) (*Greeks, error)
}

// QuotedGreeksSource 直接采用交易所报价的希腊字母。
// 标的本位的标记价格在此转换为计价货币。
type QuotedGreeksSource struct{}

func NewQuotedGreeksSource() *QuotedGreeksSource {
	return &QuotedGreeksSource{}
}

func (s *QuotedGreeksSource) Greeks(ctx context.Context, underlyingPrice decimal.Decimal, quote *OptionQuote) (*Greeks, error) {
	if quote == nil || quote.Greeks == nil {
		return nil, ErrNoQuotedGreeks
	}
	return &Greeks{
		Delta: decimal.NewFromFloat(quote.Greeks.Delta),
		Gamma: decimal.NewFromFloat(quote.Greeks.Gamma),
		Vega:  decimal.NewFromFloat(quote.Greeks.Vega),
		Theta: decimal.NewFromFloat(quote.Greeks.Theta),
		Price: decimal.NewFromFloat(quote.MarkPrice).Mul(underlyingPrice),
	}, nil
}

// ForecastGreeksSource 基于预测波动率的闭式定价路径。
// 对冲场景下无风险利率取 0。
type ForecastGreeksSource struct {
	forecaster   VolatilityForecaster
	interestRate float64
	now          func() time.Time // 可注入时钟
}

func NewForecastGreeksSource(forecaster VolatilityForecaster, interestRate float64) *ForecastGreeksSource {
	return &ForecastGreeksSource{
		forecaster:   forecaster,
		interestRate: interestRate,
		now:          time.Now,
	}
}

// WithClock 注入时钟，用于确定性测试
func (s *ForecastGreeksSource) WithClock(now func() time.Time) *ForecastGreeksSource {
	s.now = now
	return s
}

func (s *ForecastGreeksSource) Greeks(ctx context.Context, underlyingPrice decimal.Decimal, quote *OptionQuote) (*Greeks, error) {
	if quote == nil {
		return nil, ErrNoQuotedGreeks
	}

	instrument, err := ParseInstrument(quote.InstrumentName)
	if err != nil {
		return nil, err
	}

	yearsToExpiry := instrument.Expiry.Sub(s.now().UTC()).Hours() / 24 / 365
	if yearsToExpiry <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrExpired, quote.InstrumentName)
	}

	vol, err := s.forecaster.ForecastAnnualizedVol(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoVolModel, err)
	}

	spot, _ := underlyingPrice.Float64()
	result := CalculateBlackScholes(instrument.Type, BlackScholesInput{
		S: spot,
		K: instrument.Strike,
		T: yearsToExpiry,
		R: s.interestRate,
		V: vol,
	})

	return &Greeks{
		Delta: decimal.NewFromFloat(result.Delta),
		Gamma: decimal.NewFromFloat(result.Gamma),
		Vega:  decimal.NewFromFloat(result.Vega),
		Theta: decimal.NewFromFloat(result.Theta),
		Price: decimal.NewFromFloat(result.Price),
	}, nil
}
