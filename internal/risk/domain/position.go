// 生成摘要：
// 1. 定义资产类别封闭枚举 (现货 / 线性衍生品 / 期权)。
// 2. 定义持仓 (Position) 与行情快照 (MarketSnapshot) 值对象。
package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AssetClass 资产类别，封闭枚举
type AssetClass string

const (
	AssetClassSpot   AssetClass = "spot"
	AssetClassLinear AssetClass = "linear_derivative"
	AssetClassOption AssetClass = "option"
)

// Valid 校验资产类别合法性
func (c AssetClass) Valid() bool {
	switch c {
	case AssetClassSpot, AssetClassLinear, AssetClassOption:
		return true
	default:
		return false
	}
}

// OptionGreeks 期权持仓的计价货币口径希腊字母
type OptionGreeks struct {
	Delta decimal.Decimal
	Gamma decimal.Decimal
	Vega  decimal.Decimal
	Theta decimal.Decimal
}

// Position 单个持仓。数量带符号，正为多头负为空头。
// 期权持仓必须携带 Underlying 与 Greeks。
type Position struct {
	Symbol     string
	Class      AssetClass
	Quantity   decimal.Decimal
	Underlying string        // 期权标的交易对，仅期权需要
	Greeks     *OptionGreeks // 仅期权需要
}

// Validate 校验持仓自洽性
func (p *Position) Validate() error {
	if !p.Class.Valid() {
		return fmt.Errorf("unknown asset class %q for %s", p.Class, p.Symbol)
	}
	if p.Class == AssetClassOption {
		if p.Underlying == "" {
			return fmt.Errorf("option position %s missing underlying", p.Symbol)
		}
		if p.Greeks == nil {
			return fmt.Errorf("option position %s missing greeks", p.Symbol)
		}
	}
	return nil
}

// MarketSnapshot 符号到当前价格的瞬态映射，每轮评估重新提供
type MarketSnapshot map[string]decimal.Decimal

// Price 查询某符号的当前价格
func (s MarketSnapshot) Price(symbol string) (decimal.Decimal, bool) {
	p, ok := s[symbol]
	return p, ok
}
