package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// dustHolding 低于该绝对值的持仓视为已平仓并从账本中剔除。
var dustHolding = decimal.New(1, -9)

// ValuePoint 组合在某一时刻按市价计算的总价值。
type ValuePoint struct {
	Timestamp time.Time
	Value     decimal.Decimal
}

// SimulatedPortfolio 回测账本。现金变动只有一条路径:
// 每笔成交扣减 名义金额+手续费, 其余字段均为派生统计。
type SimulatedPortfolio struct {
	initialCapital decimal.Decimal
	cash           decimal.Decimal
	holdings       map[string]decimal.Decimal
	costBasis      map[string]decimal.Decimal
	realizedPnL    map[string]decimal.Decimal

	totalCommission decimal.Decimal
	totalSlippage   decimal.Decimal

	valueHistory []ValuePoint
	fills        []*Fill
}

func NewSimulatedPortfolio(initialCapital decimal.Decimal) *SimulatedPortfolio {
	return &SimulatedPortfolio{
		initialCapital: initialCapital,
		cash:           initialCapital,
		holdings:       make(map[string]decimal.Decimal),
		costBasis:      make(map[string]decimal.Decimal),
		realizedPnL:    make(map[string]decimal.Decimal),
	}
}

// ApplyFill 将成交记入账本: 扣现金、更新持仓、滚动成本基准与已实现盈亏。
// 穿越零点的成交拆成"先平后开"两段处理, 新仓成本基准重置为本次成交价。
func (p *SimulatedPortfolio) ApplyFill(fill *Fill) {
	p.cash = p.cash.Sub(fill.Notional).Sub(fill.Commission)
	p.totalCommission = p.totalCommission.Add(fill.Commission)
	p.totalSlippage = p.totalSlippage.Add(fill.SlippageCost)
	p.fills = append(p.fills, fill)

	existing := p.holdings[fill.Symbol]
	qty := fill.Quantity

	switch {
	case existing.IsZero() || existing.Sign() == qty.Sign():
		// 开仓或加仓: 成本基准按数量加权平均。
		totalAbs := existing.Abs().Add(qty.Abs())
		if !totalAbs.IsZero() {
			weighted := existing.Abs().Mul(p.costBasis[fill.Symbol]).Add(qty.Abs().Mul(fill.FillPrice))
			p.costBasis[fill.Symbol] = weighted.Div(totalAbs)
		}
	default:
		closed := decimal.Min(qty.Abs(), existing.Abs())
		direction := decimal.NewFromInt(int64(existing.Sign()))
		pnl := fill.FillPrice.Sub(p.costBasis[fill.Symbol]).Mul(direction).Mul(closed)
		p.realizedPnL[fill.Symbol] = p.realizedPnL[fill.Symbol].Add(pnl)

		if qty.Abs().GreaterThan(existing.Abs()) {
			// 反手: 剩余数量以成交价开新仓。
			p.costBasis[fill.Symbol] = fill.FillPrice
		}
	}

	remaining := existing.Add(qty)
	if remaining.Abs().LessThan(dustHolding) {
		delete(p.holdings, fill.Symbol)
		delete(p.costBasis, fill.Symbol)
		return
	}
	p.holdings[fill.Symbol] = remaining
}

// MarkToMarket 现金加各持仓按给定价格的市值。
func (p *SimulatedPortfolio) MarkToMarket(prices map[string]decimal.Decimal) decimal.Decimal {
	total := p.cash
	for symbol, qty := range p.holdings {
		total = total.Add(qty.Mul(prices[symbol]))
	}
	return total
}

// LogValue 记录一个权益曲线采样点。
func (p *SimulatedPortfolio) LogValue(ts time.Time, prices map[string]decimal.Decimal) {
	p.valueHistory = append(p.valueHistory, ValuePoint{Timestamp: ts, Value: p.MarkToMarket(prices)})
}

func (p *SimulatedPortfolio) Holding(symbol string) decimal.Decimal { return p.holdings[symbol] }

func (p *SimulatedPortfolio) Cash() decimal.Decimal { return p.cash }

func (p *SimulatedPortfolio) InitialCapital() decimal.Decimal { return p.initialCapital }

func (p *SimulatedPortfolio) CostBasis(symbol string) decimal.Decimal { return p.costBasis[symbol] }

func (p *SimulatedPortfolio) RealizedPnL(symbol string) decimal.Decimal {
	return p.realizedPnL[symbol]
}

func (p *SimulatedPortfolio) TotalCommission() decimal.Decimal { return p.totalCommission }

func (p *SimulatedPortfolio) TotalSlippage() decimal.Decimal { return p.totalSlippage }

func (p *SimulatedPortfolio) ValueHistory() []ValuePoint { return p.valueHistory }

func (p *SimulatedPortfolio) Fills() []*Fill { return p.fills }
