package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/spothedge/internal/backtest/domain"
)

func fill(symbol string, qty, price decimal.Decimal, commission decimal.Decimal) *domain.Fill {
	return &domain.Fill{
		Timestamp:  fillTime,
		Symbol:     symbol,
		Quantity:   qty,
		FillPrice:  price,
		Notional:   qty.Mul(price),
		Commission: commission,
	}
}

// 现金变动只有一条路径：每笔成交扣 名义金额+手续费。
func TestApplyFillCashIdentity(t *testing.T) {
	p := domain.NewSimulatedPortfolio(d(100000))

	fills := []*domain.Fill{
		fill("BTCUSDT", d(1), d(50000), d(50)),
		fill("BTC-PERP", d(-0.5), d(50000), d(12.5)),
		fill("BTC-PERP", d(0.2), d(48000), d(4.8)),
	}
	expected := d(100000)
	for _, f := range fills {
		p.ApplyFill(f)
		expected = expected.Sub(f.Notional).Sub(f.Commission)
	}

	if !p.Cash().Equal(expected) {
		t.Errorf("cash = %s, want %s", p.Cash(), expected)
	}
}

func TestApplyFillAveragesCostBasis(t *testing.T) {
	p := domain.NewSimulatedPortfolio(d(100000))

	p.ApplyFill(fill("BTC-PERP", d(1), d(100), decimal.Zero))
	p.ApplyFill(fill("BTC-PERP", d(1), d(110), decimal.Zero))

	if !p.Holding("BTC-PERP").Equal(d(2)) {
		t.Errorf("holding = %s, want 2", p.Holding("BTC-PERP"))
	}
	if !p.CostBasis("BTC-PERP").Equal(d(105)) {
		t.Errorf("cost basis = %s, want 105", p.CostBasis("BTC-PERP"))
	}
}

// 空头部分平仓：成本 100 的 -2 仓位以 90 买回 1 张，盈利 10。
func TestApplyFillRealizesShortPnL(t *testing.T) {
	p := domain.NewSimulatedPortfolio(d(100000))

	p.ApplyFill(fill("BTC-PERP", d(-2), d(100), decimal.Zero))
	p.ApplyFill(fill("BTC-PERP", d(1), d(90), decimal.Zero))

	if !p.RealizedPnL("BTC-PERP").Equal(d(10)) {
		t.Errorf("realized pnl = %s, want 10", p.RealizedPnL("BTC-PERP"))
	}
	if !p.Holding("BTC-PERP").Equal(d(-1)) {
		t.Errorf("holding = %s, want -1", p.Holding("BTC-PERP"))
	}
	if !p.CostBasis("BTC-PERP").Equal(d(100)) {
		t.Errorf("cost basis = %s, want unchanged 100", p.CostBasis("BTC-PERP"))
	}
}

// 穿越零点拆成先平后开：平掉旧仓实现盈亏，新仓成本重置为成交价。
func TestApplyFillCrossingZeroResetsBasis(t *testing.T) {
	p := domain.NewSimulatedPortfolio(d(100000))

	p.ApplyFill(fill("BTC-PERP", d(1), d(100), decimal.Zero))
	p.ApplyFill(fill("BTC-PERP", d(-3), d(120), decimal.Zero))

	if !p.RealizedPnL("BTC-PERP").Equal(d(20)) {
		t.Errorf("realized pnl = %s, want 20", p.RealizedPnL("BTC-PERP"))
	}
	if !p.Holding("BTC-PERP").Equal(d(-2)) {
		t.Errorf("holding = %s, want -2", p.Holding("BTC-PERP"))
	}
	if !p.CostBasis("BTC-PERP").Equal(d(120)) {
		t.Errorf("cost basis = %s, want 120", p.CostBasis("BTC-PERP"))
	}
}

func TestApplyFillPrunesDustHolding(t *testing.T) {
	p := domain.NewSimulatedPortfolio(d(100000))

	p.ApplyFill(fill("BTC-PERP", d(0.5), d(100), decimal.Zero))
	p.ApplyFill(fill("BTC-PERP", d(-0.5), d(100), decimal.Zero))

	if !p.Holding("BTC-PERP").IsZero() {
		t.Errorf("holding = %s, want pruned to zero", p.Holding("BTC-PERP"))
	}
	if !p.CostBasis("BTC-PERP").IsZero() {
		t.Errorf("cost basis = %s, want reset", p.CostBasis("BTC-PERP"))
	}
}

func TestMarkToMarket(t *testing.T) {
	p := domain.NewSimulatedPortfolio(d(100000))

	p.ApplyFill(fill("BTCUSDT", d(1), d(50000), decimal.Zero))
	p.ApplyFill(fill("BTC-PERP", d(-0.5), d(50000), decimal.Zero))

	value := p.MarkToMarket(map[string]decimal.Decimal{
		"BTCUSDT":  d(52000),
		"BTC-PERP": d(52000),
	})
	// 现金 75000 + 现货 52000 - 空头 26000
	if !value.Equal(d(101000)) {
		t.Errorf("value = %s, want 101000", value)
	}
}
