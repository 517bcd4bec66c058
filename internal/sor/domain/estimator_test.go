package domain_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/spothedge/internal/sor/domain"
)

func d(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func level(price, qty float64) domain.PriceLevel {
	return domain.PriceLevel{Price: d(price), Quantity: d(qty)}
}

func sampleDepth() *domain.MarketDepth {
	return &domain.MarketDepth{
		Venue:  "bybit",
		Symbol: "BTC/USDT:USDT",
		Bids:   []domain.PriceLevel{level(99, 1), level(98, 2)},
		Asks:   []domain.PriceLevel{level(100, 1), level(101, 2)},
	}
}

func TestEstimateCostBuy(t *testing.T) {
	// 买 2：1@100 + 1@101，均价 100.5
	plan, err := domain.EstimateCost(sampleDepth(), d(2), d(0.0006))
	if err != nil {
		t.Fatalf("EstimateCost: %v", err)
	}

	if !plan.AvgFillPrice.Equal(d(100.5)) {
		t.Errorf("avg fill = %s, want 100.5", plan.AvgFillPrice)
	}
	if !plan.TotalNotional.Equal(d(201)) {
		t.Errorf("notional = %s, want 201", plan.TotalNotional)
	}
	// 中间价 99.5，滑点 (100.5-99.5)*2 = 2
	if !plan.SlippageCost.Equal(d(2)) {
		t.Errorf("slippage = %s, want 2", plan.SlippageCost)
	}
	if !plan.FeeCost.Equal(d(201).Mul(d(0.0006))) {
		t.Errorf("fee = %s, want 201*0.0006", plan.FeeCost)
	}
	if plan.LiquidityWarning {
		t.Error("unexpected liquidity warning")
	}
}

func TestEstimateCostSell(t *testing.T) {
	// 卖 2：1@99 + 1@98，均价 98.5，滑点 (99.5-98.5)*2 = 2
	plan, err := domain.EstimateCost(sampleDepth(), d(-2), decimal.Zero)
	if err != nil {
		t.Fatalf("EstimateCost: %v", err)
	}

	if !plan.AvgFillPrice.Equal(d(98.5)) {
		t.Errorf("avg fill = %s, want 98.5", plan.AvgFillPrice)
	}
	if !plan.SlippageCost.Equal(d(2)) {
		t.Errorf("slippage = %s, want 2", plan.SlippageCost)
	}
}

func TestEstimateCostInsufficientDepth(t *testing.T) {
	// 买 5，簿内仅 3：剩余 2 按最后档位 101 外推
	plan, err := domain.EstimateCost(sampleDepth(), d(5), decimal.Zero)
	if err != nil {
		t.Fatalf("EstimateCost: %v", err)
	}

	if !plan.LiquidityWarning {
		t.Error("expected liquidity warning")
	}
	// 1*100 + 2*101 + 2*101 = 504
	if !plan.TotalNotional.Equal(d(504)) {
		t.Errorf("notional = %s, want 504", plan.TotalNotional)
	}
}

func TestEstimateCostEmptyBook(t *testing.T) {
	depth := &domain.MarketDepth{Venue: "bybit", Symbol: "BTC/USDT:USDT"}
	if _, err := domain.EstimateCost(depth, d(1), decimal.Zero); !errors.Is(err, domain.ErrNoLiquidity) {
		t.Errorf("error = %v, want ErrNoLiquidity", err)
	}
}
