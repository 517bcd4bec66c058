package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/spothedge/internal/backtest/domain"
)

func d(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

var fillTime = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func TestExecuteOrderBuySlippageAdverse(t *testing.T) {
	handler := domain.NewSimulatedExecutionHandler(d(0.01), d(0.001))

	fill, err := handler.ExecuteOrder(fillTime, "BTC-PERP", d(2), d(100))
	if err != nil {
		t.Fatalf("ExecuteOrder: %v", err)
	}

	if !fill.FillPrice.Equal(d(101)) {
		t.Errorf("fill price = %s, want 101", fill.FillPrice)
	}
	if !fill.Notional.Equal(d(202)) {
		t.Errorf("notional = %s, want 202", fill.Notional)
	}
	if !fill.Commission.Equal(d(0.202)) {
		t.Errorf("commission = %s, want 0.202", fill.Commission)
	}
	if !fill.SlippageCost.Equal(d(2)) {
		t.Errorf("slippage cost = %s, want 2", fill.SlippageCost)
	}
}

func TestExecuteOrderSellSlippageAdverse(t *testing.T) {
	handler := domain.NewSimulatedExecutionHandler(d(0.01), d(0.001))

	fill, err := handler.ExecuteOrder(fillTime, "BTC-PERP", d(-2), d(100))
	if err != nil {
		t.Fatalf("ExecuteOrder: %v", err)
	}

	if !fill.FillPrice.Equal(d(99)) {
		t.Errorf("fill price = %s, want 99", fill.FillPrice)
	}
	if !fill.Notional.Equal(d(-198)) {
		t.Errorf("notional = %s, want -198", fill.Notional)
	}
	if !fill.Commission.Equal(d(0.198)) {
		t.Errorf("commission = %s, want 0.198", fill.Commission)
	}
	if !fill.SlippageCost.Equal(d(2)) {
		t.Errorf("slippage cost = %s, want 2", fill.SlippageCost)
	}
}

func TestExecuteOrderZeroQuantityRejected(t *testing.T) {
	handler := domain.NewSimulatedExecutionHandler(d(0.01), d(0.001))

	if _, err := handler.ExecuteOrder(fillTime, "BTC-PERP", decimal.Zero, d(100)); !errors.Is(err, domain.ErrZeroQuantity) {
		t.Errorf("err = %v, want ErrZeroQuantity", err)
	}
}
