package infrastructure_test

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/wyfcoding/spothedge/internal/marketdata/infrastructure"
)

func TestMockGatewayOptionStrikesRoundedToThousand(t *testing.T) {
	gw := infrastructure.NewMockGateway(42)
	// 非整千基准价才能暴露取整行为
	gw.SetBasePrice("BTC/USDT", 51234)

	instruments, err := gw.ListOptionInstruments(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("ListOptionInstruments: %v", err)
	}
	if len(instruments) != 10 {
		t.Fatalf("len(instruments) = %d, want 10", len(instruments))
	}

	strikes := make(map[int]bool)
	for _, name := range instruments {
		parts := strings.Split(name, "-")
		if len(parts) != 4 {
			t.Fatalf("instrument %q: want 4 segments", name)
		}
		strike, err := strconv.Atoi(parts[2])
		if err != nil {
			t.Fatalf("instrument %q: strike not numeric: %v", name, err)
		}
		if strike%1000 != 0 {
			t.Errorf("instrument %q: strike %d not a multiple of 1000", name, strike)
		}
		strikes[strike] = true
	}
	// 51234 * 1.0 向下取整到 51000
	if !strikes[51000] {
		t.Errorf("strikes = %v, want at-the-money 51000 present", strikes)
	}
}

func TestMockGatewayKlineRange(t *testing.T) {
	gw := infrastructure.NewMockGateway(42)
	klines, err := gw.GetKlines(context.Background(), "mock", "BTC/USDT", "1h", 50)
	if err != nil {
		t.Fatalf("GetKlines: %v", err)
	}
	if len(klines) != 50 {
		t.Fatalf("len(klines) = %d, want 50", len(klines))
	}
	for i, k := range klines {
		if k.High.LessThan(k.Open) || k.High.LessThan(k.Close) {
			t.Errorf("kline %d: high %s below open %s / close %s", i, k.High, k.Open, k.Close)
		}
		if k.Low.GreaterThan(k.Open) || k.Low.GreaterThan(k.Close) {
			t.Errorf("kline %d: low %s above open %s / close %s", i, k.Low, k.Open, k.Close)
		}
	}
}
