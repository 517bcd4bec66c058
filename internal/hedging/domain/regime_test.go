package domain_test

import (
	"testing"

	"github.com/wyfcoding/spothedge/internal/hedging/domain"
)

func TestClassifyRegime(t *testing.T) {
	tests := []struct {
		name    string
		closes  []float64
		enabled bool
		want    domain.Regime
	}{
		{"filter disabled", []float64{1, 2, 3}, false, domain.RegimeNeutral},
		{"insufficient history", []float64{100, 101}, true, domain.RegimeUndetermined},
		{"downtrend", []float64{110, 108, 104, 100}, true, domain.RegimeBearish},
		{"uptrend", []float64{100, 104, 108, 110}, true, domain.RegimeBullish},
		{"flat is bullish", []float64{100, 100, 100, 100}, true, domain.RegimeBullish},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := domain.ClassifyRegime(tt.closes, 2, 4, tt.enabled); got != tt.want {
				t.Errorf("ClassifyRegime = %v, want %v", got, tt.want)
			}
		})
	}
}

// 相同输入序列恒产生相同分类。
func TestClassifyRegimeDeterministic(t *testing.T) {
	closes := []float64{100, 98, 102, 97, 103, 96, 104, 95}
	first := domain.ClassifyRegime(closes, 3, 6, true)
	for i := 0; i < 100; i++ {
		if got := domain.ClassifyRegime(closes, 3, 6, true); got != first {
			t.Fatalf("iteration %d: got %v, want %v", i, got, first)
		}
	}
}
