// 变更说明：新增市场状态分类 (快慢均线交叉)。快线低于慢线为空头市，
// 历史不足以计算慢线时为不可判定，本轮跳过。
package domain

// Regime 市场状态
type Regime string

const (
	RegimeBullish      Regime = "BULLISH"
	RegimeBearish      Regime = "BEARISH"
	RegimeNeutral      Regime = "NEUTRAL"      // 过滤器关闭
	RegimeUndetermined Regime = "UNDETERMINED" // 历史不足
)

// ClassifyRegime 基于收盘序列分类市场状态。
// 相同输入序列恒返回相同结果。
func ClassifyRegime(closes []float64, fastWindow, slowWindow int, filterEnabled bool) Regime {
	if !filterEnabled {
		return RegimeNeutral
	}
	if len(closes) < slowWindow {
		return RegimeUndetermined
	}

	fast := simpleMovingAverage(closes, fastWindow)
	slow := simpleMovingAverage(closes, slowWindow)
	if fast < slow {
		return RegimeBearish
	}
	return RegimeBullish
}

// simpleMovingAverage 最近 window 个收盘的算术均值
func simpleMovingAverage(closes []float64, window int) float64 {
	if window <= 0 || len(closes) < window {
		return 0
	}
	sum := 0.0
	for _, c := range closes[len(closes)-window:] {
		sum += c
	}
	return sum / float64(window)
}
