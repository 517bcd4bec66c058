// 生成摘要：
// 1. 动态对冲决策引擎：状态分类 → 目标确定 → 偏差计算 → 交易量
//    确定 → 处置方式，每轮重入，无跨轮自动机状态。
// 2. 尘埃交易抑制与大额交易安全阀。
// 变更说明：实盘与回测共用同一引擎，保证行为一致。
package domain

import (
	"github.com/shopspring/decimal"
)

// dustQuantity 低于此数量的交易视为尘埃，直接抑制
var dustQuantity = decimal.NewFromFloat(0.001)

// ReasonDustSuppressed 尘埃抑制的固定原因，应用层据此落 SKIPPED 记录
const ReasonDustSuppressed = "trade below dust threshold"

// DecisionAction 决策处置方式
type DecisionAction string

const (
	ActionNone      DecisionAction = "NO_ACTION"
	ActionRecommend DecisionAction = "RECOMMEND"
	ActionExecute   DecisionAction = "EXECUTE"
)

// CycleInput 单轮评估输入
type CycleInput struct {
	SpotQuantity      decimal.Decimal
	SpotPrice         decimal.Decimal
	DerivativeHolding decimal.Decimal // 当前衍生品持仓数量
	DerivativePrice   decimal.Decimal
	SpotCloses        []float64 // 标的近期收盘，用于状态分类
}

// Decision 单轮评估输出
type Decision struct {
	Action           DecisionAction
	Regime           Regime
	TradeQuantity    decimal.Decimal // 带符号，负为做空衍生品
	TradeNotional    decimal.Decimal
	TargetHedgeValue decimal.Decimal
	CurrentHedge     decimal.Decimal
	Discrepancy      decimal.Decimal
	Reason           string
}

// DecisionEngine 动态对冲决策引擎
type DecisionEngine struct {
	config *HedgeConfig
}

// NewDecisionEngine 要求配置已通过 Validate
func NewDecisionEngine(config *HedgeConfig) (*DecisionEngine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &DecisionEngine{config: config}, nil
}

// EvaluateCycle 执行一轮对冲评估。
// 步骤顺序固定：状态 → 目标 → 偏差 → 交易量 → 处置，不可重排。
func (e *DecisionEngine) EvaluateCycle(input CycleInput) *Decision {
	regime := ClassifyRegime(input.SpotCloses, e.config.FastWindow, e.config.SlowWindow, e.config.RegimeFilterEnabled)
	if regime == RegimeUndetermined {
		// 慢线历史不足，本轮完全跳过
		return &Decision{Action: ActionNone, Regime: regime, Reason: "insufficient history for regime"}
	}

	// 空头市或过滤器关闭时应用配置比例，多头市目标为零对冲
	effectiveRatio := e.config.TargetHedgeRatio
	if regime == RegimeBullish {
		effectiveRatio = decimal.Zero
	}

	spotValue := input.SpotQuantity.Mul(input.SpotPrice)
	targetHedgeValue := spotValue.Mul(effectiveRatio).Neg()
	currentHedge := input.DerivativeHolding.Mul(input.DerivativePrice)
	discrepancy := currentHedge.Sub(targetHedgeValue)

	tradeNeeded := discrepancy.Abs().GreaterThan(e.config.DeltaThreshold)
	reason := "discrepancy exceeds threshold"

	// 多头市下存量对冲必须清仓，不受阈值约束
	if regime == RegimeBullish {
		if input.DerivativeHolding.Abs().GreaterThan(dustQuantity) {
			discrepancy = currentHedge
			tradeNeeded = true
			reason = "bullish regime, closing existing hedge"
		} else {
			tradeNeeded = false
		}
	}

	decision := &Decision{
		Regime:           regime,
		TargetHedgeValue: targetHedgeValue,
		CurrentHedge:     currentHedge,
		Discrepancy:      discrepancy,
	}

	if !tradeNeeded {
		decision.Action = ActionNone
		decision.Reason = "within tolerance"
		return decision
	}

	if input.DerivativePrice.IsZero() {
		decision.Action = ActionNone
		decision.Reason = "derivative price unavailable"
		return decision
	}

	tradeNotional := discrepancy.Neg()
	tradeQuantity := tradeNotional.Div(input.DerivativePrice)

	if tradeQuantity.Abs().LessThan(dustQuantity) {
		decision.Action = ActionNone
		decision.Reason = ReasonDustSuppressed
		return decision
	}

	decision.TradeQuantity = tradeQuantity
	decision.TradeNotional = tradeNotional
	decision.Reason = reason

	// 处置：自动执行受大额名义金额安全阀约束
	switch {
	case !e.config.AutoExecute:
		decision.Action = ActionRecommend
	case e.config.LargeTradeNotionalLimit.IsPositive() &&
		tradeNotional.Abs().GreaterThan(e.config.LargeTradeNotionalLimit):
		decision.Action = ActionRecommend
		decision.Reason = "notional exceeds large trade limit, manual confirmation required"
	default:
		decision.Action = ActionExecute
	}

	return decision
}
