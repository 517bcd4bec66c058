// 变更说明：新增对冲策略配置及其边界校验。非法配置在此拒绝，
// 决策引擎只接受已校验的配置。
package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidConfig 对冲配置违反约束
var ErrInvalidConfig = errors.New("invalid hedge config")

// HedgeConfig 对冲策略配置
type HedgeConfig struct {
	TargetHedgeRatio decimal.Decimal // [0,1]，1 为全额对冲
	DeltaThreshold   decimal.Decimal // 计价货币，> 0
	VaRThreshold     decimal.Decimal // 可选，零值表示不启用

	RegimeFilterEnabled bool
	FastWindow          int
	SlowWindow          int

	AutoExecute             bool
	LargeTradeNotionalLimit decimal.Decimal // 可选，零值表示不限制
}

// Validate 校验配置约束
func (c *HedgeConfig) Validate() error {
	if c.TargetHedgeRatio.IsNegative() || c.TargetHedgeRatio.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: target hedge ratio %s outside [0,1]", ErrInvalidConfig, c.TargetHedgeRatio)
	}
	if !c.DeltaThreshold.IsPositive() {
		return fmt.Errorf("%w: delta threshold %s must be positive", ErrInvalidConfig, c.DeltaThreshold)
	}
	if c.VaRThreshold.IsNegative() {
		return fmt.Errorf("%w: var threshold %s must not be negative", ErrInvalidConfig, c.VaRThreshold)
	}
	if c.RegimeFilterEnabled {
		if c.FastWindow <= 0 || c.SlowWindow <= 0 {
			return fmt.Errorf("%w: ma windows must be positive", ErrInvalidConfig)
		}
		if c.FastWindow >= c.SlowWindow {
			return fmt.Errorf("%w: fast window %d must be below slow window %d", ErrInvalidConfig, c.FastWindow, c.SlowWindow)
		}
	}
	if c.LargeTradeNotionalLimit.IsNegative() {
		return fmt.Errorf("%w: large trade limit %s must not be negative", ErrInvalidConfig, c.LargeTradeNotionalLimit)
	}
	return nil
}
