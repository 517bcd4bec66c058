// 变更说明：新增 Black-Scholes 欧式期权定价与希腊字母计算。
// 假设：Vega 表示波动率变化 1% 的影响，Theta 以天为单位，与交易所报价口径一致。
package domain

import (
	"math"
)

// BlackScholesInput Black-Scholes 模型输入
type BlackScholesInput struct {
	S float64 // 标的资产价格 (计价货币)
	K float64 // 执行价格
	T float64 // 到期时间 (年)
	R float64 // 无风险利率
	V float64 // 年化波动率
}

// BlackScholesResult Black-Scholes 模型输出，全部以计价货币表示
type BlackScholesResult struct {
	Price float64
	Delta float64
	Gamma float64
	Vega  float64 // 每 1% 波动率变化
	Theta float64 // 每日时间衰减
}

// CalculateBlackScholes 计算欧式期权价格和希腊字母。
// 退化输入 (非正的 T/V/S/K) 返回零值结果，由调用方决定是否视为失败。
func CalculateBlackScholes(optionType OptionType, input BlackScholesInput) *BlackScholesResult {
	if input.T <= 0 || input.V <= 0 || input.S <= 0 || input.K <= 0 {
		return &BlackScholesResult{}
	}

	sqrtT := math.Sqrt(input.T)
	d1 := (math.Log(input.S/input.K) + (input.R+0.5*input.V*input.V)*input.T) / (input.V * sqrtT)
	d2 := d1 - input.V*sqrtT
	discount := math.Exp(-input.R * input.T)

	var price, delta, theta float64
	gamma := normPdf(d1) / (input.S * input.V * sqrtT)
	vega := input.S * sqrtT * normPdf(d1) / 100

	if optionType == OptionTypeCall {
		price = input.S*normCdf(d1) - input.K*discount*normCdf(d2)
		delta = normCdf(d1)
		theta = (-input.S*normPdf(d1)*input.V/(2*sqrtT) - input.R*input.K*discount*normCdf(d2)) / 365
	} else {
		price = input.K*discount*normCdf(-d2) - input.S*normCdf(-d1)
		delta = normCdf(d1) - 1
		theta = (-input.S*normPdf(d1)*input.V/(2*sqrtT) + input.R*input.K*discount*normCdf(-d2)) / 365
	}

	return &BlackScholesResult{
		Price: price,
		Delta: delta,
		Gamma: gamma,
		Vega:  vega,
		Theta: theta,
	}
}

// normCdf 标准正态分布累积分布函数
func normCdf(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// normPdf 标准正态分布概率密度函数
func normPdf(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}
