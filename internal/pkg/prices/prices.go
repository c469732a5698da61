package prices

import "math"

// Round 四舍五入到指定小数位。
func Round(v float64, decimals int) float64 {
	if decimals <= 0 {
		return math.Round(v)
	}
	factor := math.Pow10(decimals)
	return math.Round(v*factor) / factor
}

// Round4 价格列与派生列统一保留 4 位小数。
func Round4(v float64) float64 {
	return Round(v, 4)
}
