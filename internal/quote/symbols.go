package quote

import "strings"

// toYahoo 把常见的指数简写换算成 Yahoo 记号。
// 未识别的 symbol 原样透传。
func toYahoo(symbol string) string {
	switch symbol {
	case ".INX", "SPX":
		return "^GSPC"
	case "NDX", "RMZ", "RUT", "TNX", "VIX", "NYFANG":
		return "^" + symbol
	}
	if strings.HasPrefix(symbol, ".") {
		return "^" + strings.TrimPrefix(symbol, ".")
	}
	return symbol
}

// displayName 图表标题用的可读名称。
func displayName(symbol string) string {
	switch symbol {
	case "^GSPC":
		return "S&P 500"
	case "^DJI":
		return "Dow Jones Industrial Average"
	}
	return symbol
}
