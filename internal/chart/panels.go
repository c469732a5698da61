package chart

import (
	"strings"

	"kview/internal/analysis/indicator"
)

// FromIndicators 按指标类型生成默认面板布局：
// 均线类叠加在 K 线主图上，震荡类各占一条副图。
// RSI 副图带 30/70 超卖超买线，MACD 副图带零轴，柱状列画成柱。
func FromIndicators(inds []indicator.Indicator) []Panel {
	main := Panel{Weight: 0.7}
	var sub []Panel
	for _, ind := range inds {
		if ind.Kind == indicator.KindMovingAverage {
			for _, out := range ind.Outputs {
				main.Metrics = append(main.Metrics, Metric{
					Column: out.Column,
					Label:  out.Label,
					Style:  StyleLine,
				})
			}
			continue
		}
		p := Panel{Weight: 0.15}
		for _, out := range ind.Outputs {
			style := StyleLine
			if strings.HasSuffix(out.Column, "Histogram") {
				style = StyleBar
			}
			p.Metrics = append(p.Metrics, Metric{
				Column: out.Column,
				Label:  out.Label,
				Style:  style,
			})
		}
		switch ind.Name {
		case "Rsi":
			p.Guides = []float64{30, 70}
		case "Macd":
			p.Guides = []float64{0}
		}
		sub = append(sub, p)
	}
	return append([]Panel{main}, sub...)
}
