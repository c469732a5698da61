package chart

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"kview/internal/logger"
	"kview/internal/market"
)

// MetricStyle 面板内单条序列的画法。
type MetricStyle string

const (
	StyleLine MetricStyle = "line"
	StyleBar  MetricStyle = "bar"
)

// Metric 面板里的一条序列：列名、图例文字与画法。
type Metric struct {
	Column string
	Label  string
	Style  MetricStyle
}

// Panel 一个面板：要画的序列、相对高度权重与水平参考线。
// 第一个面板固定是 K 线主图，其 Metrics 作为均线叠加；
// 之后每个面板各占一条副图。权重无须归一，内部按总和归一化。
type Panel struct {
	Metrics []Metric
	Weight  float64
	Guides  []float64
}

// Config 图表尺寸与裁剪参数。
type Config struct {
	MaxBars int
	Width   string
	Height  string
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.MaxBars <= 0 {
		out.MaxBars = 120
	}
	if out.Width == "" {
		out.Width = "1280px"
	}
	if out.Height == "" {
		out.Height = "760px"
	}
	return out
}

// Chart 构建完成的页面。同一输入两次 Build 产出字节级一致的 HTML。
type Chart struct {
	Title  string
	Panels int
	html   []byte
}

// HTML 返回完整页面内容。
func (c *Chart) HTML() []byte { return c.html }

// Render 把页面写入 w。
func (c *Chart) Render(w io.Writer) error {
	_, err := w.Write(c.html)
	return err
}

// 面板上下留白与面板间距，页面高度的百分比。
const (
	layoutTopPct    = 7.0
	layoutBottomPct = 11.0
	layoutGapPct    = 2.5
)

// Build 把增强后的序列按面板定义组装成单画布多 grid 的交互图。
// 所有面板共享日期轴：缩放、平移通过统一的 dataZoom 联动。
func Build(series *market.Series, panels []Panel, cfg Config) (*Chart, error) {
	if series.Len() == 0 {
		return nil, fmt.Errorf("build chart: %w", market.ErrEmptySeries)
	}
	if len(panels) == 0 {
		panels = []Panel{{Weight: 1}}
	}
	for i, p := range panels {
		if i > 0 && len(p.Metrics) == 0 {
			return nil, fmt.Errorf("panel %d 没有可画的列", i)
		}
		for _, m := range p.Metrics {
			if !series.HasColumn(m.Column) {
				return nil, fmt.Errorf("panel %d column %q: %w", i, m.Column, market.ErrUnknownColumn)
			}
		}
	}
	final := cfg.withDefaults()

	view := series.Tail(final.MaxBars)
	dates := make([]string, view.Len())
	klineData := make([]opts.KlineData, view.Len())
	for i, c := range view.Candles {
		dates[i] = c.Date.Format("2006-01-02")
		klineData[i] = opts.KlineData{Value: [4]float64{c.Open, c.Close, c.Low, c.High}}
	}

	grids := layoutGrids(panels)
	allAxes := make([]int, len(panels))
	for i := range allAxes {
		allAxes[i] = i
	}

	kline := charts.NewKLine()
	kline.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: series.Display,
			Width:     final.Width,
			Height:    final.Height,
			ChartID:   "kview",
		}),
		charts.WithTitleOpts(opts.Title{Title: series.Display, Left: "1%"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "0%", Left: "center"}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:        opts.Bool(true),
			Trigger:     "axis",
			AxisPointer: &opts.AxisPointer{Type: "cross"},
		}),
		charts.WithAxisPointerOpts(&opts.AxisPointer{
			Link: []opts.AxisPointerLink{{XAxisIndex: allAxes}},
		}),
		charts.WithXAxisOpts(xAxisOpts(0, len(panels), dates)),
		charts.WithYAxisOpts(opts.YAxis{
			Scale:     opts.Bool(true),
			SplitLine: &opts.SplitLine{Show: opts.Bool(true)},
		}),
		charts.WithDataZoomOpts(
			opts.DataZoom{Type: "inside", Start: 0, End: 100, XAxisIndex: allAxes},
			opts.DataZoom{Type: "slider", Start: 0, End: 100, XAxisIndex: allAxes},
		),
		charts.WithGridOpts(grids...),
	)

	for i := 1; i < len(panels); i++ {
		kline.ExtendXAxis(xAxisOpts(i, len(panels), dates))
		kline.ExtendYAxis(opts.YAxis{
			GridIndex:   i,
			Scale:       opts.Bool(true),
			SplitNumber: 2,
			SplitLine:   &opts.SplitLine{Show: opts.Bool(false)},
		})
	}

	kline.SetXAxis(dates).AddSeries(series.Display, klineData,
		charts.WithItemStyleOpts(opts.ItemStyle{
			Color:        "#ec0000",
			Color0:       "#00da3c",
			BorderColor:  "#8A0000",
			BorderColor0: "#008F28",
		}),
	)

	for idx, p := range panels {
		// 参考线只挂在面板的第一条线型序列上，画一次即可。
		guides := p.Guides
		for _, m := range p.Metrics {
			vs, err := view.Column(m.Column)
			if err != nil {
				return nil, err
			}
			switch m.Style {
			case StyleBar:
				kline.Overlap(barSeries(dates, m, vs, idx))
			default:
				kline.Overlap(lineSeries(dates, m, vs, idx, guides))
				guides = nil
			}
		}
	}

	var buf bytes.Buffer
	if err := kline.Render(&buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	logger.Debugf("[chart] %s: %d 面板 %d 根 bar, html %d bytes",
		series.Display, len(panels), view.Len(), buf.Len())
	return &Chart{Title: series.Display, Panels: len(panels), html: buf.Bytes()}, nil
}

// lineSeries 构造折线序列；guides 只在该面板第一条线上生效一次。
func lineSeries(dates []string, m Metric, vs []float64, gridIndex int, guides []float64) *charts.Line {
	data := make([]opts.LineData, len(vs))
	for i, v := range vs {
		data[i] = opts.LineData{Value: floatOrGap(v)}
	}
	line := charts.NewLine()
	seriesOpts := []charts.SeriesOpts{
		charts.WithLineChartOpts(opts.LineChart{
			XAxisIndex: gridIndex,
			YAxisIndex: gridIndex,
			ShowSymbol: opts.Bool(false),
		}),
		charts.WithLineStyleOpts(opts.LineStyle{Width: 1}),
	}
	if len(guides) > 0 {
		marks := make([]opts.MarkLineNameYAxisItem, len(guides))
		for i, g := range guides {
			marks[i] = opts.MarkLineNameYAxisItem{YAxis: g}
		}
		seriesOpts = append(seriesOpts,
			charts.WithMarkLineNameYAxisItemOpts(marks...),
			charts.WithMarkLineStyleOpts(opts.MarkLineStyle{
				Symbol: []string{"none", "none"},
				Label:  &opts.Label{Show: opts.Bool(false)},
				LineStyle: &opts.LineStyle{
					Color:   "#999",
					Width:   1,
					Type:    "dashed",
					Opacity: opts.Float(0.6),
				},
			}),
		)
	}
	line.SetXAxis(dates).AddSeries(m.Label, data, seriesOpts...)
	return line
}

func barSeries(dates []string, m Metric, vs []float64, gridIndex int) *charts.Bar {
	data := make([]opts.BarData, len(vs))
	for i, v := range vs {
		data[i] = opts.BarData{Value: floatOrGap(v)}
	}
	bar := charts.NewBar()
	bar.SetXAxis(dates).AddSeries(m.Label, data,
		charts.WithBarChartOpts(opts.BarChart{
			XAxisIndex: gridIndex,
			YAxisIndex: gridIndex,
		}),
	)
	return bar
}

// floatOrGap NaN 转为 ECharts 的空值记号，缺口就是缺口，不画 0。
func floatOrGap(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return v
}

func xAxisOpts(gridIndex, total int, dates []string) opts.XAxis {
	ax := opts.XAxis{
		Type:      "category",
		GridIndex: gridIndex,
		SplitLine: &opts.SplitLine{Show: opts.Bool(false)},
	}
	if gridIndex > 0 {
		ax.Data = dates
	}
	// 只有最底面板显示日期刻度，上方面板共享但不重复标注。
	if gridIndex != total-1 {
		ax.AxisLabel = &opts.AxisLabel{Show: opts.Bool(false)}
	}
	return ax
}

// layoutGrids 把权重归一化成各面板的 top/height 百分比。
func layoutGrids(panels []Panel) []opts.Grid {
	total := 0.0
	for _, p := range panels {
		w := p.Weight
		if w <= 0 {
			w = 1
		}
		total += w
	}
	gaps := layoutGapPct * float64(len(panels)-1)
	avail := 100 - layoutTopPct - layoutBottomPct - gaps

	grids := make([]opts.Grid, 0, len(panels))
	top := layoutTopPct
	for _, p := range panels {
		w := p.Weight
		if w <= 0 {
			w = 1
		}
		h := w / total * avail
		grids = append(grids, opts.Grid{
			Left:   "6%",
			Right:  "3%",
			Top:    fmt.Sprintf("%.2f%%", top),
			Height: fmt.Sprintf("%.2f%%", h),
		})
		top += h + layoutGapPct
	}
	return grids
}
