package indicator

import (
	"fmt"
	"math"
	"strings"

	"github.com/markcheno/go-talib"

	"kview/internal/market"
	"kview/internal/pkg/prices"
)

// Kind 指标类别。
type Kind string

const (
	KindMovingAverage Kind = "moving-average"
	KindOscillator    Kind = "oscillator"
)

// Output 指标产出的一列及其图例文字。
type Output struct {
	Column string
	Label  string
}

// Indicator 一次指标计算：读取基础价格列，向序列追加一到多列。
// MinRows 是产出至少一个有效值所需的最少行数；前 lookback 行没有回看
// 数据，结果列在这些位置写 NaN 而不是 0。
type Indicator struct {
	Name    string
	Kind    Kind
	Source  string
	MinRows int
	Outputs []Output

	lookback int
	compute  func(s *market.Series) ([]market.Column, error)
}

// SMA 简单移动平均。
func SMA(source string, window int) Indicator {
	return singleColumn(maName("sma", window), fmt.Sprintf("SMA(%d)", window),
		KindMovingAverage, source, window, window-1,
		func(vs []float64) []float64 { return talib.Sma(vs, window) })
}

// EMA 指数移动平均。
func EMA(source string, window int) Indicator {
	return singleColumn(maName("ema", window), fmt.Sprintf("EMA(%d)", window),
		KindMovingAverage, source, window, window-1,
		func(vs []float64) []float64 { return talib.Ema(vs, window) })
}

// WMA 线性加权移动平均。
func WMA(source string, window int) Indicator {
	return singleColumn(maName("wma", window), fmt.Sprintf("WMA(%d)", window),
		KindMovingAverage, source, window, window-1,
		func(vs []float64) []float64 { return talib.Wma(vs, window) })
}

// RSI 相对强弱指数。前 window 行缺口：需要 window 个涨跌差分。
func RSI(source string, window int) Indicator {
	return singleColumn("Rsi", fmt.Sprintf("RSI(%d)", window),
		KindOscillator, source, window+1, window,
		func(vs []float64) []float64 { return talib.Rsi(vs, window) })
}

// MACD 追加三列：Macd / MacdSignal / MacdHistogram。
// 三列共用 slow+signal-2 的前缀缺口，与 TA-Lib 对齐。
func MACD(source string, fast, slow, signal int) Indicator {
	lookback := slow + signal - 2
	ind := Indicator{
		Name:    "Macd",
		Kind:    KindOscillator,
		Source:  source,
		MinRows: lookback + 1,
		Outputs: []Output{
			{Column: "Macd", Label: fmt.Sprintf("MACD(%d, %d)", fast, slow)},
			{Column: "MacdSignal", Label: fmt.Sprintf("MACD Signal(%d)", signal)},
			{Column: "MacdHistogram", Label: "MACD Histogram"},
		},
		lookback: lookback,
	}
	ind.compute = func(s *market.Series) ([]market.Column, error) {
		vs, err := s.Column(source)
		if err != nil {
			return nil, err
		}
		macd, sig, hist := talib.Macd(vs, fast, slow, signal)
		return []market.Column{
			{Name: "Macd", Values: macd},
			{Name: "MacdSignal", Values: sig},
			{Name: "MacdHistogram", Values: hist},
		}, nil
	}
	return ind
}

// UltOsc 终极振荡指标，固定读取 High/Low/Close 三列。
func UltOsc(p1, p2, p3 int) Indicator {
	lookback := maxInt(p1, p2, p3)
	ind := Indicator{
		Name:     "Uo",
		Kind:     KindOscillator,
		MinRows:  lookback + 1,
		Outputs:  []Output{{Column: "Uo", Label: fmt.Sprintf("UO(%d, %d, %d)", p1, p2, p3)}},
		lookback: lookback,
	}
	ind.compute = func(s *market.Series) ([]market.Column, error) {
		highs, err := s.Column(market.ColHigh)
		if err != nil {
			return nil, err
		}
		lows, err := s.Column(market.ColLow)
		if err != nil {
			return nil, err
		}
		closes, err := s.Column(market.ColClose)
		if err != nil {
			return nil, err
		}
		return []market.Column{
			{Name: "Uo", Values: talib.UltOsc(highs, lows, closes, p1, p2, p3)},
		}, nil
	}
	return ind
}

// FromSpec 按配置名构造指标；window 对 macd/ultosc 无效，用各自常规参数。
func FromSpec(name string, window int) (Indicator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sma":
		return SMA(market.ColClose, window), nil
	case "ema":
		return EMA(market.ColClose, window), nil
	case "wma":
		return WMA(market.ColClose, window), nil
	case "rsi":
		return RSI(market.ColClose, window), nil
	case "macd":
		return MACD(market.ColClose, 12, 26, 9), nil
	case "ultosc":
		return UltOsc(7, 14, 28), nil
	}
	return Indicator{}, fmt.Errorf("unknown indicator %q", name)
}

// Apply 计算指标并返回追加了新列的序列副本，原序列不变。
func Apply(s *market.Series, ind Indicator) (*market.Series, error) {
	if s.Len() == 0 {
		return nil, fmt.Errorf("apply %s: %w", ind.Name, market.ErrEmptySeries)
	}
	if ind.compute == nil {
		return nil, fmt.Errorf("indicator %s 未初始化", ind.Name)
	}
	if ind.Source != "" && !s.HasColumn(ind.Source) {
		return nil, fmt.Errorf("apply %s: source %q: %w", ind.Name, ind.Source, market.ErrUnknownColumn)
	}
	if ind.MinRows <= 0 || ind.MinRows > s.Len() {
		return nil, fmt.Errorf("apply %s: need %d rows, have %d: %w",
			ind.Name, ind.MinRows, s.Len(), market.ErrInsufficientData)
	}
	cols, err := ind.compute(s)
	if err != nil {
		return nil, fmt.Errorf("apply %s: %w", ind.Name, err)
	}
	out := s
	for _, col := range cols {
		masked := maskLookback(col.Values, ind.lookback)
		out, err = out.WithColumn(col.Name, masked)
		if err != nil {
			return nil, fmt.Errorf("apply %s: %w", ind.Name, err)
		}
	}
	return out, nil
}

// ApplyAll 依次应用多个指标。
func ApplyAll(s *market.Series, inds []Indicator) (*market.Series, error) {
	out := s
	for _, ind := range inds {
		next, err := Apply(out, ind)
		if err != nil {
			return nil, err
		}
		out = next
	}
	return out, nil
}

func singleColumn(name, label string, kind Kind, source string, minRows, lookback int, fn func([]float64) []float64) Indicator {
	ind := Indicator{
		Name:     name,
		Kind:     kind,
		Source:   source,
		MinRows:  minRows,
		Outputs:  []Output{{Column: name, Label: label}},
		lookback: lookback,
	}
	ind.compute = func(s *market.Series) ([]market.Column, error) {
		vs, err := s.Column(source)
		if err != nil {
			return nil, err
		}
		return []market.Column{{Name: name, Values: fn(vs)}}, nil
	}
	return ind
}

// maskLookback 把前 n 个位置改写成 NaN（talib 在回看期内回填 0），
// 其余值保留 4 位小数。
func maskLookback(vs []float64, n int) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		if i < n || math.IsInf(v, 0) {
			out[i] = math.NaN()
			continue
		}
		if math.IsNaN(v) {
			out[i] = v
			continue
		}
		out[i] = prices.Round4(v)
	}
	return out
}

// maName 移动平均列名，窗口补齐两位：Ema34 / Sma200 / Wma09。
func maName(kind string, window int) string {
	return strings.ToUpper(kind[:1]) + strings.ToLower(kind[1:]) + fmt.Sprintf("%02d", window)
}

func maxInt(values ...int) int {
	if len(values) == 0 {
		return 0
	}
	maxVal := values[0]
	for _, v := range values[1:] {
		if v > maxVal {
			maxVal = v
		}
	}
	return maxVal
}
