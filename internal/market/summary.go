package market

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary 区间概览：首尾收盘、极值与成交总量，供日志与健康检查引用。
type Summary struct {
	First       time.Time
	Last        time.Time
	FirstClose  float64
	LastClose   float64
	Change      float64
	ChangePct   float64
	HighestHigh float64
	LowestLow   float64
	TotalVolume float64
}

// Summarize 汇总序列的区间表现。
// 累加与涨跌幅用 decimal 计算，避免长区间上的浮点漂移；空序列返回 ok=false。
func Summarize(s *Series) (Summary, bool) {
	if s.Len() == 0 {
		return Summary{}, false
	}
	first := s.Candles[0]
	last := s.Candles[s.Len()-1]

	high := decimal.NewFromFloat(first.High)
	low := decimal.NewFromFloat(first.Low)
	volume := decimal.Zero
	for _, c := range s.Candles {
		h := decimal.NewFromFloat(c.High)
		l := decimal.NewFromFloat(c.Low)
		if h.GreaterThan(high) {
			high = h
		}
		if l.LessThan(low) {
			low = l
		}
		volume = volume.Add(decimal.NewFromFloat(c.Volume))
	}

	base := decimal.NewFromFloat(first.Close)
	final := decimal.NewFromFloat(last.Close)
	change := final.Sub(base)
	pct := decimal.Zero
	if !base.IsZero() {
		pct = change.Div(base).Mul(decimal.NewFromInt(100))
	}

	return Summary{
		First:       first.Date,
		Last:        last.Date,
		FirstClose:  first.Close,
		LastClose:   last.Close,
		Change:      change.Round(4).InexactFloat64(),
		ChangePct:   pct.Round(2).InexactFloat64(),
		HighestHigh: high.InexactFloat64(),
		LowestLow:   low.InexactFloat64(),
		TotalVolume: volume.InexactFloat64(),
	}, true
}
