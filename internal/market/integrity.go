package market

import "time"

// Gap 表示相邻两根日线之间异常的日历空洞。
type Gap struct {
	From time.Time
	To   time.Time
	Days int
}

// Audit 描述一段日线序列的覆盖情况。
type Audit struct {
	Rows     int
	First    time.Time
	Last     time.Time
	SpanDays int
	Gaps     []Gap
	FlatBars int
}

func (a Audit) Complete() bool { return len(a.Gaps) == 0 }

// AuditDaily 检查序列的日历覆盖。
// 周末和普通节假日本来就没有行情，只有相邻两行相差超过 maxGapDays
// 个日历日才记为空洞；maxGapDays<=0 时取 5。四价相同的行计入 FlatBars。
func AuditDaily(s *Series, maxGapDays int) Audit {
	if maxGapDays <= 0 {
		maxGapDays = 5
	}
	a := Audit{Rows: s.Len()}
	if s.Len() == 0 {
		return a
	}
	a.First = s.Candles[0].Date
	a.Last = s.Candles[s.Len()-1].Date
	a.SpanDays = int(a.Last.Sub(a.First).Hours()/24) + 1

	for i, c := range s.Candles {
		if c.Open == c.High && c.High == c.Low && c.Low == c.Close {
			a.FlatBars++
		}
		if i == 0 {
			continue
		}
		prev := s.Candles[i-1].Date
		days := int(c.Date.Sub(prev).Hours() / 24)
		if days > maxGapDays {
			a.Gaps = append(a.Gaps, Gap{From: prev, To: c.Date, Days: days})
		}
	}
	return a
}
