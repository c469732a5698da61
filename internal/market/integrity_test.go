package market

import (
	"testing"
)

// TestAuditDailyCleanSeries 连续交易日没有空洞。
func TestAuditDailyCleanSeries(t *testing.T) {
	a := AuditDaily(seedSeries(t, 10), 0)
	if !a.Complete() {
		t.Fatalf("连续序列不应有空洞: %+v", a.Gaps)
	}
	if a.Rows != 10 || a.SpanDays != 10 {
		t.Fatalf("行数/跨度不符: rows=%d span=%d", a.Rows, a.SpanDays)
	}
	if a.FlatBars != 0 {
		t.Fatalf("不应有四价相同的行, 实际=%d", a.FlatBars)
	}
}

// TestAuditDailyFindsGap 超过阈值的日历空洞要被记下来, 周末长度的间隔不算。
func TestAuditDailyFindsGap(t *testing.T) {
	cs := seedCandles(t, 6)
	// 周五到周一差 3 天, 属于正常; 最后一根再推开 11 天就是数据洞。
	cs[5].Date = cs[4].Date.AddDate(0, 0, 11)
	s, err := NewSeries("ACME", cs)
	if err != nil {
		t.Fatalf("构造序列失败: %v", err)
	}

	a := AuditDaily(s, 0)
	if len(a.Gaps) != 1 {
		t.Fatalf("应记录 1 个空洞, 实际=%d", len(a.Gaps))
	}
	g := a.Gaps[0]
	if g.Days != 11 || !g.From.Equal(cs[4].Date) || !g.To.Equal(cs[5].Date) {
		t.Fatalf("空洞位置不符: %+v", g)
	}
	if a.Complete() {
		t.Fatalf("有空洞时 Complete 应为 false")
	}
}

// TestAuditDailyFlatBars 四价相同的行计入 FlatBars。
func TestAuditDailyFlatBars(t *testing.T) {
	cs := seedCandles(t, 4)
	cs[2].Open, cs[2].High, cs[2].Low, cs[2].Close = 50, 50, 50, 50
	s, err := NewSeries("ACME", cs)
	if err != nil {
		t.Fatalf("构造序列失败: %v", err)
	}
	if a := AuditDaily(s, 0); a.FlatBars != 1 {
		t.Fatalf("FlatBars 应为 1, 实际=%d", a.FlatBars)
	}
}

// TestAuditDailyEmpty 空序列返回零值报告。
func TestAuditDailyEmpty(t *testing.T) {
	a := AuditDaily(&Series{}, 0)
	if a.Rows != 0 || !a.Complete() {
		t.Fatalf("空序列报告异常: %+v", a)
	}
	if !a.First.IsZero() || !a.Last.IsZero() {
		t.Fatalf("空序列不应有首尾日期")
	}
}
