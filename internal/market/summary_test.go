package market

import (
	"testing"
)

// TestSummarize 区间首尾、极值与总量按收盘口径汇总。
func TestSummarize(t *testing.T) {
	s := seedSeries(t, 5)
	sum, ok := Summarize(s)
	if !ok {
		t.Fatalf("非空序列应返回 ok")
	}
	if sum.First.Format("2006-01-02") != "2020-01-02" || sum.Last.Format("2006-01-02") != "2020-01-06" {
		t.Fatalf("首尾日期不符: %v..%v", sum.First, sum.Last)
	}
	if sum.FirstClose != 101 || sum.LastClose != 105 {
		t.Fatalf("首尾收盘不符: %v..%v", sum.FirstClose, sum.LastClose)
	}
	if sum.Change != 4 {
		t.Fatalf("涨跌额应为 4, 实际=%v", sum.Change)
	}
	if sum.ChangePct != 3.96 {
		t.Fatalf("涨跌幅应为 3.96, 实际=%v", sum.ChangePct)
	}
	if sum.HighestHigh != 106 || sum.LowestLow != 99 {
		t.Fatalf("极值不符: high=%v low=%v", sum.HighestHigh, sum.LowestLow)
	}
	if sum.TotalVolume != 5010 {
		t.Fatalf("总成交量应为 5010, 实际=%v", sum.TotalVolume)
	}
}

// TestSummarizeEmpty 空序列返回 ok=false。
func TestSummarizeEmpty(t *testing.T) {
	if _, ok := Summarize(&Series{}); ok {
		t.Fatalf("空序列不应返回 ok")
	}
}
