package quote

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"kview/internal/market"
)

// fakeSource 以内存数据伪造 market.Source，记录收到的参数。
type fakeSource struct {
	name      string
	candles   []market.Candle
	failTimes int
	calls     int
	gotSymbol string
	gotStart  time.Time
	gotEnd    time.Time
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) FetchDaily(_ context.Context, symbol string, start, end time.Time) ([]market.Candle, error) {
	f.calls++
	f.gotSymbol, f.gotStart, f.gotEnd = symbol, start, end
	if f.calls <= f.failTimes {
		return nil, fmt.Errorf("fake %s: %w: boom", f.name, market.ErrDataUnavailable)
	}
	return f.candles, nil
}

// seedCandles 生成 n 根合法日线。
func seedCandles(t *testing.T, start time.Time, n int) []market.Candle {
	t.Helper()
	out := make([]market.Candle, 0, n)
	for i := 0; i < n; i++ {
		base := 100 + float64(i)
		out = append(out, market.Candle{
			Date:   market.Day(start.AddDate(0, 0, i)),
			Open:   base,
			High:   base + 2,
			Low:    base - 1,
			Close:  base + 1,
			Volume: 1000,
		})
	}
	return out
}

func newTestService(t *testing.T, src market.Source, cfg Config) *Service {
	t.Helper()
	if cfg.RetryMin == 0 {
		cfg.RetryMin = time.Millisecond
		cfg.RetryMax = 2 * time.Millisecond
	}
	svc, err := New(src, cfg)
	if err != nil {
		t.Fatalf("构造服务失败: %v", err)
	}
	return svc
}

func TestFetchInvalidRange(t *testing.T) {
	src := &fakeSource{name: "yahoo"}
	svc := newTestService(t, src, Config{})
	_, err := svc.Fetch(context.Background(), "ACME",
		time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, market.ErrInvalidRange) {
		t.Fatalf("start > end 应返回 ErrInvalidRange, 实际=%v", err)
	}
	if src.calls != 0 {
		t.Fatalf("区间非法时不应发请求, 实际调用 %d 次", src.calls)
	}
}

func TestFetchMapsYahooSymbol(t *testing.T) {
	start := time.Date(2020, 1, 6, 0, 0, 0, 0, time.UTC)
	src := &fakeSource{name: "yahoo", candles: seedCandles(t, start, 5)}
	svc := newTestService(t, src, Config{})
	series, err := svc.Fetch(context.Background(), "spx", start, start.AddDate(0, 0, 10))
	if err != nil {
		t.Fatalf("拉取失败: %v", err)
	}
	if src.gotSymbol != "^GSPC" {
		t.Fatalf("SPX 应换算为 ^GSPC, 实际=%q", src.gotSymbol)
	}
	if series.Symbol != "^GSPC" || series.Display != "S&P 500" {
		t.Fatalf("序列标识异常: symbol=%q display=%q", series.Symbol, series.Display)
	}

	// binance 源不做记号换算。
	src2 := &fakeSource{name: "binance", candles: seedCandles(t, start, 5)}
	svc2 := newTestService(t, src2, Config{})
	if _, err := svc2.Fetch(context.Background(), "btcusdt", start, start.AddDate(0, 0, 10)); err != nil {
		t.Fatalf("拉取失败: %v", err)
	}
	if src2.gotSymbol != "BTCUSDT" {
		t.Fatalf("binance 只做大写规整, 实际=%q", src2.gotSymbol)
	}
}

func TestFetchClampsStart(t *testing.T) {
	start := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC)
	src := &fakeSource{name: "yahoo", candles: seedCandles(t, time.Date(2020, 1, 6, 0, 0, 0, 0, time.UTC), 3)}
	svc := newTestService(t, src, Config{})
	if _, err := svc.Fetch(context.Background(), "ACME", start, end); err != nil {
		t.Fatalf("拉取失败: %v", err)
	}
	want := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	if !src.gotStart.Equal(want) {
		t.Fatalf("起点应抬高到 %v, 实际=%v", want, src.gotStart)
	}
}

func TestFetchRoundsPrices(t *testing.T) {
	start := time.Date(2020, 1, 6, 0, 0, 0, 0, time.UTC)
	candles := []market.Candle{{
		Date: start, Open: 100.123456, High: 102.987654, Low: 99.111111, Close: 101.555555, Volume: 10,
	}}
	src := &fakeSource{name: "yahoo", candles: candles}
	svc := newTestService(t, src, Config{})
	series, err := svc.Fetch(context.Background(), "ACME", start, start)
	if err != nil {
		t.Fatalf("拉取失败: %v", err)
	}
	c := series.Candles[0]
	if c.Open != 100.1235 || c.High != 102.9877 || c.Low != 99.1111 || c.Close != 101.5556 {
		t.Fatalf("价格应四舍五入到 4 位小数: %+v", c)
	}
}

func TestFetchNoRetryByDefault(t *testing.T) {
	src := &fakeSource{name: "yahoo", failTimes: 1}
	svc := newTestService(t, src, Config{})
	_, err := svc.Fetch(context.Background(), "ACME",
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, market.ErrDataUnavailable) {
		t.Fatalf("失败应原样向上抛, 实际=%v", err)
	}
	if src.calls != 1 {
		t.Fatalf("默认只应尝试一次, 实际=%d", src.calls)
	}
}

func TestFetchRetryRecovers(t *testing.T) {
	start := time.Date(2020, 1, 6, 0, 0, 0, 0, time.UTC)
	src := &fakeSource{name: "yahoo", failTimes: 2, candles: seedCandles(t, start, 3)}
	svc := newTestService(t, src, Config{Attempts: 5})
	series, err := svc.Fetch(context.Background(), "ACME", start, start.AddDate(0, 0, 5))
	if err != nil {
		t.Fatalf("第 3 次应成功: %v", err)
	}
	if src.calls != 3 {
		t.Fatalf("应尝试 3 次, 实际=%d", src.calls)
	}
	if series.Len() != 3 {
		t.Fatalf("序列行数异常: %d", series.Len())
	}
}

func TestFetchRejectsBadData(t *testing.T) {
	start := time.Date(2020, 1, 6, 0, 0, 0, 0, time.UTC)
	bad := seedCandles(t, start, 3)
	bad[1].High = bad[1].Low - 1
	src := &fakeSource{name: "yahoo", candles: bad}
	svc := newTestService(t, src, Config{})
	if _, err := svc.Fetch(context.Background(), "ACME", start, start.AddDate(0, 0, 5)); err == nil {
		t.Fatalf("OHLC 不自洽的数据应被拒绝")
	}
}

func TestSymbolHelpers(t *testing.T) {
	cases := map[string]string{
		"SPX":  "^GSPC",
		".INX": "^GSPC",
		"VIX":  "^VIX",
		".DJI": "^DJI",
		"AAPL": "AAPL",
	}
	for in, want := range cases {
		if got := toYahoo(in); got != want {
			t.Fatalf("toYahoo(%q) 应为 %q, 实际=%q", in, want, got)
		}
	}
	if displayName("^GSPC") != "S&P 500" {
		t.Fatalf("^GSPC 标题错误: %q", displayName("^GSPC"))
	}
	if displayName("AAPL") != "AAPL" {
		t.Fatalf("未识别 symbol 标题应原样返回")
	}
}
