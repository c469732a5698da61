package yahoo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kview/internal/market"
)

// chartBody 构造一段 v8 chart 响应，idx=1 的 bar 全为 null 模拟节假日。
func chartBody(t *testing.T, start time.Time, days int) string {
	t.Helper()
	var ts, o, h, l, c, v, adj []string
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		ts = append(ts, fmt.Sprintf("%d", day.Unix()))
		if i == 1 {
			o, h, l, c, v, adj = append(o, "null"), append(h, "null"), append(l, "null"),
				append(c, "null"), append(v, "null"), append(adj, "null")
			continue
		}
		base := 100.0 + float64(i)
		o = append(o, fmt.Sprintf("%.2f", base))
		h = append(h, fmt.Sprintf("%.2f", base+2))
		l = append(l, fmt.Sprintf("%.2f", base-1))
		c = append(c, fmt.Sprintf("%.2f", base+1))
		v = append(v, "12345")
		// adjclose = close 的一半，验证复权缩放。
		adj = append(adj, fmt.Sprintf("%.2f", (base+1)/2))
	}
	join := func(xs []string) string { return strings.Join(xs, ",") }
	return fmt.Sprintf(`{"chart":{"result":[{"timestamp":[%s],
"indicators":{"quote":[{"open":[%s],"high":[%s],"low":[%s],"close":[%s],"volume":[%s]}],
"adjclose":[{"adjclose":[%s]}]}}],"error":null}}`,
		join(ts), join(o), join(h), join(l), join(c), join(v), join(adj))
}

func newTestSource(t *testing.T, handler http.HandlerFunc) (*Source, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL}), srv
}

func TestFetchDailySkipsNullBars(t *testing.T) {
	start := time.Date(2020, 1, 6, 14, 30, 0, 0, time.UTC)
	var gotUA string
	src, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		if !strings.Contains(r.URL.Path, "/v8/finance/chart/ACME") {
			t.Errorf("路径错误: %s", r.URL.Path)
		}
		if r.URL.Query().Get("interval") != "1d" {
			t.Errorf("interval 应为 1d, 实际=%s", r.URL.Query().Get("interval"))
		}
		fmt.Fprint(w, chartBody(t, start, 5))
	})

	candles, err := src.FetchDaily(context.Background(), "ACME",
		time.Date(2020, 1, 6, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 1, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("拉取失败: %v", err)
	}
	if gotUA == "" {
		t.Fatalf("必须携带 User-Agent")
	}
	// 5 天里第 2 天是 null bar，应剩 4 根。
	if len(candles) != 4 {
		t.Fatalf("应跳过 null bar 得到 4 根, 实际=%d", len(candles))
	}
	for i := 1; i < len(candles); i++ {
		if !candles[i-1].Date.Before(candles[i].Date) {
			t.Fatalf("日期应严格递增: %v -> %v", candles[i-1].Date, candles[i].Date)
		}
	}
	// adjclose 是 close 的一半，OHLC 应整体减半。
	first := candles[0]
	if math.Abs(first.Close-101.0/2) > 1e-9 {
		t.Fatalf("复权后 close 应为 %.4f, 实际=%.4f", 101.0/2, first.Close)
	}
	if math.Abs(first.High-102.0/2) > 1e-9 {
		t.Fatalf("复权后 high 应为 %.4f, 实际=%.4f", 102.0/2, first.High)
	}
	if first.Volume != 12345 {
		t.Fatalf("volume 不应被复权缩放, 实际=%v", first.Volume)
	}
}

func TestFetchDailyTrimsToRange(t *testing.T) {
	start := time.Date(2020, 1, 6, 14, 30, 0, 0, time.UTC)
	src, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		// 响应里带上区间外的前后各一天，客户端必须裁掉。
		fmt.Fprint(w, chartBody(t, start.AddDate(0, 0, -1), 7))
	})
	candles, err := src.FetchDaily(context.Background(), "ACME",
		time.Date(2020, 1, 6, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 1, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("拉取失败: %v", err)
	}
	for _, c := range candles {
		if c.Date.Before(time.Date(2020, 1, 6, 0, 0, 0, 0, time.UTC)) ||
			c.Date.After(time.Date(2020, 1, 10, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("日期 %v 超出请求区间", c.Date)
		}
	}
}

func TestFetchDailyAPIError(t *testing.T) {
	src, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)
	})
	_, err := src.FetchDaily(context.Background(), "NOPE",
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, market.ErrDataUnavailable) {
		t.Fatalf("symbol 不存在应返回 ErrDataUnavailable, 实际=%v", err)
	}
}

func TestFetchDailyHTTPError(t *testing.T) {
	src, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	})
	_, err := src.FetchDaily(context.Background(), "ACME",
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, market.ErrDataUnavailable) {
		t.Fatalf("非 2xx 应返回 ErrDataUnavailable, 实际=%v", err)
	}
}

func TestFetchDailyUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	src := New(Config{BaseURL: srv.URL, HTTPTimeout: time.Second})
	_, err := src.FetchDaily(context.Background(), "ACME",
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, market.ErrDataUnavailable) {
		t.Fatalf("连接失败应返回 ErrDataUnavailable, 实际=%v", err)
	}
}
