package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"kview/internal/logger"
	"kview/internal/market"
)

// Source 通过 Yahoo Finance v8 chart 接口拉取股票/指数日线。
type Source struct {
	cfg        Config
	httpClient *http.Client
}

func New(cfg Config) *Source {
	final := cfg.withDefaults()
	return &Source{
		cfg:        final,
		httpClient: &http.Client{Timeout: final.HTTPTimeout},
	}
}

func (s *Source) Name() string { return "yahoo" }

// chartResponse 是 v8 chart 接口的响应结构。
// 价格数组里的节假日空洞是 JSON null，这里用 any 接住再逐个转换。
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []any `json:"open"`
					High   []any `json:"high"`
					Low    []any `json:"low"`
					Close  []any `json:"close"`
					Volume []any `json:"volume"`
				} `json:"quote"`
				Adjclose []struct {
					Adjclose []any `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchDaily 拉取 [start, end] 的日线。复权：当返回 adjclose 时按
// adjclose/close 比例缩放 OHLC，使序列消除拆股与分红跳空。
func (s *Source) FetchDaily(ctx context.Context, symbol string, start, end time.Time) ([]market.Candle, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	// period2 为开区间端点，加一天使 end 当天的 bar 也落在响应里。
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&period1=%d&period2=%d&includeAdjustedClose=true",
		s.cfg.BaseURL, url.PathEscape(symbol), start.Unix(), end.AddDate(0, 0, 1).Unix())
	logger.Debugf("[yahoo] GET %s", u)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch %s: %w: %v", symbol, market.ErrDataUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("yahoo fetch %s: %w: %s", symbol, market.ErrDataUnavailable, resp.Status)
	}

	var chart chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return nil, fmt.Errorf("yahoo decode %s: %w: %v", symbol, market.ErrDataUnavailable, err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api %s: %w: %s", symbol, market.ErrDataUnavailable, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w: empty result", symbol, market.ErrDataUnavailable)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	var adj []any
	if len(result.Indicators.Adjclose) > 0 {
		adj = result.Indicators.Adjclose[0].Adjclose
	}

	out := make([]market.Candle, 0, len(result.Timestamp))
	seen := make(map[time.Time]bool, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) || i >= len(quote.Close) {
			break
		}
		o, h, l, c := toFloat(quote.Open[i]), toFloat(quote.High[i]), toFloat(quote.Low[i]), toFloat(quote.Close[i])
		if o == 0 && h == 0 && l == 0 && c == 0 {
			// 节假日等空 bar，跳过。
			continue
		}
		day := market.Day(time.Unix(ts, 0))
		if day.Before(market.Day(start)) || day.After(market.Day(end)) || seen[day] {
			continue
		}
		seen[day] = true

		if i < len(adj) {
			if a := toFloat(adj[i]); a > 0 && c > 0 && a != c {
				factor := a / c
				o, h, l, c = o*factor, h*factor, l*factor, c*factor
			}
		}
		volume := toFloat(safeIndex(quote.Volume, i))

		out = append(out, market.Candle{
			Date:   day,
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: volume,
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w: no bars in range", symbol, market.ErrDataUnavailable)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func safeIndex(vs []any, i int) any {
	if i < 0 || i >= len(vs) {
		return nil
	}
	return vs[i]
}
