package binance

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"

	"kview/internal/logger"
	"kview/internal/market"
)

// 现货 klines 单页上限。
const pageLimit = 1000

// Source 通过 Binance 现货行情接口拉取加密货币日线。
type Source struct {
	cfg    Config
	client *binance.Client
}

func New(cfg Config) *Source {
	final := cfg.withDefaults()
	client := binance.NewClient(final.APIKey, final.APISecret)
	client.HTTPClient = &http.Client{Timeout: final.HTTPTimeout}
	if final.BaseURL != "" {
		client.BaseURL = final.BaseURL
	}
	return &Source{cfg: final, client: client}
}

func (s *Source) Name() string { return "binance" }

// FetchDaily 拉取 [start, end] 的日线，超过单页上限时按开盘时间续页。
func (s *Source) FetchDaily(ctx context.Context, symbol string, start, end time.Time) ([]market.Candle, error) {
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("binance source not initialized")
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	startDay := market.Day(start)
	endDay := market.Day(end)
	cursor := startDay.UnixMilli()
	endMS := endDay.AddDate(0, 0, 1).UnixMilli() - 1

	out := make([]market.Candle, 0, 512)
	for cursor <= endMS {
		logger.Debugf("[binance] klines %s 1d from=%d", symbol, cursor)
		kls, err := s.client.NewKlinesService().
			Symbol(symbol).
			Interval("1d").
			StartTime(cursor).
			EndTime(endMS).
			Limit(pageLimit).
			Do(ctx)
		if err != nil {
			return nil, fmt.Errorf("binance klines %s: %w: %v", symbol, market.ErrDataUnavailable, err)
		}
		for _, k := range kls {
			if k == nil {
				continue
			}
			c, err := candleFromKline(k)
			if err != nil {
				logger.Warnf("[binance] 丢弃无法解析的 bar @%d: %v", k.OpenTime, err)
				continue
			}
			if c.Date.Before(startDay) || c.Date.After(endDay) {
				continue
			}
			if n := len(out); n > 0 && !out[n-1].Date.Before(c.Date) {
				continue
			}
			out = append(out, c)
		}
		if len(kls) < pageLimit {
			break
		}
		cursor = kls[len(kls)-1].OpenTime + 1
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("binance %s: %w: no bars in range", symbol, market.ErrDataUnavailable)
	}
	return out, nil
}

// candleFromKline 把 SDK 的字符串价位解析成 Candle。
func candleFromKline(k *binance.Kline) (market.Candle, error) {
	parse := func(s string) (float64, error) {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return 0, err
		}
		return d.InexactFloat64(), nil
	}
	var (
		c   market.Candle
		err error
	)
	if c.Open, err = parse(k.Open); err != nil {
		return c, fmt.Errorf("open %q: %w", k.Open, err)
	}
	if c.High, err = parse(k.High); err != nil {
		return c, fmt.Errorf("high %q: %w", k.High, err)
	}
	if c.Low, err = parse(k.Low); err != nil {
		return c, fmt.Errorf("low %q: %w", k.Low, err)
	}
	if c.Close, err = parse(k.Close); err != nil {
		return c, fmt.Errorf("close %q: %w", k.Close, err)
	}
	if c.Volume, err = parse(k.Volume); err != nil {
		return c, fmt.Errorf("volume %q: %w", k.Volume, err)
	}
	c.Date = market.Day(time.Unix(0, k.OpenTime*int64(time.Millisecond)))
	return c, nil
}
