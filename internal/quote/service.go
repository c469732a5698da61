package quote

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jpillora/backoff"

	"kview/internal/logger"
	"kview/internal/market"
	"kview/internal/pkg/prices"
)

// 日线数据最早回溯到这一天，更早的区间直接抬高起点。
var minStart = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Config 控制采集服务的行为。
type Config struct {
	// Attempts 拉取尝试总数，1 表示失败直接向上抛。
	Attempts int
	RetryMin time.Duration
	RetryMax time.Duration
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.Attempts <= 0 {
		out.Attempts = 1
	}
	if out.RetryMin <= 0 {
		out.RetryMin = 3 * time.Second
	}
	if out.RetryMax <= 0 {
		out.RetryMax = 30 * time.Second
	}
	return out
}

// Service 封装一个行情源：symbol 记号换算、区间校验、价格规整。
type Service struct {
	src market.Source
	cfg Config
}

func New(src market.Source, cfg Config) (*Service, error) {
	if src == nil {
		return nil, fmt.Errorf("source 不能为空")
	}
	return &Service{src: src, cfg: cfg.withDefaults()}, nil
}

// Fetch 拉取 [start, end] 的日线序列。
// 返回的序列保证日期严格递增、OHLC 自洽、价格保留 4 位小数。
func (s *Service) Fetch(ctx context.Context, symbol string, start, end time.Time) (*market.Series, error) {
	if s == nil || s.src == nil {
		return nil, fmt.Errorf("quote service not initialized")
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	start, end = market.Day(start), market.Day(end)
	if start.After(end) {
		return nil, fmt.Errorf("fetch %s: %s > %s: %w",
			symbol, start.Format("2006-01-02"), end.Format("2006-01-02"), market.ErrInvalidRange)
	}
	if start.Before(minStart) {
		logger.Debugf("[quote] start %s 早于下限，抬高到 %s",
			start.Format("2006-01-02"), minStart.Format("2006-01-02"))
		start = minStart
	}

	mapped := symbol
	if s.src.Name() == "yahoo" {
		mapped = toYahoo(symbol)
	}

	candles, err := s.fetchWithRetry(ctx, mapped, start, end)
	if err != nil {
		return nil, err
	}
	for i := range candles {
		candles[i].Open = prices.Round4(candles[i].Open)
		candles[i].High = prices.Round4(candles[i].High)
		candles[i].Low = prices.Round4(candles[i].Low)
		candles[i].Close = prices.Round4(candles[i].Close)
	}
	series, err := market.NewSeries(mapped, candles)
	if err != nil {
		return nil, fmt.Errorf("%s 返回的数据未通过校验: %w", s.src.Name(), err)
	}
	series.Display = displayName(mapped)

	for _, g := range market.AuditDaily(series, 0).Gaps {
		logger.Warnf("[quote] %s 在 %s 与 %s 之间缺了 %d 天数据",
			mapped, g.From.Format("2006-01-02"), g.To.Format("2006-01-02"), g.Days)
	}
	if sum, ok := market.Summarize(series); ok {
		logger.Infof("[quote] %s %s..%s 共 %d 根日线, 收 %.4f (%+.2f%%)",
			mapped, sum.First.Format("2006-01-02"), sum.Last.Format("2006-01-02"),
			series.Len(), sum.LastClose, sum.ChangePct)
	}
	return series, nil
}

// fetchWithRetry 按配置的尝试次数拉取，失败按指数退避等待。
// Attempts=1 时等价于单次调用，任何错误原样向上传播。
func (s *Service) fetchWithRetry(ctx context.Context, symbol string, start, end time.Time) ([]market.Candle, error) {
	b := &backoff.Backoff{Min: s.cfg.RetryMin, Max: s.cfg.RetryMax, Factor: 2}
	var lastErr error
	for attempt := 1; attempt <= s.cfg.Attempts; attempt++ {
		candles, err := s.src.FetchDaily(ctx, symbol, start, end)
		if err == nil {
			return candles, nil
		}
		lastErr = err
		if attempt == s.cfg.Attempts {
			break
		}
		wait := b.Duration()
		logger.Warnf("[quote] 第 %d/%d 次拉取 %s 失败: %v, %s 后重试",
			attempt, s.cfg.Attempts, symbol, err, wait)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, lastErr
}
