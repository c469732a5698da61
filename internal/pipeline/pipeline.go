// Package pipeline 把一次运行的三个阶段按顺序串联：采集、指标、图表。
// 各阶段严格串行，前一阶段失败直接终止，不做部分产出。
package pipeline

import (
	"context"
	"fmt"
	"time"

	"kview/internal/analysis/indicator"
	"kview/internal/chart"
	"kview/internal/config"
	"kview/internal/logger"
	"kview/internal/market"
	"kview/internal/quote"
)

// Result 一次完整流水线的产物。
type Result struct {
	Series     *market.Series
	Indicators []indicator.Indicator
	Chart      *chart.Chart
	Elapsed    time.Duration
}

// Run 按配置执行一次完整流水线。
func Run(ctx context.Context, cfg config.Config, src market.Source) (*Result, error) {
	begin := time.Now()

	svc, err := quote.New(src, quote.Config{Attempts: cfg.FetchAttempts})
	if err != nil {
		return nil, err
	}
	start, end, err := cfg.Range()
	if err != nil {
		return nil, err
	}
	series, err := svc.Fetch(ctx, cfg.Symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("拉取行情失败: %w", err)
	}

	inds, err := buildIndicators(cfg.Indicators)
	if err != nil {
		return nil, err
	}
	series, err = indicator.ApplyAll(series, inds)
	if err != nil {
		return nil, fmt.Errorf("计算指标失败: %w", err)
	}

	ch, err := chart.Build(series, chart.FromIndicators(inds), chart.Config{MaxBars: cfg.ChartBars})
	if err != nil {
		return nil, fmt.Errorf("构建图表失败: %w", err)
	}

	elapsed := time.Since(begin)
	logger.Infof("[pipeline] %s 完成: %d 行, %d 个指标, 耗时 %s",
		series.Symbol, series.Len(), len(inds), elapsed.Round(time.Millisecond))
	return &Result{Series: series, Indicators: inds, Chart: ch, Elapsed: elapsed}, nil
}

// buildIndicators 按配置逐条构造指标，未知名称直接报错。
func buildIndicators(specs []config.IndicatorSpec) ([]indicator.Indicator, error) {
	out := make([]indicator.Indicator, 0, len(specs))
	for i, spec := range specs {
		ind, err := indicator.FromSpec(spec.Name, spec.Window)
		if err != nil {
			return nil, fmt.Errorf("indicator %d: %w", i, err)
		}
		out = append(out, ind)
	}
	return out, nil
}
