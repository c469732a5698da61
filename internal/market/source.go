package market

import (
	"context"
	"time"
)

// Source 统一对接外部日线行情供应商。
type Source interface {
	// FetchDaily 拉取 [start, end] 闭区间内的日线并按日期升序返回。
	// 区间内没有成交的自然日直接缺席，不补零。
	FetchDaily(ctx context.Context, symbol string, start, end time.Time) ([]Candle, error)
	// Name 供应商名称，用于日志与错误信息。
	Name() string
}
