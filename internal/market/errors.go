package market

import "errors"

// 管道各阶段共用的哨兵错误，调用方用 errors.Is 判定。
var (
	// ErrInvalidRange 起始日期晚于结束日期。
	ErrInvalidRange = errors.New("invalid date range")
	// ErrDataUnavailable 行情源不可达、symbol 不存在或区间内没有任何可用数据。
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrInsufficientData 序列长度不足以支撑指标窗口。
	ErrInsufficientData = errors.New("insufficient data")
	// ErrUnknownColumn 引用了序列中不存在的列。
	ErrUnknownColumn = errors.New("unknown column")
	// ErrEmptySeries 序列为空。
	ErrEmptySeries = errors.New("empty series")
)
