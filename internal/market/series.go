package market

import (
	"fmt"
	"time"
)

// 基础价格列名，采集阶段产出，指标阶段只读。
const (
	ColOpen   = "Open"
	ColHigh   = "High"
	ColLow    = "Low"
	ColClose  = "Close"
	ColVolume = "Volume"
)

var baseColumns = []string{ColOpen, ColHigh, ColLow, ColClose, ColVolume}

// Column 与序列逐行对齐的派生列，NaN 表示该行缺口（回看期不足）。
type Column struct {
	Name   string
	Values []float64
}

// Series 按日期严格升序的日线序列，外加指标阶段追加的派生列。
// 采集完成后 Candles 只读，之后的变换都通过 WithColumn 返回新副本。
type Series struct {
	Symbol  string
	Display string
	Candles []Candle
	Columns []Column
}

// NewSeries 构造并校验序列：逐根 OHLC 完整性 + 日期严格递增。
func NewSeries(symbol string, candles []Candle) (*Series, error) {
	for i, c := range candles {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("candle %d: %w", i, err)
		}
		if i > 0 && !candles[i-1].Date.Before(c.Date) {
			return nil, fmt.Errorf("dates not strictly increasing at %d: %s -> %s",
				i, candles[i-1].Date.Format("2006-01-02"), c.Date.Format("2006-01-02"))
		}
	}
	return &Series{Symbol: symbol, Display: symbol, Candles: candles}, nil
}

// Len 序列行数，nil 安全。
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Candles)
}

// Dates 返回全部日期（升序）。
func (s *Series) Dates() []time.Time {
	out := make([]time.Time, s.Len())
	for i, c := range s.Candles {
		out[i] = c.Date
	}
	return out
}

// HasColumn 判断列是否存在（基础价格列或派生列）。
func (s *Series) HasColumn(name string) bool {
	_, err := s.Column(name)
	return err == nil
}

// ColumnNames 返回全部列名，基础列在前，派生列按追加顺序在后。
func (s *Series) ColumnNames() []string {
	out := make([]string, 0, len(baseColumns)+len(s.Columns))
	out = append(out, baseColumns...)
	for _, c := range s.Columns {
		out = append(out, c.Name)
	}
	return out
}

// Column 按名取列。基础列从 Candles 现取，派生列返回底层切片（调用方不应改写）。
func (s *Series) Column(name string) ([]float64, error) {
	if s == nil {
		return nil, fmt.Errorf("column %q: %w", name, ErrUnknownColumn)
	}
	switch name {
	case ColOpen, ColHigh, ColLow, ColClose, ColVolume:
		out := make([]float64, len(s.Candles))
		for i, c := range s.Candles {
			switch name {
			case ColOpen:
				out[i] = c.Open
			case ColHigh:
				out[i] = c.High
			case ColLow:
				out[i] = c.Low
			case ColClose:
				out[i] = c.Close
			case ColVolume:
				out[i] = c.Volume
			}
		}
		return out, nil
	}
	for _, c := range s.Columns {
		if c.Name == name {
			return c.Values, nil
		}
	}
	return nil, fmt.Errorf("column %q: %w", name, ErrUnknownColumn)
}

// WithColumn 返回追加了一列的新序列，原序列不变。
// 列长必须与序列行数一致；同名派生列被替换。
func (s *Series) WithColumn(name string, values []float64) (*Series, error) {
	if s.Len() == 0 {
		return nil, ErrEmptySeries
	}
	if name == "" {
		return nil, fmt.Errorf("column name is required")
	}
	if len(values) != s.Len() {
		return nil, fmt.Errorf("column %q length %d != series length %d", name, len(values), s.Len())
	}
	out := s.Clone()
	for i := range out.Columns {
		if out.Columns[i].Name == name {
			out.Columns[i].Values = values
			return out, nil
		}
	}
	out.Columns = append(out.Columns, Column{Name: name, Values: values})
	return out, nil
}

// Clone 深拷贝序列（K 线与派生列都复制）。
func (s *Series) Clone() *Series {
	if s == nil {
		return nil
	}
	out := &Series{Symbol: s.Symbol, Display: s.Display}
	out.Candles = make([]Candle, len(s.Candles))
	copy(out.Candles, s.Candles)
	out.Columns = make([]Column, len(s.Columns))
	for i, c := range s.Columns {
		vs := make([]float64, len(c.Values))
		copy(vs, c.Values)
		out.Columns[i] = Column{Name: c.Name, Values: vs}
	}
	return out
}

// Tail 返回只含最后 n 行的新序列；n<=0 或 n>=行数时返回完整拷贝。
func (s *Series) Tail(n int) *Series {
	if n <= 0 || n >= s.Len() {
		return s.Clone()
	}
	out := &Series{Symbol: s.Symbol, Display: s.Display}
	start := s.Len() - n
	out.Candles = make([]Candle, n)
	copy(out.Candles, s.Candles[start:])
	out.Columns = make([]Column, len(s.Columns))
	for i, c := range s.Columns {
		vs := make([]float64, n)
		copy(vs, c.Values[start:])
		out.Columns[i] = Column{Name: c.Name, Values: vs}
	}
	return out
}
