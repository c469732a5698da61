// Package export 把行情序列落成 CSV 文本或文件。
package export

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"kview/internal/logger"
	"kview/internal/market"
)

// Options 控制时间格式与价格精度。
type Options struct {
	Location       *time.Location
	PricePrecision int
}

const (
	// PrecisionAuto 根据价格区间自动决定精度。
	PrecisionAuto = math.MinInt32
	// PrecisionRaw 表示保留原始精度（等价于 strconv.FormatFloat(..., -1, 64)）
	PrecisionRaw = -1
)

// BuildCSV 生成 CSV 数据，首行包含列头。
// 基础列在前，派生指标列按加入顺序排在后面；缺口值写成空单元格。
func BuildCSV(s *market.Series, opts Options) (string, error) {
	if s.Len() == 0 {
		return "", fmt.Errorf("export csv: %w", market.ErrEmptySeries)
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	precision := opts.PricePrecision
	if precision == PrecisionAuto {
		precision = autoPrecision(s.Candles)
	}

	derived := make([][]float64, 0, len(s.Columns))
	for _, col := range s.Columns {
		derived = append(derived, col.Values)
	}

	var b strings.Builder
	b.WriteString("Date")
	for _, name := range s.ColumnNames() {
		b.WriteByte(',')
		b.WriteString(name)
	}
	b.WriteByte('\n')

	for i, c := range s.Candles {
		b.WriteString(c.Date.In(loc).Format("2006-01-02"))
		b.WriteByte(',')
		b.WriteString(formatPrice(c.Open, precision))
		b.WriteByte(',')
		b.WriteString(formatPrice(c.High, precision))
		b.WriteByte(',')
		b.WriteString(formatPrice(c.Low, precision))
		b.WriteByte(',')
		b.WriteString(formatPrice(c.Close, precision))
		b.WriteByte(',')
		b.WriteString(formatPlainFloat(c.Volume))
		for _, vs := range derived {
			b.WriteByte(',')
			if v := vs[i]; !math.IsNaN(v) {
				b.WriteString(formatPrice(v, precision))
			}
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// WriteFile 把序列写入 path, 已存在的文件会被覆盖。
func WriteFile(path string, s *market.Series, opts Options) error {
	data, err := BuildCSV(s, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("export csv 写入 %s: %w", path, err)
	}
	logger.Infof("[export] %s: %d 行已写入 %s", s.Symbol, s.Len(), path)
	return nil
}

func autoPrecision(candles []market.Candle) int {
	maxVal := 0.0
	for _, c := range candles {
		for _, v := range []float64{c.Open, c.High, c.Low, c.Close} {
			abs := math.Abs(v)
			if abs > maxVal {
				maxVal = abs
			}
		}
	}
	switch {
	case maxVal >= 1000:
		return 2
	case maxVal >= 100:
		return 3
	default:
		return PrecisionRaw
	}
}

func formatPrice(value float64, precision int) string {
	if precision == PrecisionRaw {
		return strconv.FormatFloat(value, 'f', -1, 64)
	}
	s := strconv.FormatFloat(value, 'f', precision, 64)
	if precision > 0 {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return s
}

func formatPlainFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
