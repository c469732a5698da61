package market

import (
	"fmt"
	"math"
	"time"
)

// Candle 单个交易日的 OHLCV 记录，Date 取 UTC 零点。
type Candle struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Validate 校验单根日线的完整性：价格为正且有限，高低价包住开收价，成交量非负。
func (c Candle) Validate() error {
	for _, v := range []float64{c.Open, c.High, c.Low, c.Close} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return fmt.Errorf("bad price %v on %s", v, c.Date.Format("2006-01-02"))
		}
	}
	if c.High < c.Open || c.High < c.Close || c.High < c.Low {
		return fmt.Errorf("high %.4f 未覆盖 open/close/low on %s", c.High, c.Date.Format("2006-01-02"))
	}
	if c.Low > c.Open || c.Low > c.Close {
		return fmt.Errorf("low %.4f 高于 open/close on %s", c.Low, c.Date.Format("2006-01-02"))
	}
	if math.IsNaN(c.Volume) || c.Volume < 0 {
		return fmt.Errorf("negative volume %v on %s", c.Volume, c.Date.Format("2006-01-02"))
	}
	return nil
}

// Day 归一化日期到 UTC 零点，日线序列只关心自然日。
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
