package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// IndicatorSpec 一条指标配置：指标名 + 窗口。
// macd 与 ultosc 忽略 Window，使用各自的常规参数。
type IndicatorSpec struct {
	Name   string `toml:"name"`
	Window int    `toml:"window"`
}

// Config 单次运行的全部配置。零值可用，withDefaults 会补齐。
type Config struct {
	Symbol     string          `toml:"symbol"`
	DataSource string          `toml:"data_source"`
	StartDate  string          `toml:"start_date"`
	EndDate    string          `toml:"end_date"`
	Indicators []IndicatorSpec `toml:"indicators"`

	FetchAttempts int    `toml:"fetch_attempts"`
	ChartBars     int    `toml:"chart_bars"`
	PreviewRows   int    `toml:"preview_rows"`
	ListenAddr    string `toml:"listen_addr"`
	CSVPath       string `toml:"csv_path"`
	SnapshotPath  string `toml:"snapshot_path"`
	LogLevel      string `toml:"log_level"`
}

// Default 返回内置默认配置：跟踪标普 500 最近一年的日线。
func Default() Config {
	return Config{
		Symbol:     "SPX",
		DataSource: "yahoo",
		Indicators: []IndicatorSpec{
			{Name: "ema", Window: 34},
			{Name: "sma", Window: 200},
			{Name: "rsi", Window: 14},
			{Name: "macd"},
		},
	}
}

func (c *Config) withDefaults() Config {
	out := *c
	out.Symbol = strings.ToUpper(strings.TrimSpace(out.Symbol))
	if out.Symbol == "" {
		out.Symbol = "SPX"
	}
	out.DataSource = strings.ToLower(strings.TrimSpace(out.DataSource))
	if out.DataSource == "" {
		out.DataSource = "yahoo"
	}
	if out.StartDate == "" {
		out.StartDate = time.Now().UTC().AddDate(-1, 0, 0).Format("2006-01-02")
	}
	if len(out.Indicators) == 0 {
		out.Indicators = Default().Indicators
	}
	if out.FetchAttempts <= 0 {
		out.FetchAttempts = 1
	}
	if out.ChartBars <= 0 {
		out.ChartBars = 120
	}
	if out.PreviewRows <= 0 {
		out.PreviewRows = 5
	}
	if out.ListenAddr == "" {
		out.ListenAddr = "127.0.0.1:8787"
	}
	if out.LogLevel == "" {
		out.LogLevel = "info"
	}
	return out
}

// Validate 校验补齐后的配置。
func (c *Config) Validate() error {
	switch c.DataSource {
	case "yahoo", "binance":
	default:
		return fmt.Errorf("unknown data_source %q", c.DataSource)
	}
	start, err := time.Parse("2006-01-02", c.StartDate)
	if err != nil {
		return fmt.Errorf("start_date 无法解析: %w", err)
	}
	if c.EndDate != "" {
		end, err := time.Parse("2006-01-02", c.EndDate)
		if err != nil {
			return fmt.Errorf("end_date 无法解析: %w", err)
		}
		if start.After(end) {
			return fmt.Errorf("start_date %s 晚于 end_date %s", c.StartDate, c.EndDate)
		}
	}
	for i, ind := range c.Indicators {
		name := strings.ToLower(strings.TrimSpace(ind.Name))
		switch name {
		case "sma", "ema", "wma", "rsi":
			if ind.Window <= 0 {
				return fmt.Errorf("indicator %d (%s): window 必须为正", i, name)
			}
		case "macd", "ultosc":
		default:
			return fmt.Errorf("indicator %d: unknown name %q", i, ind.Name)
		}
	}
	return nil
}

// Range 解析配置的日期区间；EndDate 为空时取今天。
func (c *Config) Range() (start, end time.Time, err error) {
	start, err = time.Parse("2006-01-02", c.StartDate)
	if err != nil {
		return start, end, fmt.Errorf("start_date 无法解析: %w", err)
	}
	if c.EndDate == "" {
		end = time.Now().UTC().Truncate(24 * time.Hour)
		return start, end, nil
	}
	end, err = time.Parse("2006-01-02", c.EndDate)
	if err != nil {
		return start, end, fmt.Errorf("end_date 无法解析: %w", err)
	}
	return start, end, nil
}

// Load 从 TOML 文件加载配置并补齐默认值；path 为空时尝试 kview.toml，
// 文件不存在则直接使用内置默认。
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if path == "" {
		path = "kview.toml"
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			out := cfg.withDefaults()
			return out, out.Validate()
		}
		return cfg, fmt.Errorf("读取配置 %s 失败: %w", path, err)
	}
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("解析配置 %s 失败: %w", path, err)
	}
	out := cfg.withDefaults()
	return out, out.Validate()
}
