package binance

import "time"

// Config 描述 Binance Source 运行所需的参数。
// 行情接口无需鉴权，APIKey/APISecret 留空即可。
type Config struct {
	APIKey      string
	APISecret   string
	BaseURL     string
	HTTPTimeout time.Duration
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.HTTPTimeout <= 0 {
		out.HTTPTimeout = 15 * time.Second
	}
	return out
}
