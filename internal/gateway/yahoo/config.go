package yahoo

import "time"

// Config 描述 Yahoo Source 运行所需的参数。
type Config struct {
	BaseURL     string
	UserAgent   string
	HTTPTimeout time.Duration
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.BaseURL == "" {
		out.BaseURL = "https://query1.finance.yahoo.com"
	}
	if out.UserAgent == "" {
		// 裸请求会被 Yahoo 拒绝，必须带浏览器 UA。
		out.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
	}
	if out.HTTPTimeout <= 0 {
		out.HTTPTimeout = 30 * time.Second
	}
	return out
}
