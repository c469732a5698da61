// Package snapshot 用无头 Chrome 把已渲染的图表页面截成 PNG。
// 依赖本机浏览器, 属于可选功能, 默认不开启。
package snapshot

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/chromedp"

	"kview/internal/logger"
)

// Config 截图参数。
type Config struct {
	Width   int
	Height  int
	Quality int
	// Delay 页面加载后等待图表脚本完成动画的时间。
	Delay   time.Duration
	Timeout time.Duration
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.Width <= 0 {
		out.Width = 1440
	}
	if out.Height <= 0 {
		out.Height = 900
	}
	if out.Quality <= 0 || out.Quality > 100 {
		out.Quality = 90
	}
	if out.Delay <= 0 {
		out.Delay = 1200 * time.Millisecond
	}
	if out.Timeout <= 0 {
		out.Timeout = 30 * time.Second
	}
	return out
}

// Capture 打开 url, 等待图表容器出现后整页截图并写入 outPath。
func Capture(ctx context.Context, url, outPath string, cfg Config) error {
	if url == "" || outPath == "" {
		return fmt.Errorf("snapshot: url 和输出路径不能为空")
	}
	final := cfg.withDefaults()

	ctx, cancel := context.WithTimeout(ctx, final.Timeout)
	defer cancel()
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	logger.Debugf("[snapshot] 打开 %s", url)
	var png []byte
	err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(int64(final.Width), int64(final.Height)),
		chromedp.Navigate(url),
		chromedp.WaitVisible("#kview", chromedp.ByID),
		chromedp.Sleep(final.Delay),
		chromedp.FullScreenshot(&png, final.Quality),
	)
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", url, err)
	}
	if err := os.WriteFile(outPath, png, 0o644); err != nil {
		return fmt.Errorf("snapshot 写入 %s: %w", outPath, err)
	}
	logger.Infof("[snapshot] 已保存 %s (%d bytes)", outPath, len(png))
	return nil
}
