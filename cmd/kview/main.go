package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"kview/internal/chart/snapshot"
	"kview/internal/config"
	"kview/internal/export"
	binancegw "kview/internal/gateway/binance"
	yahoogw "kview/internal/gateway/yahoo"
	"kview/internal/logger"
	"kview/internal/market"
	"kview/internal/pipeline"
	"kview/internal/preview"
	"kview/internal/transport/http/viewer"
)

func main() {
	if err := run(); err != nil {
		logger.Errorf("[kview] %v", err)
		os.Exit(1)
	}
}

func run() error {
	path := ""
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))
	logger.Infof("[kview] %s 日线分析启动 (source=%s)", cfg.Symbol, cfg.DataSource)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := pipeline.Run(ctx, cfg, newSource(cfg))
	if err != nil {
		return err
	}

	fmt.Println(preview.Render(res.Series, preview.Options{Rows: cfg.PreviewRows}))

	if cfg.CSVPath != "" {
		if err := export.WriteFile(cfg.CSVPath, res.Series, export.Options{PricePrecision: export.PrecisionAuto}); err != nil {
			return err
		}
	}

	srv, err := viewer.NewServer(viewer.Config{Addr: cfg.ListenAddr, Series: res.Series, Chart: res.Chart})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Start(gctx) })
	if cfg.SnapshotPath != "" {
		g.Go(func() error {
			// 等服务监听就绪后再打开页面截图；失败只告警，不影响服务。
			select {
			case <-gctx.Done():
				return nil
			case <-time.After(800 * time.Millisecond):
			}
			if err := snapshot.Capture(gctx, pageURL(cfg.ListenAddr), cfg.SnapshotPath, snapshot.Config{}); err != nil {
				logger.Warnf("[kview] 截图失败: %v", err)
			}
			return nil
		})
	}
	return g.Wait()
}

func newSource(cfg config.Config) market.Source {
	if cfg.DataSource == "binance" {
		return binancegw.New(binancegw.Config{})
	}
	return yahoogw.New(yahoogw.Config{})
}

func pageURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}
	return "http://" + addr + "/"
}
