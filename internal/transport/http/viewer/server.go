// Package viewer 把渲染好的图表页面与序列数据通过 HTTP 暴露给浏览器。
package viewer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"kview/internal/chart"
	"kview/internal/export"
	"kview/internal/logger"
	"kview/internal/market"
)

// Server 只读服务：页面、序列 JSON、CSV 下载与健康检查。
type Server struct {
	addr    string
	runID   string
	series  *market.Series
	chart   *chart.Chart
	router  *gin.Engine
	started time.Time
}

type Config struct {
	Addr   string
	Series *market.Series
	Chart  *chart.Chart
}

func NewServer(cfg Config) (*Server, error) {
	if cfg.Series.Len() == 0 {
		return nil, errors.New("series 不能为空")
	}
	if cfg.Chart == nil {
		return nil, errors.New("chart 不能为空")
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		addr:    cfg.Addr,
		runID:   uuid.NewString(),
		series:  cfg.Series,
		chart:   cfg.Chart,
		router:  router,
		started: time.Now(),
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/healthz", s.handleHealth)
	api := s.router.Group("/api")
	api.GET("/series", s.handleSeries)
	api.GET("/series/csv", s.handleCSV)
}

func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", s.chart.HTML())
}

func (s *Server) handleHealth(c *gin.Context) {
	body := gin.H{
		"status": "ok",
		"run_id": s.runID,
		"symbol": s.series.Symbol,
		"rows":   s.series.Len(),
		"uptime": time.Since(s.started).Round(time.Second).String(),
	}
	if sum, ok := market.Summarize(s.series); ok {
		body["last_close"] = sum.LastClose
		body["change_pct"] = sum.ChangePct
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleSeries(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit 非法"})
		return
	}
	view := s.series
	if limit > 0 {
		view = s.series.Tail(limit)
	}
	payload, err := buildSeriesJSON(view)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, payload)
}

func (s *Server) handleCSV(c *gin.Context) {
	data, err := export.BuildCSV(s.series, export.Options{PricePrecision: export.PrecisionAuto})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	name := strings.NewReplacer("^", "", "/", "_").Replace(s.series.Symbol)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+"_daily.csv"))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(data))
}

type seriesJSON struct {
	Symbol  string   `json:"symbol"`
	Display string   `json:"display"`
	Columns []string `json:"columns"`
	Dates   []string `json:"dates"`
	// Rows 与 Dates 逐行对齐, 每行按 Columns 顺序排列, 缺口序列化成 null。
	Rows [][]*float64 `json:"rows"`
}

func buildSeriesJSON(s *market.Series) (*seriesJSON, error) {
	names := s.ColumnNames()
	cols := make([][]float64, len(names))
	for i, name := range names {
		vs, err := s.Column(name)
		if err != nil {
			return nil, err
		}
		cols[i] = vs
	}
	out := &seriesJSON{
		Symbol:  s.Symbol,
		Display: s.Display,
		Columns: names,
		Dates:   make([]string, s.Len()),
		Rows:    make([][]*float64, s.Len()),
	}
	for r := range s.Candles {
		out.Dates[r] = s.Candles[r].Date.Format("2006-01-02")
		row := make([]*float64, len(names))
		for ci, vs := range cols {
			v := vs[r]
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				val := v
				row[ci] = &val
			}
		}
		out.Rows[r] = row
	}
	return out, nil
}

// Start 启动 HTTP 服务，阻塞直到 ctx 取消或出现错误。
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	logger.Infof("[viewer] %s 监听 http://%s (run=%s)", s.series.Symbol, s.addr, s.runID)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
