package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

// Level 日志级别
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	level atomic.Int32
	std   = log.New(os.Stderr, "", log.LstdFlags)
)

func init() {
	level.Store(int32(LevelInfo))
}

// SetLevel 设置全局日志级别
func SetLevel(l Level) {
	level.Store(int32(l))
}

// ParseLevel 解析级别字符串，未识别时返回 info
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// SetOutput 重定向日志输出（测试用）
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

func logf(l Level, tag, format string, args ...any) {
	if l < Level(level.Load()) {
		return
	}
	std.Output(3, tag+" "+fmt.Sprintf(format, args...))
}

// Debugf 输出调试日志
func Debugf(format string, args ...any) { logf(LevelDebug, "[DEBUG]", format, args...) }

// Infof 输出信息日志
func Infof(format string, args ...any) { logf(LevelInfo, "[INFO]", format, args...) }

// Warnf 输出警告日志
func Warnf(format string, args ...any) { logf(LevelWarn, "[WARN]", format, args...) }

// Errorf 输出错误日志
func Errorf(format string, args ...any) { logf(LevelError, "[ERROR]", format, args...) }
