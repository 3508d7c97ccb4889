package logging

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	mu     sync.Mutex
	logger *slog.Logger
)

// Configure 初始化全局 logger。诊断日志走 stderr 的文本格式，
// 默认只输出 Warn 以上，避免打乱进度行。可以重复调用以调整级别。
func Configure(w io.Writer, level slog.Level) *slog.Logger {
	mu.Lock()
	defer mu.Unlock()

	if w == nil {
		w = os.Stderr
	}
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return logger
}

// Logger 返回全局 logger，未配置时按默认值配置
func Logger() *slog.Logger {
	mu.Lock()
	l := logger
	mu.Unlock()
	if l == nil {
		return Configure(os.Stderr, slog.LevelWarn)
	}
	return l
}

// Level 由 verbose 开关得到日志级别
func Level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}
