package portscan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
)

// DefaultConcurrency 默认并发数
const DefaultConcurrency = 100

var (
	ErrInvalidConcurrency = errors.New("concurrency must be at least 1")
	ErrInvalidTimeout     = errors.New("timeout must be positive")
)

// Scanner 扫描引擎：固定大小的协程池 + 单个结果汇总协程
type Scanner struct {
	Timeout     time.Duration
	Concurrency int

	dialer   Dialer
	progress func(Snapshot)
	logger   *slog.Logger
}

// Option 配置 Scanner
type Option func(*Scanner)

func WithConcurrency(n int) Option {
	return func(s *Scanner) { s.Concurrency = n }
}

func WithTimeout(d time.Duration) Option {
	return func(s *Scanner) { s.Timeout = d }
}

// WithDialer 替换默认的 net.Dialer，测试中用来模拟各种连接结果
func WithDialer(d Dialer) Option {
	return func(s *Scanner) { s.dialer = d }
}

// WithProgress 每完成一个 Target 回调一次，回调在汇总协程中串行执行
func WithProgress(fn func(Snapshot)) Option {
	return func(s *Scanner) { s.progress = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Scanner) { s.logger = l }
}

// NewScanner 创建扫描器。配置错误在这里一次性返回，扫描开始后不会再出现。
func NewScanner(opts ...Option) (*Scanner, error) {
	s := &Scanner{
		Timeout:     DefaultTimeout,
		Concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.Concurrency < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidConcurrency, s.Concurrency)
	}
	if s.Timeout <= 0 {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidTimeout, s.Timeout)
	}
	if s.dialer == nil {
		s.dialer = newDialer(s.Timeout)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s, nil
}

// Stream 启动异步流式扫描，按完成顺序(而非提交顺序)返回每个 Target 的结果。
// 所有已分发的 Target 都有结果后通道关闭；调用方必须读完通道。
// ctx 取消后停止分发，已在进行中的探测仍会返回结果。
func (s *Scanner) Stream(ctx context.Context, r NetworkRange, ports PortSet) <-chan ProbeResult {
	results := make(chan ProbeResult, s.Concurrency)
	enum := Enumerate(r, ports)

	go func() {
		defer close(results)

		var wg sync.WaitGroup
		pool, err := ants.NewPoolWithFunc(s.Concurrency, func(arg interface{}) {
			defer wg.Done()
			results <- s.safeProbe(ctx, arg.(Target))
		})
		if err != nil {
			s.logger.Error("worker pool init failed", "concurrency", s.Concurrency, "error", err)
			return
		}
		defer pool.Release()

		for t, ok := enum.Next(); ok; t, ok = enum.Next() {
			if ctx.Err() != nil {
				s.logger.Info("dispatch stopped", "reason", ctx.Err())
				break
			}
			wg.Add(1)
			// 池满时 Invoke 阻塞，直到有空闲 worker
			if err := pool.Invoke(t); err != nil {
				wg.Done()
				s.logger.Error("dispatch failed", "target", t.String(), "error", err)
				break
			}
		}

		wg.Wait()
	}()

	return results
}

// safeProbe 单个探测中的 panic 不影响其它 worker，结果记为关闭
func (s *Scanner) safeProbe(ctx context.Context, t Target) (res ProbeResult) {
	res = ProbeResult{Addr: t.Addr, Port: t.Port, Status: StatusClosed}
	defer func() {
		if p := recover(); p != nil {
			s.logger.Warn("probe panicked", "target", t.String(), "panic", p)
		}
	}()

	r, err := probe(ctx, s.dialer, t, s.Timeout)
	if err != nil {
		s.logger.Debug("probe closed", "target", t.String(), "error", err)
	}
	return r
}

// Scan 扫描 r 中所有主机的 ports，返回开放端口记录(按完成顺序)。
// 每完成一个 Target 发出一次进度快照。ctx 被取消时返回已收集的记录和 ctx.Err()。
func (s *Scanner) Scan(ctx context.Context, r NetworkRange, ports PortSet) ([]ScanRecord, error) {
	total := mulSat(r.HostCount(), len(ports))
	s.logger.Info("scan started",
		"range", r.String(),
		"ports", ports.String(),
		"total", total,
		"concurrency", s.Concurrency,
		"timeout", s.Timeout)

	start := time.Now()
	records := make([]ScanRecord, 0)
	completed := 0

	for res := range s.Stream(ctx, r, ports) {
		completed++
		if res.Open() {
			records = append(records, newRecord(res))
		}
		if s.progress != nil {
			s.progress(Snapshot{Completed: completed, Total: total, Elapsed: time.Since(start)})
		}
	}

	s.logger.Info("scan finished",
		"completed", completed,
		"open", len(records),
		"elapsed", time.Since(start))

	if err := ctx.Err(); err != nil {
		return records, err
	}
	return records, nil
}
