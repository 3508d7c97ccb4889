package portscan

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// Snapshot 某一时刻的扫描进度
type Snapshot struct {
	Completed int
	Total     int
	Elapsed   time.Duration
}

// ETA 按已完成项的平均耗时线性外推剩余时间，未完成任何项时为 0
func (s Snapshot) ETA() time.Duration {
	if s.Completed <= 0 || s.Total <= s.Completed {
		return 0
	}
	per := float64(s.Elapsed) / float64(s.Completed)
	return time.Duration(per * float64(s.Total-s.Completed))
}

// FormatETA 格式化为 HH:MM:SS，小时数可以超过 24
func FormatETA(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
}

// Renderer 负责把进度画到终端上，调用方保证串行调用
type Renderer interface {
	Render(completed, total int, eta time.Duration)
	Finish()
}

// Reporter 进度状态 + 渲染。
// 两个来源会并发触发渲染：扫描完成事件(Update)和用户手动刷新(Refresh)，
// 所有渲染都在同一把锁内进行。
type Reporter struct {
	mu        sync.Mutex
	r         Renderer
	completed int
	total     int
	finished  bool
}

func NewReporter(r Renderer, total int) *Reporter {
	return &Reporter{r: r, total: total}
}

// Update 扫描引擎每完成一项调用一次
func (p *Reporter) Update(s Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.completed = s.Completed
	p.total = s.Total
	if p.finished {
		return
	}
	p.r.Render(s.Completed, s.Total, s.ETA())
}

// Refresh 用最近一次的计数强制重绘。
// 这条路径拿不到真实的耗时，剩余时间按 0 显示。
func (p *Reporter) Refresh() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.finished {
		return
	}
	p.r.Render(p.completed, p.total, 0)
}

// Finish 结束进度行，之后的 Update/Refresh 不再输出
func (p *Reporter) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.finished {
		return
	}
	p.finished = true
	p.r.Finish()
}

// Counts 返回最近一次记录的 completed/total
func (p *Reporter) Counts() (completed, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.completed, p.total
}

// ListenRefresh 从 in 按行读取，每读到一行刷新一次进度。
// 读到 EOF、读出错或 ctx 结束时返回；阻塞中的读操作不会被打断，
// 读协程随进程退出。
func (p *Reporter) ListenRefresh(ctx context.Context, in io.Reader) error {
	lines := make(chan struct{})
	errc := make(chan error, 1)

	go func() {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
		errc <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errc:
			return err
		case <-lines:
			p.Refresh()
		}
	}
}
