package portscan

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// LineRenderer 单行 \r 覆盖式状态行，用于非终端输出
type LineRenderer struct {
	w io.Writer
}

func NewLineRenderer(w io.Writer) *LineRenderer {
	return &LineRenderer{w: w}
}

func (l *LineRenderer) Render(completed, total int, eta time.Duration) {
	fmt.Fprintf(l.w, "\r已扫描 %d/%d | 预计剩余: %s | 按 Enter 刷新状态...", completed, total, FormatETA(eta))
}

func (l *LineRenderer) Finish() {
	fmt.Fprintln(l.w)
}

// BarRenderer 终端下使用进度条，剩余时间放在描述里
type BarRenderer struct {
	w   io.Writer
	bar *progressbar.ProgressBar
	max int
}

func NewBarRenderer(w io.Writer, total int) *BarRenderer {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false), // 用自己的 ETA
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription("[cyan][扫描中][reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &BarRenderer{w: w, bar: bar, max: total}
}

func (b *BarRenderer) Render(completed, total int, eta time.Duration) {
	if total != b.max {
		b.bar.ChangeMax(total)
		b.max = total
	}
	b.bar.Describe(fmt.Sprintf("[cyan][扫描中][reset] 剩余 %s", FormatETA(eta)))
	_ = b.bar.Set(completed)
}

func (b *BarRenderer) Finish() {
	_ = b.bar.Finish()
	fmt.Fprintln(b.w)
}

// NewRenderer 终端用进度条，否则用纯文本状态行
func NewRenderer(f *os.File, total int) Renderer {
	if IsTerminal(f) {
		return NewBarRenderer(f, total)
	}
	return NewLineRenderer(f)
}

// IsTerminal 判断 f 是否连接到终端 (含 Cygwin/MSYS 终端)
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
