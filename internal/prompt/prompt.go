// Package prompt 交互式读取网段、端口和并发数，输入非法时提示后重新询问
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"NetSweepGo/internal/portscan"
)

var ErrInvalidWorkers = errors.New("worker count must be a positive integer")

// Prompter 从 in 读取回答，把问题和错误提示写到 out。
// 扫描开始后 in 会交给进度刷新监听继续使用，所以必须共用同一个 bufio.Reader。
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func New(in *bufio.Reader, out io.Writer) *Prompter {
	return &Prompter{in: in, out: out}
}

// Range 询问目标网段
func (p *Prompter) Range() (portscan.NetworkRange, error) {
	for {
		line, err := p.ask("请输入网段 (例如 192.168.1.0/24): ")
		if err != nil {
			return portscan.NetworkRange{}, err
		}
		r, perr := portscan.ParseRange(line)
		if perr == nil {
			return r, nil
		}
		fmt.Fprintln(p.out, "网段格式错误，请重新输入。")
	}
}

// Ports 询问端口列表，直接回车使用默认端口
func (p *Prompter) Ports() (portscan.PortSet, error) {
	for {
		line, err := p.ask(fmt.Sprintf("请输入端口，逗号分隔 (直接回车使用默认端口 %s): ", portscan.DefaultPorts))
		if err != nil {
			return nil, err
		}
		ports, perr := portscan.ParsePorts(line)
		if perr == nil {
			return ports, nil
		}
		fmt.Fprintln(p.out, "端口格式错误，端口必须在 1 到 65535 之间。")
	}
}

// Workers 询问并发数，直接回车使用 def
func (p *Prompter) Workers(def int) (int, error) {
	for {
		line, err := p.ask(fmt.Sprintf("请输入并发数 (默认 %d): ", def))
		if err != nil {
			return 0, err
		}
		n, perr := ParseWorkers(line, def)
		if perr == nil {
			return n, nil
		}
		fmt.Fprintln(p.out, "请输入正整数。")
	}
}

// ParseWorkers 空字符串返回 def，其余必须是 >= 1 的整数
func ParseWorkers(s string, def int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidWorkers, s)
	}
	return n, nil
}

// ask 读取一行；最后一行没有换行符也接受，输入结束时返回 io.EOF
func (p *Prompter) ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
