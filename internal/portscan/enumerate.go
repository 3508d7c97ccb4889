package portscan

import (
	"math"
	"net/netip"

	"go4.org/netipx"
)

// Enumerator 按主机优先的顺序惰性生成 Target：
// 先是第一个主机的全部端口，再是第二个主机，依此类推。
// 非并发安全，只由分发协程使用。
type Enumerator struct {
	hosts netipx.IPRange
	ports PortSet
	total int

	cur  netip.Addr
	idx  int
	done bool
}

// Enumerate 创建枚举器，不做任何网络操作
func Enumerate(r NetworkRange, ports PortSet) *Enumerator {
	e := &Enumerator{
		hosts: r.Hosts(),
		ports: append(PortSet(nil), ports...),
		total: mulSat(r.HostCount(), len(ports)),
	}
	e.Reset()
	return e
}

// Reset 回到序列开头，之后的 Next 会重新产出相同的序列
func (e *Enumerator) Reset() {
	e.idx = 0
	e.cur = e.hosts.From()
	e.done = !e.hosts.IsValid() || len(e.ports) == 0
}

// Total 序列总长度 = 主机数 × 端口数
func (e *Enumerator) Total() int { return e.total }

// Next 返回下一个 Target，序列结束时 ok 为 false
func (e *Enumerator) Next() (t Target, ok bool) {
	if e.done {
		return Target{}, false
	}
	t = Target{Addr: e.cur, Port: e.ports[e.idx]}

	e.idx++
	if e.idx == len(e.ports) {
		e.idx = 0
		if e.cur == e.hosts.To() {
			e.done = true
		} else {
			e.cur = e.cur.Next()
		}
	}
	return t, true
}

// All 从头展开全部 Target，只适合小网段
func (e *Enumerator) All() []Target {
	e.Reset()
	defer e.Reset()

	var out []Target
	for t, ok := e.Next(); ok; t, ok = e.Next() {
		out = append(out, t)
	}
	return out
}

func mulSat(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	if a > math.MaxInt/b {
		return math.MaxInt
	}
	return a * b
}
