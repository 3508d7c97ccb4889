package portscan

import (
	"context"
	"net"
	"time"
)

// DefaultTimeout 单次连接超时
const DefaultTimeout = time.Second

// Dialer 建立 TCP 连接，*net.Dialer 满足该接口
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

func newDialer(timeout time.Duration) *net.Dialer {
	return &net.Dialer{
		Timeout:   timeout,
		KeepAlive: -1, // 扫描不需要保持连接
	}
}

// Probe 对单个 Target 发起一次 TCP 连接。
// 超时内连上即为开放，连接立即关闭；其余任何情况都是关闭，不重试。
func Probe(ctx context.Context, d Dialer, t Target, timeout time.Duration) ProbeResult {
	res, _ := probe(ctx, d, t, timeout)
	return res
}

// probe 额外返回连接错误，只用于调试日志
func probe(ctx context.Context, d Dialer, t Target, timeout time.Duration) (ProbeResult, error) {
	res := ProbeResult{Addr: t.Addr, Port: t.Port, Status: StatusClosed}

	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := d.DialContext(dctx, "tcp", t.String())
	if err != nil {
		return res, err
	}
	if conn != nil {
		_ = conn.Close()
	}
	res.Status = StatusOpen
	return res, nil
}
