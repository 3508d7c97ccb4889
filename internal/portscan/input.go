package portscan

import (
	"errors"
	"fmt"
	"math"
	"net/netip"
	"strconv"
	"strings"

	"go4.org/netipx"
)

var (
	ErrInvalidRange = errors.New("invalid network range")
	ErrInvalidPort  = errors.New("invalid port")
)

// NetworkRange 已校验的网段，内部总是保存掩码后的前缀
type NetworkRange struct {
	prefix netip.Prefix
}

// ParseRange 解析 CIDR 网段，单个地址视为 /32 或 /128。
// 主机位不为 0 的写法(如 192.168.1.5/24)视为非法。
func ParseRange(s string) (NetworkRange, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NetworkRange{}, fmt.Errorf("%w: empty", ErrInvalidRange)
	}

	if !strings.Contains(s, "/") {
		addr, err := netip.ParseAddr(s)
		if err != nil || addr.Zone() != "" {
			return NetworkRange{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
		}
		return NetworkRange{prefix: netip.PrefixFrom(addr, addr.BitLen())}, nil
	}

	prefix, err := netip.ParsePrefix(s)
	if err != nil {
		return NetworkRange{}, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	if prefix.Masked() != prefix {
		return NetworkRange{}, fmt.Errorf("%w: %s has host bits set", ErrInvalidRange, s)
	}
	return NetworkRange{prefix: prefix}, nil
}

// MustParseRange 用于测试和常量
func MustParseRange(s string) NetworkRange {
	r, err := ParseRange(s)
	if err != nil {
		panic(err)
	}
	return r
}

func (r NetworkRange) Prefix() netip.Prefix { return r.prefix }

func (r NetworkRange) String() string { return r.prefix.String() }

func (r NetworkRange) hostBits() int {
	return r.prefix.Addr().BitLen() - r.prefix.Bits()
}

// Hosts 返回可用主机地址区间。
// IPv4 去掉网络地址和广播地址，IPv6 去掉子网路由器任播地址；/31、/127 两个地址都可用。
func (r NetworkRange) Hosts() netipx.IPRange {
	if !r.prefix.IsValid() {
		return netipx.IPRange{}
	}
	first := r.prefix.Addr()
	last := netipx.PrefixLastIP(r.prefix)
	if r.hostBits() > 1 {
		first = first.Next()
		if first.Is4() {
			last = last.Prev()
		}
	}
	return netipx.IPRangeFrom(first, last)
}

// HostCount 可用主机数量，超出 int 范围时取 math.MaxInt
func (r NetworkRange) HostCount() int {
	if !r.prefix.IsValid() {
		return 0
	}
	hb := r.hostBits()
	switch {
	case hb == 0:
		return 1
	case hb == 1:
		return 2
	case hb >= 63:
		return math.MaxInt
	}
	n := 1 << hb
	if r.prefix.Addr().Is4() {
		return n - 2
	}
	return n - 1
}

// ParsePorts 解析逗号分隔的端口列表，保持输入顺序；空字符串返回默认端口
func ParsePorts(s string) (PortSet, error) {
	if strings.TrimSpace(s) == "" {
		return append(PortSet(nil), DefaultPorts...), nil
	}

	parts := strings.Split(s, ",")
	ports := make(PortSet, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidPort, p)
		}
		if n < 1 || n > 65535 {
			return nil, fmt.Errorf("%w: %d out of range 1-65535", ErrInvalidPort, n)
		}
		ports = append(ports, uint16(n))
	}
	return ports, nil
}

// String 以逗号连接端口，和 ParsePorts 互逆
func (ps PortSet) String() string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = strconv.Itoa(int(p))
	}
	return strings.Join(parts, ",")
}
