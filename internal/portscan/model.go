package portscan

import (
	"net/netip"
	"strconv"
)

// Status 探测结果分类
type Status string

const (
	StatusOpen   Status = "open"   // 连接在超时内建立
	StatusClosed Status = "closed" // 拒绝、不可达、超时等全部归为关闭
)

// DefaultPorts 未指定端口时使用的默认端口
var DefaultPorts = PortSet{22, 3389, 5985, 5986, 445}

// PortSet 有序端口列表，每个端口都在 1-65535 之间
type PortSet []uint16

// Target 单个待探测的 (地址, 端口) 组合
type Target struct {
	Addr netip.Addr
	Port uint16
}

// String 返回 host:port 形式，IPv6 会带方括号
func (t Target) String() string {
	return netip.AddrPortFrom(t.Addr, t.Port).String()
}

// ProbeResult 单次探测结果
type ProbeResult struct {
	Addr   netip.Addr
	Port   uint16
	Status Status
}

// Open 是否为开放端口
func (r ProbeResult) Open() bool {
	return r.Status == StatusOpen
}

// ScanRecord 最终交给结果输出层的记录，只包含开放端口
type ScanRecord struct {
	Address string `json:"address"`
	Port    int    `json:"port"`
	Status  string `json:"status"`
}

// Row 按 address,port,status 的列顺序返回字段
func (r ScanRecord) Row() []string {
	return []string{r.Address, strconv.Itoa(r.Port), r.Status}
}

func newRecord(r ProbeResult) ScanRecord {
	return ScanRecord{
		Address: r.Addr.String(),
		Port:    int(r.Port),
		Status:  string(r.Status),
	}
}
