// Package neighbor 通过 ARP 查询同一局域网内主机的 MAC 地址。
// 只适用于 IPv4 且目标与本机在同一二层网络，需要抓包权限。
package neighbor

import (
	"bytes"
	"errors"
	"net"
	"net/netip"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

var ErrNoIPv4 = errors.New("interface has no IPv4 address")

var broadcastMAC = net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

// buildRequest 构造一个广播 ARP 请求帧
func buildRequest(srcMAC net.HardwareAddr, srcIP, dstIP netip.Addr) ([]byte, error) {
	src4, dst4 := srcIP.As4(), dstIP.As4()

	eth := layers.Ethernet{
		SrcMAC:       srcMAC,
		DstMAC:       broadcastMAC,
		EthernetType: layers.EthernetTypeARP,
	}
	arp := layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         layers.ARPRequest,
		SourceHwAddress:   []byte(srcMAC),
		SourceProtAddress: src4[:],
		DstHwAddress:      []byte{0, 0, 0, 0, 0, 0},
		DstProtAddress:    dst4[:],
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, &eth, &arp); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// parseReply 从以太网帧中解析 ARP 应答，返回发送方的 IP 和 MAC
func parseReply(data []byte) (netip.Addr, net.HardwareAddr, bool) {
	packet := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Default)
	arpLayer := packet.Layer(layers.LayerTypeARP)
	if arpLayer == nil {
		return netip.Addr{}, nil, false
	}
	arp := arpLayer.(*layers.ARP)
	if arp.Operation != layers.ARPReply {
		return netip.Addr{}, nil, false
	}
	ip, ok := netip.AddrFromSlice(arp.SourceProtAddress)
	if !ok {
		return netip.Addr{}, nil, false
	}
	mac := make(net.HardwareAddr, len(arp.SourceHwAddress))
	copy(mac, arp.SourceHwAddress)
	return ip.Unmap(), mac, true
}

// interfaceIPv4 取网卡上第一个非回环 IPv4 地址
func interfaceIPv4(iface *net.Interface) (netip.Addr, error) {
	addrs, err := iface.Addrs()
	if err != nil {
		return netip.Addr{}, err
	}
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipnet.IP.To4(); ip4 != nil {
			addr, _ := netip.AddrFromSlice(ip4)
			return addr, nil
		}
	}
	return netip.Addr{}, ErrNoIPv4
}

// isBroadcastMAC ARP 应答里不应出现广播地址
func isBroadcastMAC(mac net.HardwareAddr) bool {
	return bytes.Equal(mac, broadcastMAC)
}
