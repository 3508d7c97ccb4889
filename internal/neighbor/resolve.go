package neighbor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/netip"
	"time"

	"github.com/google/gopacket/pcap"
	"golang.org/x/sync/errgroup"
)

// readTimeout pcap 单次读超时，用来周期性检查 ctx
const readTimeout = 100 * time.Millisecond

// Resolve 在 ifaceName 上为 addrs 中的 IPv4 地址发送 ARP 请求，
// 在 wait 时间内收集应答。返回已解析到的部分，IPv6 地址直接跳过。
func Resolve(ctx context.Context, ifaceName string, addrs []netip.Addr, wait time.Duration, logger *slog.Logger) (map[netip.Addr]net.HardwareAddr, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	found := make(map[netip.Addr]net.HardwareAddr)

	want := make(map[netip.Addr]struct{})
	for _, a := range addrs {
		if a.Is4() {
			want[a] = struct{}{}
		}
	}
	if len(want) == 0 {
		return found, nil
	}

	iface, err := net.InterfaceByName(ifaceName)
	if err != nil {
		return found, fmt.Errorf("interface %s: %w", ifaceName, err)
	}
	srcIP, err := interfaceIPv4(iface)
	if err != nil {
		return found, fmt.Errorf("interface %s: %w", ifaceName, err)
	}

	handle, err := pcap.OpenLive(ifaceName, 65536, true, readTimeout)
	if err != nil {
		return found, fmt.Errorf("pcap open %s (try sudo): %w", ifaceName, err)
	}
	defer handle.Close()
	if err := handle.SetBPFFilter("arp"); err != nil {
		logger.Warn("bpf filter not applied", "interface", ifaceName, "error", err)
	}

	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	// 发送
	g.Go(func() error {
		for a := range want {
			frame, err := buildRequest(iface.HardwareAddr, srcIP, a)
			if err != nil {
				return fmt.Errorf("build arp request for %s: %w", a, err)
			}
			if err := handle.WritePacketData(frame); err != nil {
				return fmt.Errorf("send arp request for %s: %w", a, err)
			}
		}
		return nil
	})

	// 接收，found 只在这个协程里写，Wait 之后才读
	g.Go(func() error {
		for gctx.Err() == nil {
			data, _, err := handle.ReadPacketData()
			if err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				continue
			}
			ip, mac, ok := parseReply(data)
			if !ok || isBroadcastMAC(mac) {
				continue
			}
			if _, wanted := want[ip]; !wanted {
				continue
			}
			found[ip] = mac
			logger.Debug("arp reply", "addr", ip, "mac", mac)
			if len(found) == len(want) {
				cancel()
				return nil
			}
		}
		return nil
	})

	err = g.Wait()
	return found, err
}
