package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/netip"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"syscall"
	"time"

	"github.com/fatih/color"

	"NetSweepGo/internal/config"
	"NetSweepGo/internal/logging"
	"NetSweepGo/internal/neighbor"
	"NetSweepGo/internal/portscan"
	"NetSweepGo/internal/prompt"
	"NetSweepGo/internal/report"
)

const (
	exitOK          = 0
	exitIO          = 1
	exitConfig      = 2
	exitInterrupted = 130
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadEnv()
	if err != nil {
		color.Red("[-]%v", err)
		return exitConfig
	}
	cfg.BindFlags(flag.CommandLine)
	flag.Parse()
	if cfg.Subnet == "" && flag.NArg() > 0 {
		cfg.Subnet = flag.Arg(0)
	}

	logger := logging.Configure(os.Stderr, logging.Level(cfg.Verbose))

	if err := cfg.Validate(); err != nil {
		color.Red("[-]%v", err)
		return exitConfig
	}
	format, _ := report.ParseFormat(cfg.Format)

	// 交互输入和进度刷新共用同一个 stdin reader
	stdin := bufio.NewReader(os.Stdin)

	var (
		rng     portscan.NetworkRange
		ports   portscan.PortSet
		workers = cfg.Workers
	)
	if cfg.Subnet == "" {
		p := prompt.New(stdin, os.Stdout)
		if rng, err = p.Range(); err == nil {
			if ports, err = p.Ports(); err == nil {
				workers, err = p.Workers(cfg.Workers)
			}
		}
		if err != nil {
			color.Red("\n[-]读取输入失败: %v", err)
			return exitConfig
		}
	} else {
		if rng, err = portscan.ParseRange(cfg.Subnet); err != nil {
			color.Red("[-]%v", err)
			return exitConfig
		}
		if ports, err = portscan.ParsePorts(cfg.Ports); err != nil {
			color.Red("[-]%v", err)
			return exitConfig
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	total := portscan.Enumerate(rng, ports).Total()
	reporter := portscan.NewReporter(portscan.NewRenderer(os.Stderr, total), total)

	scanner, err := portscan.NewScanner(
		portscan.WithConcurrency(workers),
		portscan.WithTimeout(cfg.Timeout),
		portscan.WithProgress(reporter.Update),
		portscan.WithLogger(logger),
	)
	if err != nil {
		color.Red("[-]%v", err)
		return exitConfig
	}

	color.Cyan("--- 开始扫描 %s [端口 %s] ---", rng, ports)
	color.Cyan("--- 主机: %d | 任务: %d | 并发数: %d | 超时: %s ---", rng.HostCount(), total, workers, cfg.Timeout)

	listenCtx, cancelListen := context.WithCancel(ctx)
	go func() {
		if err := reporter.ListenRefresh(listenCtx, stdin); err != nil {
			logger.Debug("refresh listener stopped", "error", err)
		}
	}()

	start := time.Now()
	records, scanErr := scanner.Scan(ctx, rng, ports)
	cancelListen()
	reporter.Finish()

	interrupted := errors.Is(scanErr, context.Canceled)
	if interrupted {
		color.Yellow("[!]扫描被中断，保存已完成部分的结果")
	}

	var macs map[netip.Addr]net.HardwareAddr
	if cfg.ARPInterface != "" && len(records) > 0 && !interrupted {
		macs, err = neighbor.Resolve(context.Background(), cfg.ARPInterface, openHosts(records), cfg.ARPWait, logger)
		if err != nil {
			color.Red("[-]ARP 查询失败: %v", err)
		}
	}

	printSummary(records, macs)
	fmt.Println("============================")
	color.Cyan("[+]扫描完成! 耗时: %s | 开放端口: %d", time.Since(start).Round(time.Millisecond), len(records))

	if err := report.Save(cfg.Output, format, records); err != nil {
		color.Red("[-]保存结果失败: %v", err)
		return exitIO
	}
	color.Green("[+]扫描结果已保存到文件: %s", cfg.Output)

	if interrupted {
		return exitInterrupted
	}
	return exitOK
}

// printSummary 按地址、端口排序后打印，不改变写入文件的顺序
func printSummary(records []portscan.ScanRecord, macs map[netip.Addr]net.HardwareAddr) {
	sorted := slices.Clone(records)
	slices.SortFunc(sorted, func(a, b portscan.ScanRecord) int {
		if c := netip.MustParseAddr(a.Address).Compare(netip.MustParseAddr(b.Address)); c != 0 {
			return c
		}
		return a.Port - b.Port
	})

	for _, r := range sorted {
		if mac, ok := macs[netip.MustParseAddr(r.Address)]; ok {
			color.Green("[+]%s Open! (%s)", hostPort(r), mac)
			continue
		}
		color.Green("[+]%s Open!", hostPort(r))
	}
}

func hostPort(r portscan.ScanRecord) string {
	return net.JoinHostPort(r.Address, strconv.Itoa(r.Port))
}

func openHosts(records []portscan.ScanRecord) []netip.Addr {
	seen := make(map[netip.Addr]struct{})
	var out []netip.Addr
	for _, r := range records {
		a, err := netip.ParseAddr(r.Address)
		if err != nil {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
