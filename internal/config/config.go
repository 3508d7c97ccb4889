package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"NetSweepGo/internal/portscan"
	"NetSweepGo/internal/report"
)

// Config 命令行运行所需的全部配置
type Config struct {
	Subnet       string
	Ports        string
	Workers      int
	Timeout      time.Duration
	Output       string
	Format       string
	ARPInterface string
	ARPWait      time.Duration
	Verbose      bool
}

var ErrInvalidConfig = errors.New("invalid configuration")

// Default 默认值
func Default() *Config {
	return &Config{
		Workers: portscan.DefaultConcurrency,
		Timeout: portscan.DefaultTimeout,
		Output:  report.DefaultFile,
		Format:  string(report.FormatCSV),
		ARPWait: 2 * time.Second,
	}
}

// LoadEnv 读取可选的 .env 文件，再用 NETSWEEP_* 环境变量覆盖默认值。
// 已存在的环境变量不会被 .env 覆盖。
func LoadEnv(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := Default()
	cfg.Subnet = getEnv("NETSWEEP_SUBNET", cfg.Subnet)
	cfg.Ports = getEnv("NETSWEEP_PORTS", cfg.Ports)
	cfg.Workers = getEnvInt("NETSWEEP_WORKERS", cfg.Workers)
	cfg.Timeout = time.Duration(getEnvInt("NETSWEEP_TIMEOUT_MS", int(cfg.Timeout/time.Millisecond))) * time.Millisecond
	cfg.Output = getEnv("NETSWEEP_OUTPUT", cfg.Output)
	cfg.Format = getEnv("NETSWEEP_FORMAT", cfg.Format)
	cfg.ARPInterface = getEnv("NETSWEEP_ARP_IFACE", cfg.ARPInterface)
	cfg.Verbose = getEnvBool("NETSWEEP_VERBOSE", cfg.Verbose)
	return cfg, nil
}

// BindFlags 把 cfg 的当前值作为默认值注册到 fs，解析后直接写回 cfg
func (cfg *Config) BindFlags(fs *flag.FlagSet) {
	fs.StringVar(&cfg.Subnet, "subnet", cfg.Subnet, "目标网段，例如 192.168.1.0/24 (为空时交互输入)")
	fs.StringVar(&cfg.Ports, "p", cfg.Ports, "端口列表，逗号分隔 (默认 22,3389,5985,5986,445)")
	fs.IntVar(&cfg.Workers, "t", cfg.Workers, "并发数")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "单次连接超时")
	fs.StringVar(&cfg.Output, "o", cfg.Output, "结果文件路径")
	fs.StringVar(&cfg.Format, "format", cfg.Format, "结果文件格式 csv|json")
	fs.StringVar(&cfg.ARPInterface, "arp-iface", cfg.ARPInterface, "扫描结束后在该网卡上用 ARP 查询开放主机的 MAC (需 root)")
	fs.DurationVar(&cfg.ARPWait, "arp-wait", cfg.ARPWait, "等待 ARP 应答的时间")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "输出调试日志")
}

// Validate 只检查与网段/端口无关的字段，网段和端口由 portscan 解析
func (cfg *Config) Validate() error {
	if cfg.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidConfig, cfg.Workers)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidConfig, cfg.Timeout)
	}
	if _, err := report.ParseFormat(cfg.Format); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if strings.TrimSpace(cfg.Output) == "" {
		return fmt.Errorf("%w: output path is empty", ErrInvalidConfig)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
