// Package report 把扫描得到的开放端口记录写成 CSV 或 JSON 文件
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"NetSweepGo/internal/portscan"
)

// Format 输出格式
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// DefaultFile 未指定输出路径时的文件名
const DefaultFile = "scan_results.csv"

var ErrUnknownFormat = errors.New("unknown output format")

// Header CSV 表头
var Header = []string{"address", "port", "status"}

// ParseFormat 不区分大小写，空字符串为 CSV
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// WriteCSV 写表头和每条记录，没有记录时只有表头
func WriteCSV(w io.Writer, records []portscan.ScanRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(r.Row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON 写成缩进的 JSON 数组，没有记录时为 []
func WriteJSON(w io.Writer, records []portscan.ScanRecord) error {
	if records == nil {
		records = []portscan.ScanRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// Encode 按格式编码到内存
func Encode(f Format, records []portscan.ScanRecord) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch f {
	case FormatCSV:
		err = WriteCSV(&buf, records)
	case FormatJSON:
		err = WriteJSON(&buf, records)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save 编码后原子写入 path
func Save(path string, f Format, records []portscan.ScanRecord) error {
	data, err := Encode(f, records)
	if err != nil {
		return err
	}
	return WriteAtomic(path, data)
}
