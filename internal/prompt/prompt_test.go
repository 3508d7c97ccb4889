package prompt

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"NetSweepGo/internal/portscan"
)

func newPrompter(input string) (*Prompter, *bytes.Buffer) {
	var out bytes.Buffer
	return New(bufio.NewReader(strings.NewReader(input)), &out), &out
}

func TestRange_RepromptsUntilValid(t *testing.T) {
	p, out := newPrompter("not-a-subnet\n10.0.0.1/24\n10.0.0.0/30\n")

	r, err := p.Range()
	if err != nil {
		t.Fatalf("Range: %v", err)
	}
	if r.String() != "10.0.0.0/30" {
		t.Fatalf("got %s, want 10.0.0.0/30", r)
	}
	if n := strings.Count(out.String(), "网段格式错误"); n != 2 {
		t.Fatalf("got %d error messages, want 2:\n%s", n, out.String())
	}
}

func TestRange_LastLineWithoutNewline(t *testing.T) {
	p, _ := newPrompter("192.168.1.0/24")
	r, err := p.Range()
	if err != nil {
		t.Fatalf("Range: %v", err)
	}
	if r.HostCount() != 254 {
		t.Fatalf("HostCount = %d, want 254", r.HostCount())
	}
}

func TestRange_EOF(t *testing.T) {
	p, _ := newPrompter("bad\n")
	if _, err := p.Range(); !errors.Is(err, io.EOF) {
		t.Fatalf("err = %v, want io.EOF", err)
	}
}

func TestPorts(t *testing.T) {
	p, out := newPrompter("\n")
	ports, err := p.Ports()
	if err != nil {
		t.Fatalf("Ports: %v", err)
	}
	if !reflect.DeepEqual(ports, portscan.DefaultPorts) {
		t.Fatalf("got %v, want defaults %v", ports, portscan.DefaultPorts)
	}
	if !strings.Contains(out.String(), "22,3389,5985,5986,445") {
		t.Fatalf("question should list the defaults: %q", out.String())
	}

	p, out = newPrompter("80,70000\n0\n 80 , 443 \n")
	ports, err = p.Ports()
	if err != nil {
		t.Fatalf("Ports: %v", err)
	}
	if !reflect.DeepEqual(ports, portscan.PortSet{80, 443}) {
		t.Fatalf("got %v, want [80 443]", ports)
	}
	if n := strings.Count(out.String(), "端口格式错误"); n != 2 {
		t.Fatalf("got %d error messages, want 2", n)
	}
}

func TestWorkers(t *testing.T) {
	p, _ := newPrompter("\n")
	n, err := p.Workers(100)
	if err != nil || n != 100 {
		t.Fatalf("Workers = %d, %v; want default 100", n, err)
	}

	p, out := newPrompter("abc\n-3\n0\n16\n")
	n, err = p.Workers(100)
	if err != nil || n != 16 {
		t.Fatalf("Workers = %d, %v; want 16", n, err)
	}
	if c := strings.Count(out.String(), "请输入正整数"); c != 3 {
		t.Fatalf("got %d error messages, want 3", c)
	}
}

func TestParseWorkers(t *testing.T) {
	tests := []struct {
		in   string
		want int
		err  bool
	}{
		{"", 100, false},
		{"  ", 100, false},
		{"1", 1, false},
		{" 250 ", 250, false},
		{"0", 0, true},
		{"-1", 0, true},
		{"1.5", 0, true},
		{"ten", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseWorkers(tt.in, 100)
		if tt.err {
			if !errors.Is(err, ErrInvalidWorkers) {
				t.Errorf("ParseWorkers(%q) err = %v, want ErrInvalidWorkers", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseWorkers(%q) = %d, %v; want %d", tt.in, got, err, tt.want)
		}
	}
}

func TestSharedReaderKeepsRemainingInput(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("10.0.0.0/30\n\n\nrest\n"))
	p := New(in, io.Discard)

	if _, err := p.Range(); err != nil {
		t.Fatalf("Range: %v", err)
	}
	if _, err := p.Ports(); err != nil {
		t.Fatalf("Ports: %v", err)
	}
	if _, err := p.Workers(10); err != nil {
		t.Fatalf("Workers: %v", err)
	}
	line, _ := in.ReadString('\n')
	if line != "rest\n" {
		t.Fatalf("remaining input = %q, want \"rest\\n\"", line)
	}
}
