package portscan

import (
	"net/netip"
	"reflect"
	"testing"
)

func TestEnumerate_HostMajorOrder(t *testing.T) {
	e := Enumerate(MustParseRange("10.0.0.0/30"), PortSet{80, 443})

	want := []string{"10.0.0.1:80", "10.0.0.1:443", "10.0.0.2:80", "10.0.0.2:443"}
	var got []string
	for tgt, ok := e.Next(); ok; tgt, ok = e.Next() {
		got = append(got, tgt.String())
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if e.Total() != len(want) {
		t.Fatalf("Total() = %d, want %d", e.Total(), len(want))
	}

	// 结束后继续调用仍然返回 false
	if _, ok := e.Next(); ok {
		t.Fatal("Next() after end should return false")
	}
}

func TestEnumerate_CountMatchesHostsTimesPorts(t *testing.T) {
	tests := []struct {
		rng   string
		ports PortSet
		want  int
	}{
		{"192.168.1.0/24", DefaultPorts, 254 * 5},
		{"10.0.0.0/31", PortSet{22}, 2},
		{"10.0.0.9/32", PortSet{22}, 1},
		{"2001:db8::/125", PortSet{22, 80}, 7 * 2},
	}
	for _, tt := range tests {
		t.Run(tt.rng, func(t *testing.T) {
			e := Enumerate(MustParseRange(tt.rng), tt.ports)
			if got := len(e.All()); got != tt.want {
				t.Fatalf("len(All()) = %d, want %d", got, tt.want)
			}
			if e.Total() != tt.want {
				t.Fatalf("Total() = %d, want %d", e.Total(), tt.want)
			}
		})
	}
}

func TestEnumerate_SingleHostSinglePort(t *testing.T) {
	items := Enumerate(MustParseRange("10.0.0.9/32"), PortSet{22}).All()
	want := []Target{{Addr: netip.MustParseAddr("10.0.0.9"), Port: 22}}
	if !reflect.DeepEqual(items, want) {
		t.Fatalf("got %v want %v", items, want)
	}
}

func TestEnumerate_Empty(t *testing.T) {
	tests := []struct {
		name  string
		rng   NetworkRange
		ports PortSet
	}{
		{"no usable hosts", NetworkRange{}, PortSet{22}},
		{"no ports", MustParseRange("10.0.0.0/30"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Enumerate(tt.rng, tt.ports)
			if _, ok := e.Next(); ok {
				t.Fatal("expected empty sequence")
			}
			if e.Total() != 0 {
				t.Fatalf("Total() = %d, want 0", e.Total())
			}
		})
	}
}

func TestEnumerate_Restartable(t *testing.T) {
	rng := MustParseRange("172.16.0.0/28")
	ports := PortSet{22, 445, 3389}

	e := Enumerate(rng, ports)
	first := e.All()
	second := e.All()
	if !reflect.DeepEqual(first, second) {
		t.Fatal("All() twice on the same enumerator gave different sequences")
	}

	// 中途 Reset 从头开始
	e.Next()
	e.Next()
	e.Reset()
	if tgt, _ := e.Next(); tgt != first[0] {
		t.Fatalf("after Reset got %v, want %v", tgt, first[0])
	}

	other := Enumerate(rng, ports).All()
	if !reflect.DeepEqual(first, other) {
		t.Fatal("two enumerators over the same input differ")
	}
}

func TestEnumerate_PortsAreCopied(t *testing.T) {
	ports := PortSet{22, 80}
	e := Enumerate(MustParseRange("10.0.0.9/32"), ports)
	ports[0] = 9999
	if tgt, _ := e.Next(); tgt.Port != 22 {
		t.Fatalf("enumerator saw caller mutation: port %d", tgt.Port)
	}
}
