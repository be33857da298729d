package sysstat

import (
	"os"
	"testing"
)

func TestSystemMemory(t *testing.T) {
	m, err := System{}.Memory()
	if err != nil {
		t.Skipf("memory stats unavailable: %v", err)
	}
	if m.Total == 0 {
		t.Fatal("expected non-zero total memory")
	}
	if m.Used > m.Total {
		t.Fatalf("used %d exceeds total %d", m.Used, m.Total)
	}
}

func TestSystemProcessesIncludesSelf(t *testing.T) {
	procs, err := System{}.Processes()
	if err != nil {
		t.Skipf("process listing unavailable: %v", err)
	}
	self := os.Getpid()
	found := false
	for i, p := range procs {
		if i > 0 && procs[i-1].PID > p.PID {
			t.Fatalf("processes not sorted by pid at index %d", i)
		}
		if p.PID == self {
			found = true
		}
	}
	if !found {
		t.Fatalf("own pid %d missing from process list", self)
	}
}
