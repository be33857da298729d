// Package sysstat reads host CPU, memory and process statistics.
package sysstat

import (
	"fmt"
	"sort"
	"time"

	gops "github.com/mitchellh/go-ps"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

// Memory is a snapshot of virtual memory usage.
type Memory struct {
	Total       uint64
	Used        uint64
	UsedPercent float64
}

// Process is one row of the process table.
type Process struct {
	PID           int
	Name          string
	CPUPercent    float64
	MemoryPercent float64
}

// Source supplies statistics to the monitoring commands.
type Source interface {
	CPUPercent(interval time.Duration) (float64, error)
	Memory() (Memory, error)
	Processes() ([]Process, error)
}

// System reads statistics from the running host.
type System struct{}

// CPUPercent samples overall CPU utilisation across interval.
func (System) CPUPercent(interval time.Duration) (float64, error) {
	values, err := cpu.Percent(interval, false)
	if err != nil {
		return 0, fmt.Errorf("sample cpu: %w", err)
	}
	if len(values) == 0 {
		return 0, fmt.Errorf("sample cpu: no data")
	}
	return values[0], nil
}

// Memory returns current virtual memory usage.
func (System) Memory() (Memory, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return Memory{}, fmt.Errorf("read memory: %w", err)
	}
	return Memory{Total: vm.Total, Used: vm.Used, UsedPercent: vm.UsedPercent}, nil
}

// Processes lists running processes ordered by PID. Processes that exit
// or deny access while being inspected keep zero percentages.
//
// CPUPercent is the average utilisation over the process lifetime
// (gopsutil's Process.CPUPercent), not a rate sampled over an interval,
// so short-lived spikes in a long-running process barely move it.
func (System) Processes() ([]Process, error) {
	procs, err := gops.Processes()
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}
	out := make([]Process, 0, len(procs))
	for _, p := range procs {
		row := Process{PID: p.Pid(), Name: p.Executable()}
		if handle, err := process.NewProcess(int32(p.Pid())); err == nil {
			if pct, err := handle.CPUPercent(); err == nil {
				row.CPUPercent = pct
			}
			if pct, err := handle.MemoryPercent(); err == nil {
				row.MemoryPercent = float64(pct)
			}
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PID < out[j].PID })
	return out, nil
}
