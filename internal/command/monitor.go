package command

import (
	"fmt"
	"strings"
	"time"

	"cmdterm/internal/syntax"
	"cmdterm/internal/sysstat"
)

// DefaultCPUSample is how long `cpu` samples utilisation for.
const DefaultCPUSample = 200 * time.Millisecond

const mib = 1024 * 1024

// MonitorCommands returns the system-monitoring commands backed by src.
func MonitorCommands(src sysstat.Source, cpuSample time.Duration) []Command {
	if cpuSample <= 0 {
		cpuSample = DefaultCPUSample
	}
	m := monitor{src: src, sample: cpuSample}
	return []Command{
		funcCommand{spec: Spec{Kind: KindCPU, Group: GroupMonitor, Usage: "cpu", Summary: "overall CPU utilisation"}, run: m.cpu},
		funcCommand{spec: Spec{Kind: KindMem, Group: GroupMonitor, Usage: "mem", Summary: "memory usage"}, run: m.mem},
		funcCommand{spec: Spec{Kind: KindPs, Group: GroupMonitor, Usage: "ps", Summary: "process table"}, run: m.ps},
	}
}

type monitor struct {
	src    sysstat.Source
	sample time.Duration
}

func (m monitor) cpu(ctx *Context, args []string, redir *syntax.Redirect) (string, error) {
	if len(args) > 0 {
		return "", Errorf(CodeBadArgs, "cpu takes no arguments")
	}
	pct, err := m.src.CPUPercent(m.sample)
	if err != nil {
		return "", err
	}
	return WriteOutput(ctx, fmt.Sprintf("CPU: %.1f%%\n", pct), redir)
}

func (m monitor) mem(ctx *Context, args []string, redir *syntax.Redirect) (string, error) {
	if len(args) > 0 {
		return "", Errorf(CodeBadArgs, "usage: mem")
	}
	vm, err := m.src.Memory()
	if err != nil {
		return "", err
	}
	out := fmt.Sprintf("MEM: used %dMB / %dMB (%.1f%%)\n", vm.Used/mib, vm.Total/mib, vm.UsedPercent)
	return WriteOutput(ctx, out, redir)
}

func (m monitor) ps(ctx *Context, args []string, redir *syntax.Redirect) (string, error) {
	if len(args) > 0 {
		return "", Errorf(CodeBadArgs, "usage: ps")
	}
	procs, err := m.src.Processes()
	if err != nil {
		return "", err
	}
	lines := make([]string, 0, len(procs)+1)
	lines = append(lines, "PID  NAME  CPU%  MEM%")
	for _, p := range procs {
		lines = append(lines, fmt.Sprintf("%5d  %-20s  %4.1f  %4.1f", p.PID, truncate(p.Name, 20), p.CPUPercent, p.MemoryPercent))
	}
	return WriteOutput(ctx, strings.Join(lines, "\n")+"\n", redir)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
