package shell

import (
	"strings"

	"cmdterm/internal/command"
)

// helpWidth is the column at which a usage list wraps.
const helpWidth = 70

var helpSections = []struct {
	group command.Group
	title string
}{
	{command.GroupFilesystem, "Built-in commands:"},
	{command.GroupMonitor, "Monitoring:"},
}

// Help lists the registry's commands by group, followed by the nl utility
// and the given built-in names (help alone when none are given).
func Help(registry *command.Registry, builtins ...string) string {
	if len(builtins) == 0 {
		builtins = []string{BuiltinHelp}
	}
	specs := registry.Specs()
	var b strings.Builder
	for _, section := range helpSections {
		var usages []string
		for _, spec := range specs {
			if spec.Group == section.group {
				usages = append(usages, spec.Usage)
			}
		}
		if len(usages) == 0 {
			continue
		}
		b.WriteString(section.title + "\n")
		writeWrapped(&b, usages)
	}
	b.WriteString("Utilities:\n")
	b.WriteString("  " + BuiltinNL + " \"natural language instruction\"\n")
	b.WriteString("  " + strings.Join(builtins, ", ") + "\n")
	return b.String()
}

// writeWrapped writes items comma separated, two-space indented, breaking
// lines before they pass helpWidth.
func writeWrapped(b *strings.Builder, items []string) {
	line := "  " + items[0]
	for _, item := range items[1:] {
		if len(line)+len(", ")+len(item) > helpWidth {
			b.WriteString(line + ",\n")
			line = "  " + item
			continue
		}
		line += ", " + item
	}
	b.WriteString(line + "\n")
}
