// Package nlmap rewrites short plain-English instructions into command
// lines using an ordered list of keyword rules. It is a convenience alias
// layer, not a language model: matching is by exact lowercase words.
package nlmap

import (
	"strings"

	"cmdterm/internal/syntax"
)

const (
	// DefaultName fills {name} when no spare word is left in the input.
	DefaultName = "newitem"
	// ContentPlaceholder always fills {content}.
	ContentPlaceholder = "content"
)

// Rule maps a keyword set to a command template. A rule matches when
// every keyword appears among the input words.
type Rule struct {
	Keywords []string
	Template string
}

// DefaultRules is evaluated in order and the first match wins.
var DefaultRules = []Rule{
	{Keywords: []string{"create", "folder"}, Template: "mkdir {name}"},
	{Keywords: []string{"make", "folder"}, Template: "mkdir {name}"},
	{Keywords: []string{"new", "folder"}, Template: "mkdir {name}"},
	{Keywords: []string{"remove", "file"}, Template: "rm {name}"},
	{Keywords: []string{"remove", "folder"}, Template: "rm {name}"},
	{Keywords: []string{"delete"}, Template: "rm {name}"},
	{Keywords: []string{"show", "files"}, Template: "ls"},
	{Keywords: []string{"list", "files"}, Template: "ls"},
	{Keywords: []string{"where", "am", "i"}, Template: "pwd"},
	{Keywords: []string{"print", "working", "directory"}, Template: "pwd"},
	{Keywords: []string{"create", "file"}, Template: "touch {name}"},
	{Keywords: []string{"write", "to", "file"}, Template: "echo {content} > {name}"},
}

// Mapper holds an ordered rule list.
type Mapper struct {
	rules []Rule
}

// New returns a Mapper over rules, or DefaultRules when none are given.
func New(rules ...Rule) *Mapper {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	cp := make([]Rule, len(rules))
	copy(cp, rules)
	return &Mapper{rules: cp}
}

// Map translates text into a command line. When no rule matches, text is
// passed through as a literal command line if it tokenizes. The boolean is
// false when neither produced a line.
func (m *Mapper) Map(text string) (string, bool) {
	words := strings.Fields(strings.ToLower(text))
	present := make(map[string]struct{}, len(words))
	for _, w := range words {
		present[w] = struct{}{}
	}

	for _, rule := range m.rules {
		if !containsAll(present, rule.Keywords) {
			continue
		}
		return expand(rule, words), true
	}

	if _, err := syntax.Tokenize(text); err != nil {
		return "", false
	}
	return text, true
}

func containsAll(present map[string]struct{}, keywords []string) bool {
	for _, kw := range keywords {
		if _, ok := present[kw]; !ok {
			return false
		}
	}
	return true
}

func expand(rule Rule, words []string) string {
	name := DefaultName
	if strings.Contains(rule.Template, "{name}") {
		keywords := make(map[string]struct{}, len(rule.Keywords))
		for _, kw := range rule.Keywords {
			keywords[kw] = struct{}{}
		}
		for i := len(words) - 1; i >= 0; i-- {
			if _, isKeyword := keywords[words[i]]; !isKeyword {
				name = words[i]
				break
			}
		}
	}
	r := strings.NewReplacer(
		"{name}", syntax.Quote(name),
		"{content}", ContentPlaceholder,
	)
	return r.Replace(rule.Template)
}
