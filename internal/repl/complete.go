package repl

import (
	"os"
	"sort"
	"strings"

	"github.com/c-bata/go-prompt"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"cmdterm/internal/shell"
)

func (s *Session) completer() func(prompt.Document) []prompt.Suggest {
	return func(doc prompt.Document) []prompt.Suggest {
		return s.Suggest(doc.TextBeforeCursor())
	}
}

// Suggest completes the last word of before. The first word completes to
// command names, later words to filesystem paths.
func (s *Session) Suggest(before string) []prompt.Suggest {
	trimmed := strings.TrimLeft(before, " \t")
	if !strings.ContainsAny(trimmed, " \t") {
		return s.suggestCommands(trimmed)
	}
	word := ""
	if i := strings.LastIndexAny(trimmed, " \t"); i >= 0 {
		word = trimmed[i+1:]
	}
	return s.suggestPaths(word)
}

var builtinSuggestions = []prompt.Suggest{
	{Text: shell.BuiltinHelp, Description: "show available commands"},
	{Text: shell.BuiltinNL, Description: "run a plain-English instruction"},
	{Text: "exit", Description: "leave the terminal"},
}

// commandSuggestions lists registry commands and built-ins sorted by name,
// each described by its summary.
func (s *Session) commandSuggestions() []prompt.Suggest {
	specs := s.exec.Registry().Specs()
	out := make([]prompt.Suggest, 0, len(specs)+len(builtinSuggestions))
	for _, spec := range specs {
		out = append(out, prompt.Suggest{Text: spec.Name(), Description: spec.Summary})
	}
	out = append(out, builtinSuggestions...)
	sort.Slice(out, func(i, j int) bool { return out[i].Text < out[j].Text })
	return out
}

func (s *Session) suggestCommands(word string) []prompt.Suggest {
	all := s.commandSuggestions()
	var out []prompt.Suggest
	for _, sug := range all {
		if strings.HasPrefix(sug.Text, word) {
			out = append(out, sug)
		}
	}
	if len(out) > 0 || word == "" {
		return out
	}
	names := make([]string, len(all))
	byName := make(map[string]prompt.Suggest, len(all))
	for i, sug := range all {
		names[i] = sug.Text
		byName[sug.Text] = sug
	}
	ranks := fuzzy.RankFindFold(word, names)
	sort.Sort(ranks)
	for _, r := range ranks {
		out = append(out, byName[r.Target])
	}
	return out
}

func (s *Session) suggestPaths(word string) []prompt.Suggest {
	dirPart, base := "", word
	if i := strings.LastIndex(word, "/"); i >= 0 {
		dirPart, base = word[:i+1], word[i+1:]
	}
	dir, err := s.exec.Context().Resolve(dirPart)
	if err != nil {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []prompt.Suggest
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, base) {
			continue
		}
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(base, ".") {
			continue
		}
		text := dirPart + name
		desc := "file"
		if entry.IsDir() {
			text += "/"
			desc = "dir"
		}
		out = append(out, prompt.Suggest{Text: text, Description: desc})
	}
	return out
}
