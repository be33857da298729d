package command

import (
	"fmt"
	"os"
	"path/filepath"

	"cmdterm/internal/syntax"
)

// WriteOutput sends out through redir. Without a redirection the text is
// returned unchanged; with one, the text goes to the target file and the
// empty string is returned, so exactly one channel carries the output.
func WriteOutput(ctx *Context, out string, redir *syntax.Redirect) (string, error) {
	if redir == nil {
		return out, nil
	}
	if !redir.HasTarget() {
		return "", Errorf(CodeBadRedir, "missing redirection target")
	}
	target, err := ctx.Resolve(redir.Target)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create redirection directory: %w", err)
	}
	flag := os.O_CREATE | os.O_WRONLY
	if redir.Append() {
		flag |= os.O_APPEND
	} else {
		flag |= os.O_TRUNC
	}
	f, err := os.OpenFile(target, flag, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := f.WriteString(out); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return "", nil
}
