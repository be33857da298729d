package command

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Context is the interpreter state threaded through every handler. The
// working directory lives in the operating system, not here: Chdir changes
// the process directory and Dir reads it back, so the two never drift.
//
// Resolution is deliberately not confined to any root. Paths may point
// anywhere the process can reach.
type Context struct {
	// HomeDir returns the directory a leading "~" expands to.
	HomeDir func() (string, error)
}

// NewContext returns a Context bound to the process working directory.
func NewContext() *Context {
	return &Context{HomeDir: os.UserHomeDir}
}

// Dir returns the current working directory.
func (c *Context) Dir() (string, error) {
	return os.Getwd()
}

// Chdir changes the process working directory to the resolved path.
func (c *Context) Chdir(path string) error {
	return os.Chdir(path)
}

// Resolve maps path to an absolute, cleaned path relative to the current
// directory. An empty path resolves to the current directory itself.
func (c *Context) Resolve(path string) (string, error) {
	cwd, err := c.Dir()
	if err != nil {
		return "", fmt.Errorf("read working directory: %w", err)
	}
	if path == "" {
		return filepath.Clean(cwd), nil
	}
	expanded, err := c.expandHome(path)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(expanded) {
		expanded = filepath.Join(cwd, expanded)
	}
	return filepath.Clean(expanded), nil
}

func (c *Context) expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~"+string(os.PathSeparator)) && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeFn := c.HomeDir
	if homeFn == nil {
		homeFn = os.UserHomeDir
	}
	home, err := homeFn()
	if err != nil {
		return "", fmt.Errorf("expand home directory: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}
