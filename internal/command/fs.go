package command

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"cmdterm/internal/syntax"
)

// FilesystemCommands returns the POSIX-style file commands.
func FilesystemCommands() []Command {
	return []Command{
		funcCommand{spec: Spec{Kind: KindPwd, Group: GroupFilesystem, Usage: "pwd", Summary: "print the working directory"}, run: runPwd},
		funcCommand{spec: Spec{Kind: KindLs, Group: GroupFilesystem, Usage: "ls [path]", Summary: "list a directory or name a file"}, run: runLs},
		funcCommand{spec: Spec{Kind: KindCd, Group: GroupFilesystem, Usage: "cd <dir>", Summary: "change the working directory"}, run: runCd},
		funcCommand{spec: Spec{Kind: KindMkdir, Group: GroupFilesystem, Usage: "mkdir <dir>...", Summary: "create directories and their parents"}, run: runMkdir},
		funcCommand{spec: Spec{Kind: KindRm, Group: GroupFilesystem, Usage: "rm <path>...", Summary: "remove files and directory trees"}, run: runRm},
		funcCommand{spec: Spec{Kind: KindCat, Group: GroupFilesystem, Usage: "cat <file>...", Summary: "print file contents", ExternalRedirect: true}, run: runCat},
		funcCommand{spec: Spec{Kind: KindEcho, Group: GroupFilesystem, Usage: "echo <text> [> file | >> file]", Summary: "print words"}, run: runEcho},
		funcCommand{spec: Spec{Kind: KindTouch, Group: GroupFilesystem, Usage: "touch <file>...", Summary: "create files or update their modification time"}, run: runTouch},
	}
}

func runPwd(ctx *Context, args []string, redir *syntax.Redirect) (string, error) {
	if len(args) > 0 {
		return "", Errorf(CodeBadArgs, "pwd takes no arguments")
	}
	dir, err := ctx.Dir()
	if err != nil {
		return "", err
	}
	return WriteOutput(ctx, dir+"\n", redir)
}

func runLs(ctx *Context, args []string, redir *syntax.Redirect) (string, error) {
	target := ""
	if len(args) > 0 {
		target = args[0]
	}
	path, err := ctx.Resolve(target)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", Errorf(CodeNoEnt, "no such file or directory: %s", path)
		}
		return "", err
	}
	if !info.IsDir() {
		return WriteOutput(ctx, info.Name()+"\n", redir)
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return "", err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if isDir(filepath.Join(path, name)) {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)
	out := strings.Join(names, "\n")
	if len(names) > 0 {
		out += "\n"
	}
	return WriteOutput(ctx, out, redir)
}

func runCd(ctx *Context, args []string, redir *syntax.Redirect) (string, error) {
	if len(args) != 1 {
		return "", Errorf(CodeBadArgs, "usage: cd <dir>")
	}
	path, err := ctx.Resolve(args[0])
	if err != nil {
		return "", err
	}
	if !isDir(path) {
		return "", Errorf(CodeNotDir, "not a directory: %s", path)
	}
	if err := ctx.Chdir(path); err != nil {
		return "", err
	}
	return WriteOutput(ctx, "", redir)
}

func runMkdir(ctx *Context, args []string, redir *syntax.Redirect) (string, error) {
	if len(args) == 0 {
		return "", Errorf(CodeBadArgs, "usage: mkdir <dir>...")
	}
	for _, arg := range args {
		path, err := ctx.Resolve(arg)
		if err != nil {
			return "", err
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return "", err
		}
	}
	return WriteOutput(ctx, "", redir)
}

func runRm(ctx *Context, args []string, redir *syntax.Redirect) (string, error) {
	if len(args) == 0 {
		return "", Errorf(CodeBadArgs, "usage: rm <path>...")
	}
	for _, arg := range args {
		path, err := ctx.Resolve(arg)
		if err != nil {
			return "", err
		}
		if _, err := os.Lstat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", Errorf(CodeNoEnt, "no such file or directory: %s", path)
			}
			return "", err
		}
		if err := os.RemoveAll(path); err != nil {
			return "", err
		}
	}
	return WriteOutput(ctx, "", redir)
}

// runCat never redirects on its own; the executor redirects the joined
// output once all files have been read.
func runCat(ctx *Context, args []string, _ *syntax.Redirect) (string, error) {
	if len(args) == 0 {
		return "", Errorf(CodeBadArgs, "usage: cat <file>...")
	}
	chunks := make([]string, 0, len(args))
	for _, arg := range args {
		path, err := ctx.Resolve(arg)
		if err != nil {
			return "", err
		}
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			return "", Errorf(CodeNotFile, "not a file: %s", path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		chunks = append(chunks, string(data))
	}
	out := strings.Join(chunks, "\n")
	if !strings.HasSuffix(chunks[len(chunks)-1], "\n") {
		out += "\n"
	}
	return out, nil
}

func runEcho(ctx *Context, args []string, redir *syntax.Redirect) (string, error) {
	return WriteOutput(ctx, strings.Join(args, " ")+"\n", redir)
}

func runTouch(ctx *Context, args []string, redir *syntax.Redirect) (string, error) {
	if len(args) == 0 {
		return "", Errorf(CodeBadArgs, "usage: touch <file>...")
	}
	for _, arg := range args {
		path, err := ctx.Resolve(arg)
		if err != nil {
			return "", err
		}
		if err := touch(path); err != nil {
			return "", err
		}
	}
	return WriteOutput(ctx, "", redir)
}

func touch(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	now := time.Now()
	return os.Chtimes(path, now, now)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
