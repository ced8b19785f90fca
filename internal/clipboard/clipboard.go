// Package clipboard copies reply drafts to the system clipboard through
// whichever platform tool is installed.
package clipboard

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
)

var ErrToolNotFound = errors.New("clipboard tool not found")

// Tool is a resolved clipboard command for the current platform.
type Tool struct {
	Path string
	Args []string
}

// FindTool picks the first available clipboard writer for goos. On Linux it
// prefers Wayland's wl-copy, then xclip, then clip.exe for WSL setups.
func FindTool(goos string, lookPath func(string) (string, error)) (Tool, error) {
	var candidates []Tool
	switch goos {
	case "darwin":
		candidates = []Tool{{Path: "pbcopy"}}
	case "linux":
		candidates = []Tool{
			{Path: "wl-copy"},
			{Path: "xclip", Args: []string{"-selection", "clipboard"}},
			{Path: "clip.exe"},
		}
	default:
		return Tool{}, ErrToolNotFound
	}

	for _, c := range candidates {
		if path, err := lookPath(c.Path); err == nil {
			return Tool{Path: path, Args: c.Args}, nil
		}
	}
	return Tool{}, ErrToolNotFound
}

// Copy pipes text into the platform clipboard tool.
func Copy(ctx context.Context, text string) error {
	tool, err := FindTool(runtime.GOOS, exec.LookPath)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, tool.Path, tool.Args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("clipboard stdin: %w", err)
	}
	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		return fmt.Errorf("start clipboard command: %w", err)
	}

	_, writeErr := stdin.Write([]byte(text))
	_ = stdin.Close()
	if writeErr != nil {
		_ = cmd.Wait()
		return fmt.Errorf("write clipboard data: %w", writeErr)
	}
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("clipboard command failed: %w", err)
	}
	return nil
}
