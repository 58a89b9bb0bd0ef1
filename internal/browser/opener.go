package browser

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Opener hands a file to whatever plays it.
type Opener func(path string) error

// DefaultOpener uses open on macOS, start on Windows and xdg-open elsewhere.
// It returns once the player has been started.
func DefaultOpener(path string) error {
	cmd := openCommand(runtime.GOOS, path)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", cmd.Args[0], err)
	}
	go cmd.Wait()
	return nil
}

func openCommand(goos, path string) *exec.Cmd {
	switch goos {
	case "darwin":
		return exec.Command("open", path)
	case "windows":
		return exec.Command("cmd", "/c", "start", "", path)
	default:
		return exec.Command("xdg-open", path)
	}
}
