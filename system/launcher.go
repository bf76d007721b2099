package system

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/google/shlex"
)

var ErrEmptyCommand = errors.New("empty command line")

// ProcessLauncher starts commands without waiting for them. The process is
// reaped in the background so it does not linger as a zombie.
type ProcessLauncher struct {
	logger *slog.Logger
	// start is swapped in tests.
	start func(name string, args ...string) (*exec.Cmd, error)
}

func NewProcessLauncher(logger *slog.Logger) *ProcessLauncher {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessLauncher{logger: logger, start: startProcess}
}

func startProcess(name string, args ...string) (*exec.Cmd, error) {
	cmd := exec.Command(name, args...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	detach(cmd)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return cmd, nil
}

func (l *ProcessLauncher) SpawnDetached(commandLine string) error {
	args, err := shlex.Split(commandLine)
	if err != nil {
		return fmt.Errorf("splitting command line: %w", err)
	}
	if len(args) == 0 {
		return ErrEmptyCommand
	}

	cmd, err := l.start(args[0], args[1:]...)
	if err != nil {
		return fmt.Errorf("starting %s: %w", args[0], err)
	}
	if cmd == nil {
		return nil
	}

	go func() {
		if err := cmd.Wait(); err != nil {
			l.logger.Debug("detached command exited", "command", commandLine, "error", err)
		}
	}()
	return nil
}
