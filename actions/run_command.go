package actions

import (
	"context"
	"strings"
)

// RunCommand spawns a command line detached from the launcher. No output or
// exit status flows back.
type RunCommand struct {
	commandLine string
	launcher    Launcher
}

// NewRunCommand rejects a nil launcher and a blank command line. As with
// NewOpenURL, a typed nil launcher only fails on Activate.
func NewRunCommand(commandLine string, launcher Launcher) (*RunCommand, error) {
	if launcher == nil {
		return nil, ErrNoCollaborator
	}
	if strings.TrimSpace(commandLine) == "" {
		return nil, ErrEmptyCommand
	}
	return &RunCommand{commandLine: commandLine, launcher: launcher}, nil
}

func (a *RunCommand) CommandLine() string { return a.commandLine }
func (a *RunCommand) Kind() Kind          { return KindRunCommand }
func (a *RunCommand) Target() string      { return a.commandLine }

func (a *RunCommand) Activate(ctx context.Context) error {
	return dispatch(ctx, KindRunCommand, a.commandLine, func() error {
		return a.launcher.SpawnDetached(a.commandLine)
	})
}
