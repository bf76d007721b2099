package system

import "log/slog"

// HideFunc adapts a plain function to the window collaborator.
type HideFunc func()

func (f HideFunc) HideWindow() {
	if f != nil {
		f()
	}
}

// LogWindow only records the request. Hosts where the frontend owns the
// window (the HTTP receiver) signal hiding in their response instead.
type LogWindow struct {
	Logger *slog.Logger
}

func (w LogWindow) HideWindow() {
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("hide window requested")
}
