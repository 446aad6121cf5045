package export

import "log/slog"

// Notifier shows transient notices to the user. Progress returns the
// function that dismisses the notice it opened.
type Notifier interface {
	Progress(msg string) (dismiss func())
	Success(msg string)
	Failure(msg string, err error)
}

// LogNotifier reports notices through slog, for callers without a screen.
type LogNotifier struct{}

func (LogNotifier) Progress(msg string) func() {
	slog.Info(msg)
	return func() {}
}

func (LogNotifier) Success(msg string) { slog.Info(msg) }

func (LogNotifier) Failure(msg string, err error) { slog.Error(msg, "error", err) }
