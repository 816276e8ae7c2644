// Package notify carries transient user-facing notifications (the dashboard
// renders them as toasts). Exactly one notification is emitted per failure
// of the analysis path; the email path stays silent.
package notify

import "log/slog"

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a short-lived, non-blocking message for the user.
type Notification struct {
	Level   Level
	Message string
}

// Notifier surfaces one notification for one event.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// LogNotifier writes notifications to the structured log. The server uses it
// as the delivery channel; a real-time push channel can replace it without
// touching the emitters.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(notification Notification) {
	switch notification.Level {
	case LevelError:
		n.log.Error("notification", "message", notification.Message)
	default:
		n.log.Info("notification", "level", string(notification.Level), "message", notification.Message)
	}
}
