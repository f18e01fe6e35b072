package utils

import (
	"github.com/aipulse/aipulse/pkg/errlvl"
	"github.com/getsentry/sentry-go"
)

type sentryHub interface {
	CaptureException(exception error) *sentry.EventID
	WithScope(callback func(scope *sentry.Scope))
}

// CaptureSentryException captures err under the given exception name with
// the Sentry level matching its errlvl severity. Sentry otherwise reports
// the Go error type, which is useless for wrapped sentinel errors.
func CaptureSentryException(name string, hub sentryHub, err error) {
	level := sentryLevel(err)
	hub.WithScope(func(scope *sentry.Scope) {
		scope.AddEventProcessor(func(e *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			if len(e.Exception) > 0 {
				// The top of the stack is the last element.
				e.Exception[len(e.Exception)-1].Type = name
			}
			e.Level = level
			return e
		})
		hub.CaptureException(err)
	})
}

func sentryLevel(err error) sentry.Level {
	if err == nil {
		return sentry.LevelDebug
	}

	switch errlvl.Level(err) {
	case errlvl.DEBUG:
		return sentry.LevelDebug
	case errlvl.INFO:
		return sentry.LevelInfo
	case errlvl.WARN:
		return sentry.LevelWarning
	case errlvl.FATAL:
		return sentry.LevelFatal
	default:
		return sentry.LevelError
	}
}
