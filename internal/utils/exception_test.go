package utils

import (
	"errors"
	"testing"

	"github.com/aipulse/aipulse/pkg/errlvl"
	"github.com/getsentry/sentry-go"
)

type fakeHub struct {
	captured error
	scoped   bool
}

func (h *fakeHub) CaptureException(err error) *sentry.EventID {
	h.captured = err
	return nil
}

func (h *fakeHub) WithScope(callback func(scope *sentry.Scope)) {
	h.scoped = true
	callback(sentry.NewScope())
}

func TestCaptureSentryException(t *testing.T) {
	hub := &fakeHub{}
	err := errlvl.Wrap(errors.New("feed exploded"), errlvl.ERROR)

	CaptureSentryException("IngestJob", hub, err)

	if !hub.scoped {
		t.Error("CaptureSentryException() did not open a scope")
	}
	if !errors.Is(hub.captured, err) {
		t.Errorf("CaptureSentryException() captured %v, want %v", hub.captured, err)
	}
}

func Test_sentryLevel(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want sentry.Level
	}{
		{"nil error", nil, sentry.LevelDebug},
		{"debug", errlvl.Wrap(errors.New("x"), errlvl.DEBUG), sentry.LevelDebug},
		{"info", errlvl.Wrap(errors.New("x"), errlvl.INFO), sentry.LevelInfo},
		{"warn", errlvl.Wrap(errors.New("x"), errlvl.WARN), sentry.LevelWarning},
		{"error", errlvl.Wrap(errors.New("x"), errlvl.ERROR), sentry.LevelError},
		{"fatal", errlvl.Wrap(errors.New("x"), errlvl.FATAL), sentry.LevelFatal},
		{"unmarked defaults to error", errors.New("x"), sentry.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sentryLevel(tt.err); got != tt.want {
				t.Errorf("sentryLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}
