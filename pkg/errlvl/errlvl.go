// Package errlvl attaches a severity level to errors so that upper layers
// (logging, Sentry capture) can decide how loud to be about them.
package errlvl

import (
	"errors"
	"fmt"
)

// Lvl is the severity of an error.
type Lvl uint8

const (
	DEBUG Lvl = iota + 1
	INFO
	WARN
	ERROR
	FATAL
)

var (
	ErrDebug = errors.New("[DEBUG]")
	ErrInfo  = errors.New("[INFO]")
	ErrWarn  = errors.New("[WARN]")
	ErrError = errors.New("[ERROR]")
	ErrFatal = errors.New("[FATAL]")
)

var markers = map[Lvl]error{
	DEBUG: ErrDebug,
	INFO:  ErrInfo,
	WARN:  ErrWarn,
	ERROR: ErrError,
	FATAL: ErrFatal,
}

// Wrap marks err with the given severity level. An error that already carries
// a level is returned unchanged, so the innermost annotation wins.
func Wrap(err error, level Lvl) error {
	if err == nil {
		return nil
	}
	if hasLevel(err) {
		return err
	}

	marker, ok := markers[level]
	if !ok {
		marker = ErrError
	}

	return fmt.Errorf("%w %w", marker, err)
}

// Level reports the severity of err, defaulting to ERROR for unmarked errors.
func Level(err error) Lvl {
	for lvl, marker := range markers {
		if errors.Is(err, marker) {
			return lvl
		}
	}
	return ERROR
}

func hasLevel(err error) bool {
	for _, marker := range markers {
		if errors.Is(err, marker) {
			return true
		}
	}
	return false
}
