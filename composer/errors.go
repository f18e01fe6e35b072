package composer

import (
	"errors"

	"github.com/aipulse/aipulse/pkg/errlvl"
)

var (
	errNoClient        = errors.New("no generative client configured")
	errEmptyCompletion = errors.New("model returned an empty completion")
	errGeneration      = errors.New("model request failed")
	errBadJSON         = errors.New("model response is not valid JSON")
)

// newError wraps a generic composer error (and the underlying cause) with a
// severity level.
func newError(lvl errlvl.Lvl, genericErr, err error) error {
	if err != nil {
		return errlvl.Wrap(errors.Join(genericErr, err), lvl)
	}
	return errlvl.Wrap(genericErr, lvl)
}
