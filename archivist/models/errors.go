package models

import (
	"errors"

	"github.com/aipulse/aipulse/pkg/errlvl"
)

var (
	// ErrDuplicate signals a uniqueness violation (title, URL or source key).
	// Callers treat it as an expected condition, not a failure.
	ErrDuplicate = errors.New("record already exists")
	// ErrNotFound signals that the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	errTitleEmpty     = errors.New("title is empty")
	errTitleTooLong   = errors.New("title is too long")
	errContentEmpty   = errors.New("content is empty")
	errURLTooLong     = errors.New("original_url is too long")
	errPublishedEmpty = errors.New("published_at is empty")
	errSourceEmpty    = errors.New("source is empty")
	errKeyEmpty       = errors.New("key is empty")
	errKeyTooLong     = errors.New("key is too long")
	errFeedURLEmpty   = errors.New("url is empty")
	errFeedURLTooLong = errors.New("url is too long")

	errArticleValidation = errors.New("article validation failed")
	errArticleCreation   = errors.New("article creation failed")
	errArticleDeletion   = errors.New("article deletion failed")
	errArticleLookup     = errors.New("article lookup failed")
	errSourceValidation  = errors.New("feed source validation failed")
	errSourceCreation    = errors.New("feed source creation failed")
	errSourceDeletion    = errors.New("feed source deletion failed")
	errSourceLookup      = errors.New("feed source lookup failed")
)

// newError wraps a generic store error (and optionally the driver error)
// with a severity level.
func newError(lvl errlvl.Lvl, genericErr, err error) error {
	if err != nil {
		return errlvl.Wrap(errors.Join(genericErr, err), lvl)
	}
	return errlvl.Wrap(genericErr, lvl)
}
