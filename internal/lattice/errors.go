package lattice

import (
	"errors"
	"fmt"
)

// Sentinel errors for malformed datasets. Every load failure wraps one.
var (
	ErrMalformed              = errors.New("malformed lattice dataset")
	ErrDuplicateWindow        = errors.New("duplicate window id")
	ErrOffsetRange            = errors.New("correction offset out of range")
	ErrTransitionRange        = errors.New("transition target out of range")
	ErrMissingTransition      = errors.New("missing transition")
	ErrInconsistentVocabulary = errors.New("inconsistent vocabulary")
)

// LoadError describes why a dataset was rejected.
type LoadError struct {
	Window  int    // window id involved, -1 if none
	Token   string // raw token involved, if any
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	var where string
	switch {
	case e.Window >= 0 && e.Token != "":
		where = fmt.Sprintf("window %d, token %q: ", e.Window, e.Token)
	case e.Window >= 0:
		where = fmt.Sprintf("window %d: ", e.Window)
	case e.Token != "":
		where = fmt.Sprintf("token %q: ", e.Token)
	}
	if e.Message == "" {
		return fmt.Sprintf("%s%v", where, e.Err)
	}
	return fmt.Sprintf("%s%v: %s", where, e.Err, e.Message)
}

func (e *LoadError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrMalformed
}

func loadErr(err error, window int, token, format string, args ...any) error {
	return &LoadError{Window: window, Token: token, Message: fmt.Sprintf(format, args...), Err: err}
}
