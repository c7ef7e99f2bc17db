// Package apperr holds the sentinel errors shared by the outer surfaces.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrNotApplicable = errors.New("no provider handles this metadata type")
	ErrInvalidPath   = errors.New("invalid path")
)
