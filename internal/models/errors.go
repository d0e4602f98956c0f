package models

import (
	"fmt"
	"image"
)

// FormatError reports a source stream whose format tag is not the plain
// grayscale tag.
type FormatError struct {
	Tag  string
	Want string
}

func (e *FormatError) Error() string {
	if e.Tag == "" {
		return fmt.Sprintf("missing format tag, expected %q", e.Want)
	}
	return fmt.Sprintf("unsupported format tag %q, expected %q", e.Tag, e.Want)
}

// ParseError reports a token that could not be read as the integer the
// decoder expected at that point.
type ParseError struct {
	Field string
	Token string
	// Index is the zero-based pixel index for pixel tokens, -1 otherwise.
	Index int
	Err   error
}

func (e *ParseError) Error() string {
	where := e.Field
	if e.Index >= 0 {
		where = fmt.Sprintf("%s %d", e.Field, e.Index)
	}
	switch {
	case e.Err != nil && e.Token != "":
		return fmt.Sprintf("parse %s: token %q: %v", where, e.Token, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("parse %s: %v", where, e.Err)
	default:
		return fmt.Sprintf("parse %s: invalid token %q", where, e.Token)
	}
}

func (e *ParseError) Unwrap() error { return e.Err }

// ConfigError reports target dimensions or settings that cannot be applied,
// most notably a target larger than the source, which would give a zero
// stride.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ShapeError reports two grids that were expected to have the same
// dimensions.
type ShapeError struct {
	Want image.Point
	Got  image.Point
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("grid dimensions must match: want %dx%d, got %dx%d",
		e.Want.X, e.Want.Y, e.Got.X, e.Got.Y)
}

// CheckShape returns a ShapeError when got differs from want.
func CheckShape(want, got image.Point) error {
	if want != got {
		return &ShapeError{Want: want, Got: got}
	}
	return nil
}
