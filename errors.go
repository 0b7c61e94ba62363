package main

import (
	"errors"
	"fmt"
)

// errOutOfDate is returned by check mode when the target file differs from
// the freshly generated content.
var errOutOfDate = errors.New("command table is out of date")

// MissingFileError reports an input file that does not exist or cannot be
// read.
type MissingFileError struct {
	Path string
	Err  error
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *MissingFileError) Unwrap() error { return e.Err }

// ParseError reports a source file that is not syntactically valid.
type ParseError struct {
	Path   string
	Line   int
	Column int
	Msg    string
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("parse %s: %s", e.Path, e.Msg)
	}
	return fmt.Sprintf("parse %s:%d:%d: %s", e.Path, e.Line, e.Column, e.Msg)
}

// MarkerNotFoundError reports a target file whose delimiter markers are
// missing, duplicated or out of order. Count is the number of occurrences
// found.
type MarkerNotFoundError struct {
	Path   string
	Marker string
	Count  int
}

func (e *MarkerNotFoundError) Error() string {
	where := e.Path
	if where == "" {
		where = "document"
	}
	switch e.Count {
	case 0:
		return fmt.Sprintf("%s: marker %q not found", where, e.Marker)
	case 1:
		return fmt.Sprintf("%s: marker %q appears before the start marker", where, e.Marker)
	default:
		return fmt.Sprintf("%s: marker %q found %d times, want exactly once", where, e.Marker, e.Count)
	}
}
