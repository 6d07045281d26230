// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package patchstream

import (
	"errors"
	"fmt"
)

// Sentinel errors wrapped by [Error]. Use [errors.Is] to tell them apart.
var (
	// ErrUnknownSeriesKey reports a Series-<key> directive with a key
	// outside the recognized set.
	ErrUnknownSeriesKey = errors.New("unknown series key")
	// ErrDuplicateValue reports a second directive for a single-valued key.
	ErrDuplicateValue = errors.New("duplicate series value")
	// ErrBadVersion reports a Series-changes directive without a positive
	// integer version.
	ErrBadVersion = errors.New("bad change log version")
	// ErrMalformedSection reports badly nested or unterminated
	// Cover-letter/Series-notes sections.
	ErrMalformedSection = errors.New("malformed section")
	// ErrNoCover is returned by InsertCover when no cover letter text was
	// collected.
	ErrNoCover = errors.New("no cover letter text found, add a Cover-letter: section to a commit")
)

// Error is a fatal problem found while processing a patch stream. The file
// it was found in must not be used.
type Error struct {
	// Label names the input: a file name or an abbreviated commit hash.
	Label string
	// Line is the offending input line.
	Line string
	// Key is the series key involved, if any.
	Key string
	// Err is one of the sentinel errors of this package.
	Err error

	reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("In %s: line '%s': %s", e.Label, e.Line, e.reason)
}

func (e *Error) Unwrap() error { return e.Err }
