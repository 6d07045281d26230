// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package patchstream

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Series is the metadata shared by all patches of a series. It is collected
// from Series-<key> directives and Cover-letter sections found in any of the
// commits.
type Series struct {
	To      string    `json:"to,omitempty"`
	Cc      []string  `json:"cc"`
	Version string    `json:"version,omitempty"`
	Prefix  string    `json:"prefix,omitempty"`
	Cover   []string  `json:"cover,omitempty"`
	Notes   []string  `json:"notes,omitempty"`
	Changes ChangeLog `json:"changes,omitempty"`

	seen map[string]bool
}

// NewSeries returns an empty Series.
func NewSeries() *Series {
	return &Series{
		Cc:      []string{},
		Changes: make(ChangeLog),
	}
}

// shape is the kind of value a series key holds.
type shape int

const (
	shapeScalar  shape = iota // set once
	shapeList                 // comma-separated values, appended
	shapeChanges              // opens a change block for a version
	shapeNotes                // opens a notes section
)

var schema = map[string]shape{
	"to":      shapeScalar,
	"cc":      shapeList,
	"version": shapeScalar,
	"prefix":  shapeScalar,
	"changes": shapeChanges,
	"notes":   shapeNotes,
}

var validKeys = strings.Join(slices.Sorted(maps.Keys(schema)), ", ")

// Add applies the directive Series-<key>: <value> found on line of the input
// labelled label. Change blocks and notes sections are opened by the caller
// according to the returned shape.
func (s *Series) Add(label, line, key, value string) (shape, error) {
	sh, ok := schema[key]
	if !ok {
		return 0, &Error{
			Label:  label,
			Line:   line,
			Key:    key,
			Err:    ErrUnknownSeriesKey,
			reason: fmt.Sprintf("Unknown 'Series-%s': valid options are %s", key, validKeys),
		}
	}
	value = strings.TrimSpace(value)

	switch sh {
	case shapeScalar:
		if s.seen[key] {
			return 0, &Error{
				Label:  label,
				Line:   line,
				Key:    key,
				Err:    ErrDuplicateValue,
				reason: fmt.Sprintf("Cannot add another value '%s' to series '%s'", value, key),
			}
		}
		if s.seen == nil {
			s.seen = make(map[string]bool)
		}
		s.seen[key] = true
		switch key {
		case "to":
			s.To = value
		case "version":
			s.Version = value
		case "prefix":
			s.Prefix = value
		}
	case shapeList:
		for addr := range strings.SplitSeq(value, ",") {
			addr = strings.TrimSpace(addr)
			if addr == "" || slices.Contains(s.Cc, addr) {
				continue
			}
			s.Cc = append(s.Cc, addr)
		}
	case shapeChanges:
		if _, err := parseVersion(value); err != nil {
			return 0, &Error{
				Label:  label,
				Line:   line,
				Key:    key,
				Err:    ErrBadVersion,
				reason: fmt.Sprintf("Series-changes needs a positive version number, got '%s'", value),
			}
		}
	}
	return sh, nil
}

func parseVersion(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if v < 1 {
		return 0, strconv.ErrRange
	}
	return v, nil
}

// SubjectPrefix returns the text placed between brackets in patch subjects,
// such as "RFC PATCH v3".
func (s *Series) SubjectPrefix() string {
	var parts []string
	if s.Prefix != "" {
		parts = append(parts, s.Prefix)
	}
	parts = append(parts, "PATCH")
	if s.Version != "" {
		parts = append(parts, "v"+strings.TrimPrefix(s.Version, "v"))
	}
	return strings.Join(parts, " ")
}
