// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package patchstream cleans up git-formatted patches before they are sent
// upstream.
//
// A [Stream] reads a patch (or git log output) line by line. It drops review
// metadata such as BUG=, TEST= and Change-Id: lines, collects series
// metadata from directives like these into a [Series]:
//
//	Series-to: u-boot
//	Series-cc: Detlev Zundel <dzu@denx.de>
//	Series-version: 2
//	Series-prefix: RFC
//	Series-changes: 2
//	- Fix the frobnicator
//
//	Cover-letter:
//	Subject of the cover letter
//	Body text
//	END
//
// and re-emits the patch with the trailer tags collated above the diff
// separator and the change log below it. Suspicious content is reported as
// warnings; conflicting metadata is reported as an [*Error].
//
// A Series is shared by every Stream of a patch series, so that directives
// found in any commit apply to the whole series.
package patchstream

import (
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"
)

// parseState is where in a patch the stream is.
type parseState int

const (
	stateHeader parseState = iota // message header, before the first blank line
	stateBody                     // commit message
	stateDiff                     // after the --- separator
)

// sectionKind is the block a stream is collecting lines for.
type sectionKind int

const (
	sectionNone sectionKind = iota
	sectionCover
	sectionNotes
	sectionChange
)

type section struct {
	kind    sectionKind
	version int // for sectionChange
	buf     []string
}

// CopyrightRule rewrites a copyright notice that must not go upstream.
type CopyrightRule struct {
	// Pattern matches the notice to replace.
	Pattern *regexp.Regexp
	// Replace is the line emitted instead.
	Replace string
}

// DefaultCopyright replaces the old Google notice with the Chromium OS one.
var DefaultCopyright = &CopyrightRule{
	Pattern: regexp.MustCompile(`^\+ \* Copyright \(c\) 2011, Google Inc\. All rights reserved\.`),
	Replace: "+ * Copyright (c) 2011 The Chromium OS Authors.",
}

// Options configure a [Stream].
type Options struct {
	// Label names the input in errors and warnings, usually a file name.
	Label string
	// LogMode treats the input as git log output instead of a patch.
	LogMode bool
	// Copyright replaces legacy copyright notices. If nil,
	// DefaultCopyright is used.
	Copyright *CopyrightRule
}

// Stream is the state of processing one input. It is not safe for
// concurrent use.
type Stream struct {
	series    *Series
	label     string
	logMode   bool
	copyright *CopyrightRule

	state          parseState
	section        section
	skipBlank      bool
	foundTest      bool
	linesAfterTest int
	signoff        string
	tags           []string
	changes        ChangeLog
	warnings       []string
	blanks         []string
	added          int
	lastFile       string
	lineNum        int
	finalized      bool
	err            error
}

// New returns a Stream that adds metadata to series.
func New(series *Series, opts Options) *Stream {
	if series.Changes == nil {
		series.Changes = make(ChangeLog)
	}
	if opts.Copyright == nil {
		opts.Copyright = DefaultCopyright
	}
	if opts.Label == "" {
		opts.Label = "<input>"
	}
	return &Stream{
		series:    series,
		label:     opts.Label,
		logMode:   opts.LogMode,
		copyright: opts.Copyright,
		changes:   make(ChangeLog),
	}
}

// Warnings returns the warnings collected so far.
func (s *Stream) Warnings() []string { return slices.Clone(s.warnings) }

// Changes returns the change log entries found in this input.
func (s *Stream) Changes() ChangeLog { return s.changes }

// Added returns the number of change log lines written below the diff
// separator. They have no counterpart in the input.
func (s *Stream) Added() int { return s.added }

func (s *Stream) view() view {
	return view{
		state:     s.state,
		section:   s.section.kind,
		skipBlank: s.skipBlank,
		logMode:   s.logMode,
		copyright: s.copyright.Pattern,
	}
}

func (s *Stream) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if s.logMode {
		msg = s.label + ": " + msg
	}
	s.warnings = append(s.warnings, msg)
}

func (s *Stream) fail(line string, err error, reason string) error {
	s.err = &Error{Label: s.label, Line: line, Err: err, reason: reason}
	return s.err
}

// Process consumes one line, without its line terminator, and returns the
// lines to write out in its place. Usually that is the line itself or
// nothing; at the diff separator it is the collated tags, the separator and
// the change log.
//
// After Process returns an error, the stream is unusable and keeps
// returning that error.
func (s *Stream) Process(line string) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.lineNum++

	m := classify(line, s.view())
	line = m.text
	if s.state == stateHeader && m.kind != kindCommit && strings.TrimSpace(line) == "" {
		s.state = stateBody
	}

	switch m.kind {
	case kindNoise:
		// A blank line always ends a change block, so it is not skipped.
		s.skipBlank = s.section.kind != sectionChange
		if strings.HasPrefix(line, "TEST=") {
			s.foundTest = true
		}
	case kindSkippedBlank:
		s.skipBlank = false
	case kindCoverStart:
		if err := s.openSection(line, section{kind: sectionCover}); err != nil {
			return nil, err
		}
	case kindSectionLine:
		if line == diffSeparator && !s.logMode {
			return nil, s.fail(line, ErrMalformedSection, fmt.Sprintf("%s section has no %s before the diff", s.sectionName(), sectionEnd))
		}
		s.section.buf = append(s.section.buf, line)
	case kindSectionEnd:
		s.closeSection()
		s.skipBlank = true
	case kindChangeLine:
		s.changes.Add(s.section.version, line)
		s.series.Changes.Add(s.section.version, line)
	case kindChangeEnd:
		s.closeSection()
		if line == diffSeparator {
			return s.plain(line), nil
		}
		if m.key != "" {
			s.tag(line, m.key)
		}
	case kindCopyright:
		s.warnf("Changed copyright from '%s'", line)
		return s.emit(s.copyright.Replace), nil
	case kindSeries:
		if err := s.directive(line, m.key, m.value); err != nil {
			return nil, err
		}
	case kindCommit:
		s.endCommit()
		s.label = m.value[:7]
		s.state = stateHeader
	case kindTag:
		s.tag(line, m.key)
	default:
		return s.plain(line), nil
	}
	return nil, nil
}

func (s *Stream) sectionName() string {
	switch s.section.kind {
	case sectionCover:
		return "Cover-letter"
	case sectionNotes:
		return "Series-notes"
	case sectionChange:
		return "Series-changes"
	}
	return "no"
}

func (s *Stream) openSection(line string, sec section) error {
	switch s.section.kind {
	case sectionCover, sectionNotes:
		return s.fail(line, ErrMalformedSection, fmt.Sprintf("%s section is still open", s.sectionName()))
	case sectionChange:
		s.closeSection()
	}
	s.section = sec
	s.skipBlank = false
	return nil
}

// closeSection hands the collected lines of the open section to the series.
func (s *Stream) closeSection() {
	switch s.section.kind {
	case sectionCover:
		s.series.Cover = append([]string{}, s.section.buf...)
	case sectionNotes:
		s.series.Notes = append(s.series.Notes, s.section.buf...)
	}
	s.section = section{}
}

func (s *Stream) directive(line, key, value string) error {
	sh, err := s.series.Add(s.label, line, key, value)
	if err != nil {
		s.err = err
		return err
	}
	switch sh {
	case shapeChanges:
		v, _ := parseVersion(value)
		return s.openSection(line, section{kind: sectionChange, version: v})
	case shapeNotes:
		return s.openSection(line, section{kind: sectionNotes})
	}
	s.skipBlank = true
	return nil
}

func (s *Stream) tag(line, name string) {
	if name != "Signed-off-by" {
		s.tags = append(s.tags, line)
		return
	}
	if s.signoff != "" {
		s.warnf("Duplicate signoff: '%s'", line)
		return
	}
	s.signoff = line
}

// plain handles a line that is passed through.
func (s *Stream) plain(line string) []string {
	if !s.logMode || s.state != stateHeader {
		s.check(line)
	}
	s.skipBlank = false

	if s.state == stateDiff {
		return s.emit(line)
	}
	if line == diffSeparator {
		s.state = stateDiff
		var out []string
		if s.signoff != "" {
			out = append(out, s.signoff)
		}
		out = append(out, slices.Sorted(slices.Values(s.tags))...)
		out = append(out, line)
		changes := s.changes.Render()
		s.added += len(changes)
		return append(out, changes...)
	}
	if s.foundTest && !reAllowedAfterTest.MatchString(line) {
		s.linesAfterTest++
	}
	return []string{line}
}

// check records warnings about suspicious characters in line.
func (s *Stream) check(line string) {
	for i := 0; i < len(line); i++ {
		if line[i] >= 0x80 {
			s.warnf("Line %d/%d has non-ASCII character 0x%02x", s.lineNum, i+1, line[i])
		}
	}
	if reSpaceBeforeTab.MatchString(line) {
		s.warnf("Line %d has space before tab", s.lineNum)
	}
}

// emit returns line for output. In the diff, added blank lines are held
// back until the next line shows whether they end a file.
func (s *Stream) emit(line string) []string {
	if s.state != stateDiff {
		return []string{line}
	}
	if strings.TrimSuffix(line, "\r") == "+" {
		s.blanks = append(s.blanks, line)
		return nil
	}
	var out []string
	if len(s.blanks) > 0 {
		if line == signature || reDiffGit.MatchString(line) {
			s.warnBlankAtEOF()
		}
		out = s.flushBlanks()
	}
	if m := reDiffGit.FindStringSubmatch(line); m != nil {
		s.lastFile = m[1]
	}
	return append(out, line)
}

func (s *Stream) warnBlankAtEOF() {
	s.warnf("Found possible blank line(s) at end of file '%s'", s.lastFile)
}

func (s *Stream) flushBlanks() []string {
	out := s.blanks
	s.blanks = nil
	return out
}

// endCommit finishes the per-commit state: it reports lines found after
// TEST= and hands any open section to the series.
func (s *Stream) endCommit() {
	if s.linesAfterTest > 0 {
		s.warnf("Found %d lines after TEST=", s.linesAfterTest)
	}
	s.closeSection()
	s.foundTest = false
	s.linesAfterTest = 0
	s.skipBlank = false
	s.signoff = ""
	s.tags = nil
}

// Finalize must be called after the last line. It returns any lines still
// held back. Calling it again has no effect.
func (s *Stream) Finalize() []string {
	if s.finalized {
		return nil
	}
	s.finalized = true
	var out []string
	if len(s.blanks) > 0 {
		s.warnBlankAtEOF()
		out = s.flushBlanks()
	}
	s.endCommit()
	return out
}

// Result is the outcome of processing a whole input.
type Result struct {
	// Lines is the cleaned input.
	Lines []string
	// Warnings lists problems worth a look. They do not make the result
	// unusable.
	Warnings []string
	// Changes holds the change log entries found in this input.
	Changes ChangeLog
	// Added is the number of lines in Lines that were not in the input.
	Added int
	// MissingNewline is set when the input did not end with a newline.
	MissingNewline bool
}

// Removed returns how many input lines were dropped, given the number of
// lines that went in.
func (r *Result) Removed(in int) int { return in - (len(r.Lines) - r.Added) }

// Text returns the cleaned input as text, ending with a newline only if the
// input did.
func (r *Result) Text() string { return Join(r.Lines, !r.MissingNewline) }

// ProcessLines runs lines through a new Stream that adds metadata to series.
func ProcessLines(lines []string, series *Series, opts Options) (*Result, error) {
	s := New(series, opts)
	res := &Result{Lines: make([]string, 0, len(lines))}
	for _, line := range lines {
		out, err := s.Process(line)
		if err != nil {
			return nil, err
		}
		res.Lines = append(res.Lines, out...)
	}
	res.Lines = append(res.Lines, s.Finalize()...)
	res.Warnings = s.Warnings()
	res.Changes = s.Changes()
	res.Added = s.Added()
	return res, nil
}

// ProcessReader reads all of r and processes it with [ProcessLines].
func ProcessReader(r io.Reader, series *Series, opts Options) (*Result, error) {
	lines, final, err := ReadLines(r)
	if err != nil {
		return nil, err
	}
	res, err := ProcessLines(lines, series, opts)
	if err != nil {
		return nil, err
	}
	res.MissingNewline = !final
	return res, nil
}

// ScanLog collects series metadata from git log output read from r and
// returns the warnings found in the commit messages.
func ScanLog(r io.Reader, series *Series, opts Options) ([]string, error) {
	opts.LogMode = true
	res, err := ProcessReader(r, series, opts)
	if err != nil {
		return nil, err
	}
	return res.Warnings, nil
}

// ReadLines reads all of r and splits it at each newline. A carriage return
// before the newline stays in the line. final reports whether the last line
// was terminated; it is true for empty input.
func ReadLines(r io.Reader) (lines []string, final bool, err error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, false, err
	}
	if len(b) == 0 {
		return nil, true, nil
	}
	text := string(b)
	final = strings.HasSuffix(text, "\n")
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n"), final, nil
}

// Join joins lines with newlines. The last line gets one only if final is
// set.
func Join(lines []string, final bool) string {
	if len(lines) == 0 {
		return ""
	}
	text := strings.Join(lines, "\n")
	if final {
		text += "\n"
	}
	return text
}
