// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package patchstream

import (
	"regexp"
	"strings"
)

var (
	// Review metadata that never goes upstream.
	reNoise = regexp.MustCompile(`^(BUG=|TEST=|Change-Id:|Review URL:)|Reviewed-on:|Reviewed-by:`)
	// Lines allowed after TEST= without a warning.
	reAllowedAfterTest = regexp.MustCompile(`^Signed-off-by:`)
	reCover            = regexp.MustCompile(`^Cover-letter:`)
	reSeries           = regexp.MustCompile(`^Series-(\w*): *(.*)`)
	reTag              = regexp.MustCompile(`^(Signed-off-by|Tested-by|Acked-by): *(.*)`)
	reCommit           = regexp.MustCompile(`^commit ([0-9a-f]{7,40})\b`)
	reSpaceBeforeTab   = regexp.MustCompile(`^\+.* \t`)
	reDiffGit          = regexp.MustCompile(`^diff --git a/(.*) b/`)
)

const (
	diffSeparator = "---"
	sectionEnd    = "END"
	signature     = "-- "
	logIndent     = "    "
)

// kind is the category of an input line.
type kind int

const (
	kindPlain        kind = iota // passed through
	kindNoise                    // review metadata, dropped
	kindSkippedBlank             // blank line following dropped metadata
	kindCoverStart               // Cover-letter:
	kindSectionLine              // text inside a cover or notes section
	kindSectionEnd               // END of a cover or notes section
	kindChangeLine               // entry of a Series-changes block
	kindChangeEnd                // end of a Series-changes block
	kindCopyright                // legacy copyright notice
	kindSeries                   // Series-<key>: <value>
	kindCommit                   // commit <hash> header of git log output
	kindTag                      // trailer tag such as Signed-off-by:
)

var kindNames = [...]string{
	kindPlain:        "plain",
	kindNoise:        "noise",
	kindSkippedBlank: "skipped-blank",
	kindCoverStart:   "cover-start",
	kindSectionLine:  "section-line",
	kindSectionEnd:   "section-end",
	kindChangeLine:   "change-line",
	kindChangeEnd:    "change-end",
	kindCopyright:    "copyright",
	kindSeries:       "series",
	kindCommit:       "commit",
	kindTag:          "tag",
}

func (k kind) String() string { return kindNames[k] }

// view is the part of the stream state the classifier looks at.
type view struct {
	state     parseState
	section   sectionKind
	skipBlank bool
	logMode   bool
	copyright *regexp.Regexp
}

// match is a classified line. For series directives key and value hold the
// directive key and value; for tags the tag name and value; for commit
// headers value holds the hash.
type match struct {
	kind  kind
	text  string
	key   string
	value string
}

// classify decides what line is, first match wins. It does not change any
// state.
//
// In log mode commit headers are recognized before anything else: they are
// the only unindented lines that can follow a commit message, so they always
// end whatever block the message left open. Message lines lose their
// indentation before the remaining rules run.
func classify(line string, v view) match {
	if v.logMode {
		if m := reCommit.FindStringSubmatch(line); m != nil {
			return match{kind: kindCommit, text: line, value: m[1]}
		}
		line = strings.TrimPrefix(line, logIndent)
	}
	m := match{kind: kindPlain, text: line}

	if v.state == stateDiff {
		if v.copyright != nil && v.copyright.MatchString(line) {
			m.kind = kindCopyright
		}
		return m
	}

	blank := strings.TrimSpace(line) == ""
	switch {
	case reNoise.MatchString(line):
		m.kind = kindNoise
	case v.skipBlank && blank:
		m.kind = kindSkippedBlank
	case reCover.MatchString(line):
		m.kind = kindCoverStart
	case v.section == sectionCover || v.section == sectionNotes:
		if line == sectionEnd {
			m.kind = kindSectionEnd
		} else {
			m.kind = kindSectionLine
		}
	case v.section == sectionChange:
		if blank || line == diffSeparator {
			m.kind = kindChangeEnd
		} else if reAllowedAfterTest.MatchString(line) {
			// A signoff belongs to the commit message, not the change log.
			m.kind, m.key = kindChangeEnd, "Signed-off-by"
		} else {
			m.kind = kindChangeLine
		}
	case v.copyright != nil && v.copyright.MatchString(line):
		m.kind = kindCopyright
	default:
		if sm := reSeries.FindStringSubmatch(line); sm != nil {
			m.kind, m.key, m.value = kindSeries, sm[1], sm[2]
		} else if tm := reTag.FindStringSubmatch(line); tm != nil {
			m.kind, m.key, m.value = kindTag, tm[1], tm[2]
		}
	}
	return m
}
