// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package report renders the outcome of cleaning a patch series.
package report

import (
	"fmt"
	"io"
	"strings"

	"go.astrophena.name/patchkit/diffstat"
	"go.astrophena.name/patchkit/patchstream"

	"github.com/a-h/templ"
)

// Patch is a cleaned patch.
type Patch struct {
	Name     string        `json:"name"`
	Subject  string        `json:"subject,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
	Stat     diffstat.Stat `json:"stat"`
}

// Summary is the outcome of cleaning a series.
type Summary struct {
	Series  *patchstream.Series `json:"series"`
	Patches []Patch             `json:"patches"`
}

// Warnings returns the number of warnings across all patches.
func (s Summary) Warnings() int {
	var n int
	for _, p := range s.Patches {
		n += len(p.Warnings)
	}
	return n
}

// Text writes the warnings of every patch that has some, followed by the
// number of cleaned patches.
func Text(w io.Writer, s Summary) error {
	var b strings.Builder
	for _, p := range s.Patches {
		if len(p.Warnings) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%d warnings for %s:\n", len(p.Warnings), p.Name)
		for _, warn := range p.Warnings {
			fmt.Fprintf(&b, "\t%s\n", warn)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "Cleaned %d patches\n", len(s.Patches))
	_, err := io.WriteString(w, b.String())
	return err
}

//go:generate go tool templ generate -f report.templ

// HTML returns a page summarizing the series: its metadata, the lines each
// patch adds and removes, and the warnings.
func HTML(s Summary) templ.Component { return page(s) }

func (s Summary) title() string {
	if s.Series == nil {
		return "Patch series"
	}
	return "[" + s.Series.SubjectPrefix() + "] series"
}

func (p Patch) title() string {
	if p.Subject != "" {
		return p.Subject
	}
	return p.Name
}

func totals(patches []Patch) string {
	var added, removed int
	for _, p := range patches {
		added += p.Stat.Added
		removed += p.Stat.Removed
	}
	plural := "es"
	if len(patches) == 1 {
		plural = ""
	}
	return fmt.Sprintf("%d patch%s: %+d lines added, %d lines deleted", len(patches), plural, added, removed)
}

func changeLog(c patchstream.ChangeLog) string {
	return strings.TrimSpace(strings.Join(c.Render(), "\n"))
}
