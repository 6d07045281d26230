// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package diffstat counts the lines a patch adds and removes.
package diffstat

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.astrophena.name/patchkit/syncx"

	"github.com/sourcegraph/go-diff/diff"
)

// FileStat holds the statistics of a single file touched by a patch.
type FileStat struct {
	Name    string `json:"name"`
	Added   int    `json:"added"`
	Removed int    `json:"removed"`
}

// Stat holds the statistics of a patch.
type Stat struct {
	Files   []FileStat `json:"files,omitempty"`
	Added   int        `json:"added"`
	Removed int        `json:"removed"`
}

// String formats s the way git format-patch summarizes a diffstat.
func (s Stat) String() string {
	return fmt.Sprintf("%d files changed, %d insertions(+), %d deletions(-)", len(s.Files), s.Added, s.Removed)
}

// Parse computes statistics of a patch in git format-patch format. Only the
// part between the first "diff --git" line and the signature separator is
// looked at. A patch without a diff has empty statistics.
func Parse(lines []string) (Stat, error) {
	start := slices.IndexFunc(lines, func(l string) bool { return strings.HasPrefix(l, "diff --git ") })
	if start < 0 {
		return Stat{}, nil
	}
	region := lines[start:]
	if end := slices.Index(region, "-- "); end >= 0 {
		region = region[:end]
	}

	var b strings.Builder
	for _, l := range region {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	fds, err := diff.NewMultiFileDiffReader(strings.NewReader(b.String())).ReadAllFiles()
	if err != nil {
		return Stat{}, fmt.Errorf("parsing diff: %w", err)
	}

	var s Stat
	for _, fd := range fds {
		fs := FileStat{Name: fileName(fd)}
		for _, h := range fd.Hunks {
			for l := range strings.Lines(string(h.Body)) {
				switch l[0] {
				case '+':
					fs.Added++
				case '-':
					fs.Removed++
				}
			}
		}
		s.Files = append(s.Files, fs)
		s.Added += fs.Added
		s.Removed += fs.Removed
	}
	return s, nil
}

func fileName(fd *diff.FileDiff) string {
	if fd.NewName != "" && fd.NewName != "/dev/null" {
		return strings.TrimPrefix(fd.NewName, "b/")
	}
	return strings.TrimPrefix(fd.OrigName, "a/")
}

// Patch is the statistics of a named patch.
type Patch struct {
	Name string `json:"name"`
	Stat
}

// Collect computes statistics of many patches, at most limit at once. The
// result is sorted by name. Patches that fail to parse are left out and
// their errors returned together.
func Collect(ctx context.Context, patches map[string][]string, limit int) ([]Patch, error) {
	var (
		stats syncx.Map[string, Stat]
		errs  syncx.Map[string, error]
		wg    = syncx.NewLimitedWaitGroup(limit)
	)
	for name, lines := range patches {
		if ctx.Err() != nil {
			break
		}
		wg.Go(func() {
			if ctx.Err() != nil {
				return
			}
			s, err := Parse(lines)
			if err != nil {
				errs.Store(name, fmt.Errorf("%s: %w", name, err))
				return
			}
			stats.Store(name, s)
		})
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []Patch
	stats.Range(func(name string, s Stat) bool {
		out = append(out, Patch{Name: name, Stat: s})
		return true
	})
	slices.SortFunc(out, func(a, b Patch) int { return strings.Compare(a.Name, b.Name) })

	var failed []string
	errs.Range(func(name string, _ error) bool {
		failed = append(failed, name)
		return true
	})
	slices.Sort(failed)
	var all []error
	for _, name := range failed {
		err, _ := errs.Load(name)
		all = append(all, err)
	}
	return out, errors.Join(all...)
}
