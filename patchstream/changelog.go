// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package patchstream

import (
	"fmt"
	"maps"
	"slices"
)

// ChangeLog maps a series version to the changes made in it, in the order
// they were first seen.
type ChangeLog map[int][]string

// Add records line as a change in version. It reports whether the line was
// new; identical lines are only kept once per version.
func (c ChangeLog) Add(version int, line string) bool {
	if slices.Contains(c[version], line) {
		return false
	}
	c[version] = append(c[version], line)
	return true
}

// Merge adds every change of o to c.
func (c ChangeLog) Merge(o ChangeLog) {
	for _, v := range o.Versions() {
		for _, line := range o[v] {
			c.Add(v, line)
		}
	}
}

// Versions returns the versions that have changes, in ascending order.
func (c ChangeLog) Versions() []int {
	return slices.Sorted(maps.Keys(c))
}

// Render formats the change log as it appears below the diff separator:
//
//	Changes in v1:
//	- first change
//
//	Changes in v2:
//	- second change
//
// The result ends with a blank line unless the log is empty.
func (c ChangeLog) Render() []string {
	var out []string
	for i, v := range c.Versions() {
		if i > 0 {
			out = append(out, "")
		}
		out = append(out, fmt.Sprintf("Changes in v%d:", v))
		out = append(out, c[v]...)
	}
	if len(out) > 0 {
		out = append(out, "")
	}
	return out
}
