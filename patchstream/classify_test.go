// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package patchstream

import (
	"testing"

	"go.astrophena.name/patchkit/testutil"
)

func TestClassify(t *testing.T) {
	body := view{state: stateBody, copyright: DefaultCopyright.Pattern}

	cases := map[string]struct {
		line string
		v    view
		want match
	}{
		"bug": {
			line: "BUG=chromium-os:13875",
			v:    body,
			want: match{kind: kindNoise, text: "BUG=chromium-os:13875"},
		},
		"reviewed-by anywhere": {
			line: "  Reviewed-by: Someone",
			v:    body,
			want: match{kind: kindNoise, text: "  Reviewed-by: Someone"},
		},
		"change-id must start the line": {
			line: "See Change-Id: I123",
			v:    body,
			want: match{kind: kindPlain, text: "See Change-Id: I123"},
		},
		"blank after noise": {
			line: "  ",
			v:    view{state: stateBody, skipBlank: true},
			want: match{kind: kindSkippedBlank, text: "  "},
		},
		"blank without noise": {
			line: "",
			v:    body,
			want: match{kind: kindPlain},
		},
		"cover start": {
			line: "Cover-letter:",
			v:    body,
			want: match{kind: kindCoverStart, text: "Cover-letter:"},
		},
		"section end": {
			line: "END",
			v:    view{state: stateBody, section: sectionCover},
			want: match{kind: kindSectionEnd, text: "END"},
		},
		"section text looks like a directive": {
			line: "Series-to: nobody",
			v:    view{state: stateBody, section: sectionNotes},
			want: match{kind: kindSectionLine, text: "Series-to: nobody"},
		},
		"change line": {
			line: "- Fix the thing",
			v:    view{state: stateBody, section: sectionChange},
			want: match{kind: kindChangeLine, text: "- Fix the thing"},
		},
		"change end": {
			line: "",
			v:    view{state: stateBody, section: sectionChange},
			want: match{kind: kindChangeEnd},
		},
		"change end at signoff": {
			line: "Signed-off-by: A <a@b.c>",
			v:    view{state: stateBody, section: sectionChange},
			want: match{kind: kindChangeEnd, text: "Signed-off-by: A <a@b.c>", key: "Signed-off-by"},
		},
		"change end at separator": {
			line: "---",
			v:    view{state: stateBody, section: sectionChange},
			want: match{kind: kindChangeEnd, text: "---"},
		},
		"copyright": {
			line: "+ * Copyright (c) 2011, Google Inc. All rights reserved.",
			v:    body,
			want: match{kind: kindCopyright, text: "+ * Copyright (c) 2011, Google Inc. All rights reserved."},
		},
		"series": {
			line: "Series-cc: a, b",
			v:    body,
			want: match{kind: kindSeries, text: "Series-cc: a, b", key: "cc", value: "a, b"},
		},
		"tag": {
			line: "Acked-by: A <a@b.c>",
			v:    body,
			want: match{kind: kindTag, text: "Acked-by: A <a@b.c>", key: "Acked-by", value: "A <a@b.c>"},
		},
		"commit in log mode": {
			line: "commit 656c9a8c31fa65859d924cd21da920d6ba537fad",
			v:    view{state: stateBody, section: sectionCover, logMode: true},
			want: match{kind: kindCommit, text: "commit 656c9a8c31fa65859d924cd21da920d6ba537fad", value: "656c9a8c31fa65859d924cd21da920d6ba537fad"},
		},
		"commit in a patch": {
			line: "commit 656c9a8c31fa65859d924cd21da920d6ba537fad",
			v:    body,
			want: match{kind: kindPlain, text: "commit 656c9a8c31fa65859d924cd21da920d6ba537fad"},
		},
		"indented log message": {
			line: "    Series-version: 3",
			v:    view{state: stateBody, logMode: true},
			want: match{kind: kindSeries, text: "Series-version: 3", key: "version", value: "3"},
		},
		"diff keeps metadata": {
			line: "+Signed-off-by: A <a@b.c>",
			v:    view{state: stateDiff, copyright: DefaultCopyright.Pattern},
			want: match{kind: kindPlain, text: "+Signed-off-by: A <a@b.c>"},
		},
		"diff copyright": {
			line: "+ * Copyright (c) 2011, Google Inc. All rights reserved.",
			v:    view{state: stateDiff, copyright: DefaultCopyright.Pattern},
			want: match{kind: kindCopyright, text: "+ * Copyright (c) 2011, Google Inc. All rights reserved."},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, classify(tc.line, tc.v), tc.want)
		})
	}
}

func TestKindString(t *testing.T) {
	testutil.AssertEqual(t, kindSkippedBlank.String(), "skipped-blank")
	testutil.AssertEqual(t, kindTag.String(), "tag")
}
