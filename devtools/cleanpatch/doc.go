// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Cleanpatch removes review metadata from patches made by git format-patch
before they are sent upstream.

Usage:

	$ cleanpatch [flags] 0001-foo.patch 0002-bar.patch...

Lines such as BUG=, TEST=, Change-Id:, Review URL:, Reviewed-on: and
Reviewed-by: are dropped together with the blank line that follows them.
Trailer tags are sorted below the Signed-off-by: line, legacy copyright
notices are replaced and suspicious lines are reported as warnings.

Commit messages may carry directives describing the series as a whole:

	Series-to: u-boot@lists.denx.de
	Series-cc: Tom Rini <trini@ti.com>
	Series-version: 2
	Series-prefix: RFC
	Series-changes: 2
	- Use a microsecond timer

	Series-notes:
	Text for the cover letter only.
	END

	Cover-letter:
	Subject of the cover letter
	Body of the cover letter.
	END

Directives are removed from the patches. The change log of each commit is
added below its --- line. With -cover, the cover letter made by git
format-patch --cover-letter is filled in with the cover text, notes and the
change log of the whole series.

All patches are read before any of them is written, and nothing is written if
one of them cannot be cleaned. Originals are copied to the -backup directory
first. With -log, directives are collected from git log output instead:

	$ git log origin/master.. | cleanpatch -log - -cover 0000-cover-letter.patch *.patch

Cleanpatch reads an optional .cleanpatch.txtar archive from the current
directory. Its config.json file may contain:

	{
	  "copyright_from": "regular expression matching the old notice",
	  "copyright_to": "line that replaces it",
	  "backup": false
	}
*/
package main

import (
	_ "embed"

	"go.astrophena.name/patchkit/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
