// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"go.astrophena.name/patchkit/cli"
	"go.astrophena.name/patchkit/cli/clitest"
	"go.astrophena.name/patchkit/testutil"
)

func TestRun(t *testing.T) {
	ar := testutil.ReadTxtar(t, filepath.Join("testdata", "upd.txtar"))
	want := string(testutil.TxtarFile(ar, "want.h"))

	newApp := func(t *testing.T) *app {
		dir := t.TempDir()
		testutil.ExtractTxtar(t, ar, dir)
		t.Chdir(dir)
		return new(app)
	}

	cases := map[string]clitest.Case[*app]{
		"no file": {
			Args:    []string{},
			WantErr: cli.ErrInvalidArgs,
		},
		"too many files": {
			Args:    []string{"in.h", "want.h"},
			WantErr: cli.ErrInvalidArgs,
		},
		"missing file": {
			Args:        []string{"nope.h"},
			WantErrType: &os.PathError{},
		},
		"stdout": {
			Args:         []string{"in.h"},
			WantInStdout: want,
			CheckFunc: func(t *testing.T, _ *app) {
				if got, _ := os.ReadFile("in.h"); string(got) == want {
					t.Error("in.h was rewritten without -w")
				}
			},
		},
		"write": {
			Args:         []string{"-w", "in.h"},
			WantInStderr: "INF converted file=in.h lines=3",
			CheckFunc: func(t *testing.T, _ *app) {
				got, err := os.ReadFile("in.h")
				if err != nil {
					t.Fatal(err)
				}
				testutil.AssertEqual(t, string(got), want)
			},
		},
	}

	clitest.Run(t, newApp, cases)
}
