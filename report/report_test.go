// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package report

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"os"
	"strings"
	"testing"

	"go.astrophena.name/patchkit/testutil"
)

var update = flag.Bool("update", false, "update golden files in testdata")

func TestHTML(t *testing.T) {
	testutil.RunGolden(t, "testdata/*.json", func(t *testing.T, match string) []byte {
		b, err := os.ReadFile(match)
		if err != nil {
			t.Fatal(err)
		}
		s := testutil.UnmarshalJSON[Summary](t, b)
		var buf bytes.Buffer
		if err := HTML(s).Render(context.Background(), &buf); err != nil {
			t.Fatal(err)
		}
		return buf.Bytes()
	}, *update)
}

func TestHTMLWithoutSeries(t *testing.T) {
	var buf bytes.Buffer
	if err := HTML(Summary{Patches: []Patch{{Name: "0001-a.patch"}}}).Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	got := buf.String()
	for _, want := range []string{
		"<h1>Patch series</h1>",
		"<p>1 patch: +0 lines added, 0 lines deleted</p>",
		"<td>0001-a.patch</td>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("HTML does not contain %q:\n%s", want, got)
		}
	}
}

func TestHTMLEscapes(t *testing.T) {
	var buf bytes.Buffer
	s := Summary{Patches: []Patch{{
		Name:     "0001-a.patch",
		Subject:  "Fix <script> handling",
		Warnings: []string{"Changed copyright from '+ * (c) <x>'"},
	}}}
	if err := HTML(s).Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	got := buf.String()
	for _, want := range []string{
		"<td>Fix &lt;script&gt; handling</td>",
		"<li>Changed copyright from &#39;+ * (c) &lt;x&gt;&#39;</li>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("HTML does not contain %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("HTML contains unescaped subject:\n%s", got)
	}
}

func TestHTMLCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	if err := HTML(Summary{}).Render(ctx, &buf); !errors.Is(err, context.Canceled) {
		t.Fatalf("Render() = %v, want %v", err, context.Canceled)
	}
	testutil.AssertEqual(t, buf.String(), "")
}

func TestText(t *testing.T) {
	cases := map[string]struct {
		in   Summary
		want string
	}{
		"clean": {
			in:   Summary{Patches: []Patch{{Name: "0001-a.patch"}, {Name: "0002-b.patch"}}},
			want: "Cleaned 2 patches\n",
		},
		"warnings": {
			in: Summary{Patches: []Patch{
				{Name: "0001-a.patch", Warnings: []string{"Line 3 has space before tab", "Found 1 lines after TEST="}},
				{Name: "0002-b.patch"},
			}},
			want: "2 warnings for 0001-a.patch:\n" +
				"\tLine 3 has space before tab\n" +
				"\tFound 1 lines after TEST=\n" +
				"\n" +
				"Cleaned 2 patches\n",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Text(&buf, tc.in); err != nil {
				t.Fatal(err)
			}
			testutil.AssertEqual(t, buf.String(), tc.want)
			testutil.AssertEqual(t, tc.in.Warnings(), strings.Count(tc.want, "\t"))
		})
	}
}
