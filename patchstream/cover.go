// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package patchstream

import (
	"fmt"
	"strings"
)

// blurb is the placeholder git format-patch --cover-letter leaves for the
// cover letter body.
const blurb = "*** BLURB HERE ***"

// InsertCover fills in a cover letter generated by git format-patch for a
// series of count patches. The Subject: line becomes
//
//	Subject: [RFC PATCH v2 0/<count>] <first cover line>
//
// and the blurb placeholder is replaced by the rest of the cover text, the
// series notes and the series change log.
func InsertCover(lines []string, s *Series, count int) ([]string, error) {
	if s.Cover == nil {
		return nil, ErrNoCover
	}
	var subject string
	if len(s.Cover) > 0 {
		subject = s.Cover[0]
	}

	out := make([]string, 0, len(lines)+len(s.Cover)+len(s.Notes))
	var subjectDone bool
	for _, line := range lines {
		switch {
		case !subjectDone && strings.HasPrefix(line, "Subject:"):
			out = append(out, fmt.Sprintf("Subject: [%s 0/%d] %s", s.SubjectPrefix(), count, subject))
			subjectDone = true
		case strings.HasPrefix(line, blurb):
			out = append(out, coverBody(s)...)
		default:
			out = append(out, line)
		}
	}
	return out, nil
}

func coverBody(s *Series) []string {
	var body []string
	if len(s.Cover) > 1 {
		body = append(body, s.Cover[1:]...)
	}
	if len(s.Notes) > 0 {
		body = append(body, "")
		body = append(body, s.Notes...)
	}
	if log := s.Changes.Render(); len(log) > 0 {
		body = append(body, "")
		body = append(body, log...)
	}
	return body
}
