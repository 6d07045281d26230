// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package snake converts camel-case identifiers to snake case.
package snake

import (
	"regexp"
	"strings"
)

var (
	reWord  = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	reUpper = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// Convert converts a camel-case name to snake case:
//
//	CamelCase     -> camel_case
//	getHTTPStatus -> get_http_status
//	_privateName  -> _private_name
func Convert(name string) string {
	lead := strings.HasPrefix(name, "_")
	if lead {
		name = name[1:]
	}
	name = reWord.ReplaceAllString(name, "${1}_${2}")
	name = strings.ToLower(reUpper.ReplaceAllString(name, "${1}_${2}"))
	if lead {
		name = "_" + name
	}
	return name
}

// ConvertLine converts the name declared by a line of a C struct, such as
//
//	uint8_t	EnableSata;
//	uint16_t	PortUsb20Enable[8];
//
// The name is the last tab-separated word before the semicolon. Other lines,
// including the end of a typedef, are returned with trailing space removed.
func ConvertLine(line string) string {
	line = strings.TrimRight(line, " \t\r\n")
	decl, ok := strings.CutSuffix(line, ";")
	if !ok {
		return line
	}
	words := strings.Split(decl, "\t")
	word := words[len(words)-1]
	if strings.HasPrefix(word, "}") {
		return line
	}

	var suffix string
	if i := strings.IndexByte(word, '['); i >= 0 {
		word, suffix = word[:i], word[i:]
	}
	word = Convert(word)
	word = strings.ReplaceAll(word, "__", "_")
	word = strings.ReplaceAll(word, " _", " ")

	words[len(words)-1] = word + suffix
	return strings.Join(words, "\t") + ";"
}
