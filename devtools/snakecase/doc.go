// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Snakecase renames the fields of C structures from camel case to snake case.

Usage:

	$ snakecase [-w] fsp_s_upd.h

Every line ending in a semicolon has its last tab-separated word converted,
so that

	uint8_t	PortUsb20Enable[8];

becomes

	uint8_t	port_usb20_enable[8];

Other lines are only stripped of trailing spaces. The result is printed to
standard output, or written back to the file with -w.
*/
package main

import (
	_ "embed"

	"go.astrophena.name/patchkit/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
