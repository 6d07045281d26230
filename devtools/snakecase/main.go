// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.astrophena.name/patchkit/cli"
	"go.astrophena.name/patchkit/logger"
	"go.astrophena.name/patchkit/patchstream"
	"go.astrophena.name/patchkit/snake"

	"github.com/natefinch/atomic"
)

func main() { cli.Main(new(app)) }

type app struct {
	write bool
}

func (a *app) Flags(fs *flag.FlagSet) {
	fs.BoolVar(&a.write, "w", false, "Write the result back to the file instead of standard output.")
}

func (a *app) Run(ctx context.Context) error {
	env := cli.GetEnv(ctx)
	if len(env.Args) != 1 {
		return fmt.Errorf("%w: want exactly one file", cli.ErrInvalidArgs)
	}
	path := env.Args[0]

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	lines, final, err := patchstream.ReadLines(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var changed int
	for i, line := range lines {
		out := snake.ConvertLine(line)
		if out != strings.TrimRight(line, " \t\r\n") {
			changed++
		}
		lines[i] = out
	}
	converted := patchstream.Join(lines, final)

	if !a.write {
		_, err := io.WriteString(env.Stdout, converted)
		return err
	}
	if err := atomic.WriteFile(path, strings.NewReader(converted)); err != nil {
		return err
	}
	logger.Info(ctx, "converted", slog.String("file", path), slog.Int("lines", changed))
	return nil
}
