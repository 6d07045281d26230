// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"go.astrophena.name/patchkit/cli"
	"go.astrophena.name/patchkit/diffstat"
	"go.astrophena.name/patchkit/logger"
	"go.astrophena.name/patchkit/patchstream"
	"go.astrophena.name/patchkit/report"

	"github.com/natefinch/atomic"
	"golang.org/x/tools/txtar"
)

const configFile = ".cleanpatch.txtar"

type config struct {
	CopyrightFrom string `json:"copyright_from"`
	CopyrightTo   string `json:"copyright_to"`
	Backup        *bool  `json:"backup"`
}

// loadConfig reads config.json from the archive at path. A missing archive
// is an empty config.
func loadConfig(path string) (*config, error) {
	cfg := new(config)
	ar, err := txtar.ParseFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	for _, f := range ar.Files {
		if f.Name == "config.json" {
			if err := json.Unmarshal(f.Data, cfg); err != nil {
				return nil, fmt.Errorf("%s: config.json: %w", path, err)
			}
		}
	}
	return cfg, nil
}

func (cfg *config) copyright() (*patchstream.CopyrightRule, error) {
	if cfg.CopyrightFrom == "" {
		return nil, nil
	}
	re, err := regexp.Compile(cfg.CopyrightFrom)
	if err != nil {
		return nil, fmt.Errorf("copyright_from: %w", err)
	}
	return &patchstream.CopyrightRule{Pattern: re, Replace: cfg.CopyrightTo}, nil
}

func main() { cli.Main(new(app)) }

type app struct {
	logFile   string
	coverFile string
	htmlFile  string
	dry       bool
	json      bool
	verbose   bool

	backupDir string
	backupSet bool
}

func (a *app) Flags(fs *flag.FlagSet) {
	fs.StringVar(&a.logFile, "log", "", "Collect series directives from git log output in `file` (- for stdin).")
	fs.StringVar(&a.coverFile, "cover", "", "Fill in the cover letter `file` made by git format-patch.")
	fs.StringVar(&a.htmlFile, "html", "", "Write an HTML report to `file`.")
	fs.BoolVar(&a.dry, "dry", false, "Report what would change without writing any file.")
	fs.BoolVar(&a.json, "json", false, "Print the series and per-patch results as JSON.")
	fs.BoolVar(&a.verbose, "v", false, "Enable debug logging.")
	fs.Func("backup", "Copy originals to `dir` before rewriting them (default a new temporary directory, empty to disable).", func(s string) error {
		a.backupDir, a.backupSet = s, true
		return nil
	})
}

type patch struct {
	path  string
	lines []string
	final bool // last line ends with a newline
	res   *patchstream.Result
}

func (a *app) Run(ctx context.Context) error {
	env := cli.GetEnv(ctx)
	if a.verbose {
		logger.LevelVar(ctx).Set(slog.LevelDebug)
	}

	var paths []string
	for _, path := range env.Args {
		if path != a.coverFile {
			paths = append(paths, path)
		}
	}
	if len(paths) == 0 && a.logFile == "" && a.coverFile == "" {
		return fmt.Errorf("%w: no patches given", cli.ErrInvalidArgs)
	}

	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}
	rule, err := cfg.copyright()
	if err != nil {
		return err
	}

	series := patchstream.NewSeries()
	if a.logFile != "" {
		if err := a.scanLog(ctx, env, series, rule); err != nil {
			return err
		}
	}

	// Read everything before writing anything.
	patches := make([]*patch, 0, len(paths))
	for _, path := range paths {
		lines, final, err := readLines(path)
		if err != nil {
			return err
		}
		patches = append(patches, &patch{path: path, lines: lines, final: final})
	}
	var (
		cover      []string
		coverFinal bool
	)
	if a.coverFile != "" {
		if cover, coverFinal, err = readLines(a.coverFile); err != nil {
			return err
		}
	}

	// Directives found in git log are in the patches as well, so they are
	// only applied once.
	target := series
	if a.logFile != "" {
		target = patchstream.NewSeries()
	}
	for _, p := range patches {
		p.res, err = patchstream.ProcessLines(p.lines, target, patchstream.Options{
			Label:     p.path,
			Copyright: rule,
		})
		if err != nil {
			return err
		}
		p.res.MissingNewline = !p.final
		logger.Debug(ctx, "cleaned patch",
			slog.String("file", p.path),
			slog.Int("lines", len(p.lines)),
			slog.Int("warnings", len(p.res.Warnings)),
		)
	}

	if cover != nil {
		if cover, err = patchstream.InsertCover(cover, series, len(patches)); err != nil {
			return err
		}
	}

	summary, err := summarize(ctx, series, patches)
	if err != nil {
		return err
	}

	if a.dry {
		for _, p := range patches {
			env.Logf("Would remove %d and add %d lines in %s", p.res.Removed(len(p.lines)), p.res.Added, p.path)
		}
	} else if err := a.write(ctx, cfg, patches, patchstream.Join(cover, coverFinal)); err != nil {
		return err
	}

	if a.htmlFile != "" {
		var buf bytes.Buffer
		if err := report.HTML(summary).Render(ctx, &buf); err != nil {
			return err
		}
		if err := atomic.WriteFile(a.htmlFile, &buf); err != nil {
			return err
		}
	}

	if a.json {
		b, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(env.Stdout, "%s\n", b)
		return err
	}
	return report.Text(env.Stdout, summary)
}

func (a *app) scanLog(ctx context.Context, env *cli.Env, series *patchstream.Series, rule *patchstream.CopyrightRule) error {
	var r io.Reader = env.Stdin
	label := "<stdin>"
	if a.logFile != "-" {
		f, err := os.Open(a.logFile)
		if err != nil {
			return err
		}
		defer f.Close()
		r, label = f, a.logFile
	}
	warnings, err := patchstream.ScanLog(r, series, patchstream.Options{Label: label, Copyright: rule})
	if err != nil {
		return err
	}
	for _, w := range warnings {
		logger.Warn(ctx, w, slog.String("log", label))
	}
	return nil
}

func summarize(ctx context.Context, series *patchstream.Series, patches []*patch) (report.Summary, error) {
	cleaned := make(map[string][]string, len(patches))
	for _, p := range patches {
		cleaned[p.path] = p.res.Lines
	}
	stats, err := diffstat.Collect(ctx, cleaned, runtime.GOMAXPROCS(0))
	if err != nil {
		return report.Summary{}, err
	}
	byName := make(map[string]diffstat.Stat, len(stats))
	for _, s := range stats {
		byName[s.Name] = s.Stat
	}

	summary := report.Summary{Series: series}
	for _, p := range patches {
		summary.Patches = append(summary.Patches, report.Patch{
			Name:     p.path,
			Subject:  subject(p.lines),
			Warnings: p.res.Warnings,
			Stat:     byName[p.path],
		})
	}
	return summary, nil
}

func (a *app) write(ctx context.Context, cfg *config, patches []*patch, cover string) error {
	dir, err := a.backup(cfg)
	if err != nil {
		return err
	}
	if dir != "" {
		originals := make([]string, 0, len(patches)+1)
		for _, p := range patches {
			originals = append(originals, p.path)
		}
		if a.coverFile != "" {
			originals = append(originals, a.coverFile)
		}
		for _, path := range originals {
			if err := copyFile(path, filepath.Join(dir, filepath.Base(path))); err != nil {
				return fmt.Errorf("backing up %s: %w", path, err)
			}
		}
		logger.Info(ctx, "backed up originals", slog.String("dir", dir))
	}

	for _, p := range patches {
		if err := atomic.WriteFile(p.path, strings.NewReader(p.res.Text())); err != nil {
			return err
		}
	}
	if a.coverFile != "" {
		return atomic.WriteFile(a.coverFile, strings.NewReader(cover))
	}
	return nil
}

// backup returns the directory originals are copied to, or an empty string
// if they are not kept.
func (a *app) backup(cfg *config) (string, error) {
	if a.backupSet {
		if a.backupDir == "" {
			return "", nil
		}
		return a.backupDir, os.MkdirAll(a.backupDir, 0o755)
	}
	if cfg.Backup != nil && !*cfg.Backup {
		return "", nil
	}
	return os.MkdirTemp("", "cleanpatch-")
}

func readLines(path string) (lines []string, final bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()
	lines, final, err = patchstream.ReadLines(f)
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", path, err)
	}
	return lines, final, nil
}

func copyFile(src, dst string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()
	return atomic.WriteFile(dst, f)
}

var reSubject = regexp.MustCompile(`^Subject: *(\[[^\]]*\] *)?(.*)`)

// subject returns the title of a patch without the [PATCH n/m] prefix.
func subject(lines []string) string {
	for _, l := range lines {
		if m := reSubject.FindStringSubmatch(l); m != nil {
			return m[2]
		}
		if l == "" {
			break
		}
	}
	return ""
}
