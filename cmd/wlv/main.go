// Command wlv validates and canonicalizes the dictionary files of one or
// more folders in place.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"time"

	"github.com/davecgh/go-spew/spew"

	"github.com/xylographe/SE-WordListValidator/internal/config"
	"github.com/xylographe/SE-WordListValidator/internal/diag"
	"github.com/xylographe/SE-WordListValidator/internal/pipeline"
	"github.com/xylographe/SE-WordListValidator/internal/report"
	"github.com/xylographe/SE-WordListValidator/internal/settings"
	"github.com/xylographe/SE-WordListValidator/internal/wordlist"
	"github.com/xylographe/SE-WordListValidator/internal/workcopy"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := runWithArgs(ctx, os.Args[1:], os.Stdout, os.Stderr, config.Load())
	stop()
	os.Exit(code)
}

type options struct {
	validate bool
	workers  int
	verbose  bool
	noColor  bool
	report   string
	dump     string
	recent   bool
}

func runWithArgs(ctx context.Context, args []string, stdout, stderr io.Writer, cfg config.Config) int {
	var opts options
	fs := flag.NewFlagSet("wlv", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.validate, "validate", false, "validate the dictionaries in the given folders")
	help := fs.Bool("?", false, "show this help")
	fs.IntVar(&opts.workers, "workers", runtime.NumCPU(), "number of files validated concurrently")
	fs.BoolVar(&opts.verbose, "verbose", false, "also print verbose diagnostics")
	fs.BoolVar(&opts.noColor, "no-color", false, "disable coloured output")
	fs.StringVar(&opts.report, "report", "", "write a Markdown report to `file`")
	fs.StringVar(&opts.dump, "dump", "", "write the parsed model of every valid file to `file`")
	fs.BoolVar(&opts.recent, "recent", false, "list recently validated folders")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: wlv -validate [options] <folder>...\n\n")
		fmt.Fprintln(stderr, "Validates and canonicalizes OCR fix, no-break-after, names and user dictionaries.")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Options:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *help {
		fs.Usage()
		return 0
	}

	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	prefs, err := settings.Load(cfg.SettingsFile)
	if err != nil {
		log.Warn("ignoring settings", "error", err)
		prefs = &settings.Settings{}
	}

	if opts.recent {
		for _, f := range prefs.RecentFolders {
			fmt.Fprintln(stdout, f)
		}
		return 0
	}
	if !opts.validate || fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	level := diag.Info
	if opts.verbose {
		level = diag.Verbose
	}
	console := diag.NewConsole(stdout, level, opts.noColor)

	failed, entries, docs := validateFolders(ctx, fs.Args(), opts.workers, console, prefs)

	if prefs.Path() != "" {
		if err := prefs.Save(); err != nil {
			log.Warn("could not save settings", "path", prefs.Path(), "error", err)
		}
	}
	if opts.report != "" {
		md := report.Build("SE-WordListValidator "+time.Now().Format(time.DateTime), entries)
		if err := os.WriteFile(opts.report, []byte(md), 0o644); err != nil {
			diag.Errorf(console, "Cannot write report: %v", err)
			failed = true
		}
	}
	if opts.dump != "" {
		if err := writeDump(opts.dump, docs); err != nil {
			diag.Errorf(console, "Cannot write dump: %v", err)
			failed = true
		}
	}

	if failed {
		return 1
	}
	return 0
}

// validateFolders validates every dictionary in folders. It reports whether
// any folder was missing or any file failed.
func validateFolders(ctx context.Context, folders []string, workers int, console *diag.Console, prefs *settings.Settings) (bool, []report.Entry, []*wordlist.Document) {
	var (
		failed  bool
		entries []report.Entry
		docs    []*wordlist.Document
	)
	for _, folder := range folders {
		info, err := os.Stat(folder)
		if err != nil || !info.IsDir() {
			diag.Errorf(console, "Folder not found: %s", folder)
			failed = true
			continue
		}
		prefs.AddRecent(folder)

		paths, err := dictionaries(folder)
		if err != nil {
			diag.Errorf(console, "%s: %v", folder, err)
			failed = true
			continue
		}
		diag.Infof(console, "Validating folder %s", folder)

		for _, res := range pipeline.RunBatch(ctx, paths, workers, pipeline.ValidateInPlace) {
			name := filepath.Base(res.Path)
			diag.Infof(console, "Validating file %s", name)
			for _, m := range res.Messages {
				console.Emit(m)
			}

			entry := report.Entry{
				File:     name,
				Kind:     res.Kind.String(),
				Valid:    !res.Failed(),
				Items:    res.Items,
				Changed:  res.Changed,
				Messages: res.Messages,
			}
			if res.Failed() {
				failed = true
				entry.Error = res.Err.Error()
				diag.Errorf(console, "%s: %v", name, res.Err)
			} else {
				docs = append(docs, res.Doc)
				if res.Changed {
					diag.Infof(console, "Updated %s", name)
				}
			}
			entries = append(entries, entry)
		}
	}
	return failed, entries, docs
}

// dictionaries lists the dictionary files of folder in processing order,
// skipping working copies left behind by an interrupted run.
func dictionaries(folder string) ([]string, error) {
	var paths []string
	for _, p := range wordlist.FilePatterns {
		files, err := wordlist.Files(folder, p.Kind)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if !workcopy.IsWorkingCopy(f) {
				paths = append(paths, f)
			}
		}
	}
	return paths, nil
}

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	DisableMethods:          true,
	SortKeys:                true,
}

func writeDump(path string, docs []*wordlist.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		fmt.Fprintf(f, "# %s\n", doc.Name)
		dumpConfig.Fdump(f, doc)
	}
	return f.Close()
}
