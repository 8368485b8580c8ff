package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hoppxi/framekit/internal/manager"
	"github.com/hoppxi/framekit/internal/report"
	"github.com/hoppxi/framekit/pkg/marker"
	"github.com/hoppxi/framekit/pkg/svgdoc"
	"github.com/ncruces/zenity"
	"github.com/spf13/cobra"
)

var errNoInput = errors.New("no input files (pass a path or use --select)")

// svgFiles lists the .svg files directly inside dir.
func svgFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".svg") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// inputs expands directory arguments and falls back to a file dialog.
func (a *app) inputs(args []string) ([]string, error) {
	if len(args) == 0 {
		if !a.selectFile {
			return nil, errNoInput
		}
		paths, err := zenity.SelectFileMultiple(
			zenity.Title("Select artwork"),
			zenity.FileFilters{
				{Name: "SVG files", Patterns: []string{"svg"}},
			},
		)
		if errors.Is(err, zenity.ErrCanceled) {
			return nil, errNoInput
		}
		if err != nil {
			return nil, fmt.Errorf("file dialog failed: %w", err)
		}
		args = paths
	}

	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		found, err := svgFiles(arg)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			log.Printf("No .svg files in %s", arg)
		}
		files = append(files, found...)
	}

	if len(files) == 0 {
		return nil, errNoInput
	}
	return files, nil
}

// outputPath is where the edited copy of in is written.
func (a *app) outputPath(in string, many bool) string {
	if a.out == "" {
		return in
	}
	if info, err := os.Stat(a.out); many || (err == nil && info.IsDir()) {
		return filepath.Join(a.out, filepath.Base(in))
	}
	return a.out
}

func backup(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path+".bak", data, 0644)
}

func (a *app) save(doc *svgdoc.Document, in, out string) error {
	if out == in && a.settings.Backup {
		if err := backup(in); err != nil {
			return fmt.Errorf("failed to back up %s: %w", in, err)
		}
	}
	if dir := filepath.Dir(out); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return doc.Save(out)
}

func reporter(cmd *cobra.Command, s manager.Settings) (report.Reporter, error) {
	return report.New(s.Report, cmd.OutOrStdout())
}

// pass edits one document and describes what it did. A non-nil error
// leaves the document unsaved.
type pass func(doc *svgdoc.Document) (report.Summary, error)

func summarize(res marker.Result, detail string) report.Summary {
	s := report.Summary{Count: res.Matched, Detail: detail}
	for _, f := range res.Failures {
		s.Failures = append(s.Failures, f)
	}
	return s
}

// each runs fn over every input, saving and reporting per document. With
// the abort policy the first failing document stops the run.
func (a *app) each(cmd *cobra.Command, args []string, action string, fn pass) error {
	files, err := a.inputs(args)
	if err != nil {
		return err
	}

	rep, err := reporter(cmd, a.settings)
	if err != nil {
		return err
	}

	var errs []error
	for _, in := range files {
		if err := a.process(rep, in, len(files) > 1, action, fn); err != nil {
			if a.settings.Policy == marker.Abort {
				return err
			}
			log.Printf("%s: %v", in, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *app) process(rep report.Reporter, in string, many bool, action string, fn pass) error {
	doc, err := svgdoc.Open(in)
	if err != nil {
		return err
	}

	s, err := fn(doc)
	s.RunID = a.runID
	s.Action = action
	s.File = in
	s.DryRun = a.dryRun
	if err != nil {
		return fmt.Errorf("%s %s: %w", action, in, err)
	}

	out := a.outputPath(in, many)
	if !a.dryRun && (s.Count > 0 || out != in) {
		if err := a.save(doc, in, out); err != nil {
			return fmt.Errorf("failed to save %s: %w", out, err)
		}
		if out != in {
			s.File = out
		}
	}

	if err := rep.Report(s); err != nil {
		log.Printf("Failed to report %s: %v", in, err)
	}
	return nil
}
