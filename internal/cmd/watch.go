package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/hoppxi/framekit/internal/manager"
	"github.com/hoppxi/framekit/internal/report"
	"github.com/hoppxi/framekit/pkg/marker"
	"github.com/hoppxi/framekit/pkg/svgdoc"
	"github.com/spf13/cobra"
)

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}

// checkWatchOutput refuses to write over the watched file, which would
// retrigger the watcher on every pass.
func (a *app) checkWatchOutput(in string) error {
	if a.out == "" {
		return errors.New("watch needs --out")
	}
	if samePath(in, a.outputPath(in, false)) {
		return fmt.Errorf("--out must differ from the watched file %s", in)
	}
	return nil
}

// watchRun re-runs the duplicate pass on one watched document. Config
// reloads and file events call markOnce from different goroutines.
type watchRun struct {
	a   *app
	cmd *cobra.Command
	in  string

	run sync.Mutex // held for a whole pass

	mu       sync.Mutex
	settings manager.Settings
}

func (w *watchRun) setSettings(s manager.Settings) {
	w.mu.Lock()
	w.settings = s
	w.mu.Unlock()
}

func (w *watchRun) markOnce() {
	w.run.Lock()
	defer w.run.Unlock()

	w.mu.Lock()
	s := w.settings
	w.mu.Unlock()

	rep, err := reporter(w.cmd, s)
	if err != nil {
		log.Printf("Watch: %v", err)
		return
	}
	opts := s.Options()
	err = w.a.process(rep, w.in, false, "watch", func(doc *svgdoc.Document) (report.Summary, error) {
		res, err := marker.MarkDuplicates(doc.TextFrames(), opts, (*svgdoc.TextFrame).Mark)
		return summarize(res, markDetail(opts.Highlight)), err
	})
	if err != nil {
		log.Printf("Watch: %v", err)
	}
}

func newWatchCmd(a *app) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch <file> --out <file>",
		Short: "Re-run the duplicate pass whenever a document is saved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := args[0]
			if _, err := os.Stat(in); err != nil {
				return err
			}
			if err := a.checkWatchOutput(in); err != nil {
				return err
			}

			w := &watchRun{a: a, cmd: cmd, in: in, settings: a.settings}
			w.markOnce()

			manager.Config.Watch(func() {
				s, err := manager.Resolve(manager.Config.Viper())
				if err != nil {
					log.Printf("Keeping previous settings: %v", err)
					return
				}
				w.setSettings(s)
				w.markOnce()
			})

			manager.Manage.StartWatcher(manager.FileWatcher(in, debounce, w.markOnce))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s. Press Ctrl+C to stop.\n", in)
			<-ctx.Done()

			fmt.Fprintln(cmd.OutOrStdout(), "\nStopping watcher...")
			manager.Manage.StopAll()
			return nil
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "wait this long after the last write before re-running")
	cmd.Flags().Int("threshold", 2, "minimum number of visible frames sharing the contents")
	return cmd
}
