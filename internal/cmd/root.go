package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/hoppxi/framekit/internal/logging"
	"github.com/hoppxi/framekit/internal/manager"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var Version = "0.1.0"

// flagKeys maps flag names to the config keys they override.
var flagKeys = map[string]string{
	"threshold":  "threshold",
	"highlight":  "highlight",
	"on-error":   "on_error",
	"report":     "report",
	"whole-word": "whole_word",
	"backup":     "backup",
	"timeout":    "script_timeout",
}

// app is the state shared by the commands of one invocation.
type app struct {
	cfgFile    string
	dryRun     bool
	out        string
	selectFile bool

	settings manager.Settings
	runID    string
	closer   io.Closer
}

func bindFlags(flags *pflag.FlagSet, v *viper.Viper) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) setup(cmd *cobra.Command) error {
	v, err := manager.Config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if err := bindFlags(cmd.Flags(), v); err != nil {
		return err
	}

	a.settings, err = manager.Resolve(v)
	if err != nil {
		return err
	}

	a.runID = uuid.NewString()
	a.closer, err = logging.Setup(a.settings.Log, fmt.Sprintf("[%s] ", a.runID[:8]))
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:     "framekit",
		Version: Version,
		Short:   "Batch edits for the text frames of vector artwork",
		Long: "framekit marks repeated labels, recolors listed ones and rewrites text in\n" +
			"Illustrator and Inkscape SVG exports, and generates the equivalent .jsx\n" +
			"scripts for use inside Illustrator.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "init-config" || cmd.Name() == "help" {
				return nil
			}
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.closer == nil {
				return nil
			}
			return a.closer.Close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default ./framekit.yaml, then the user config dir)")
	pf.String("highlight", "", "mark color: #rgb, #rrggbb, r,g,b or a CSS name (default red)")
	pf.String("on-error", "", "what to do when a frame cannot be changed: continue or abort")
	pf.String("report", "", "where to show the summary: terminal, dialog, notify or log")
	pf.Bool("backup", true, "keep a .bak copy when a document is overwritten")
	pf.BoolVar(&a.dryRun, "dry-run", false, "report what would change without writing anything")
	pf.StringVarP(&a.out, "out", "o", "", "write results here instead of in place (a directory when several inputs are given)")
	pf.BoolVar(&a.selectFile, "select", false, "pick the input with a file dialog when no path is given")

	root.AddCommand(newMarkCmd(a))
	root.AddCommand(newRecolorCmd(a))
	root.AddCommand(newReplaceCmd(a))
	root.AddCommand(newWhereCmd(a))
	root.AddCommand(newListCmd(a))
	root.AddCommand(newRunCmd(a))
	root.AddCommand(newJSXCmd(a))
	root.AddCommand(newWatchCmd(a))
	root.AddCommand(newInitConfigCmd(a))

	return root
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
