package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hoppxi/framekit/config"
	"github.com/hoppxi/framekit/internal/manager"
	"github.com/hoppxi/framekit/internal/report"
	"github.com/hoppxi/framekit/pkg/marker"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// fileConfig is the shape of framekit.yaml.
type fileConfig struct {
	Threshold     int      `yaml:"threshold"`
	Highlight     string   `yaml:"highlight"`
	OnError       string   `yaml:"on_error"`
	Report        string   `yaml:"report"`
	WholeWord     bool     `yaml:"whole_word"`
	Backup        bool     `yaml:"backup"`
	ScriptTimeout string   `yaml:"script_timeout"`
	Targets       []string `yaml:"targets,omitempty"`
	Log           struct {
		File       string `yaml:"file"`
		MaxSize    int    `yaml:"max_size"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAge     int    `yaml:"max_age"`
		Compress   bool   `yaml:"compress"`
	} `yaml:"log"`
}

func prompt(r *bufio.Reader, w io.Writer, label, defaultValue string) string {
	fmt.Fprintf(w, "%s [%s]: ", label, defaultValue)
	input, _ := r.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultValue
	}
	return input
}

func confirm(r *bufio.Reader, w io.Writer, message string) bool {
	fmt.Fprintf(w, "%s (y/N): ", message)
	input, _ := r.ReadString('\n')
	input = strings.ToLower(strings.TrimSpace(input))
	return input == "y" || input == "yes"
}

// promptUntil asks again until check accepts the answer.
func promptUntil(r *bufio.Reader, w io.Writer, label, defaultValue string, check func(string) error) string {
	for {
		v := prompt(r, w, label, defaultValue)
		err := check(v)
		if err == nil {
			return v
		}
		fmt.Fprintf(w, "  %v\n", err)
	}
}

func askConfig(r *bufio.Reader, w io.Writer) fileConfig {
	var c fileConfig

	threshold := promptUntil(r, w, "Mark contents repeated at least", "2", func(s string) error {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return fmt.Errorf("%w: %s", marker.ErrInvalidThreshold, s)
		}
		return nil
	})
	c.Threshold, _ = strconv.Atoi(threshold)

	c.Highlight = promptUntil(r, w, "Highlight color", "red", func(s string) error {
		_, err := marker.ParseColor(s)
		return err
	})
	c.OnError = promptUntil(r, w, "When a frame cannot be changed (continue/abort)", "continue", func(s string) error {
		_, err := marker.ParsePolicy(s)
		return err
	})
	c.Report = promptUntil(r, w, "Show summaries in ("+strings.Join(report.Names(), "/")+")", "terminal", func(s string) error {
		if !report.Known(s) {
			return fmt.Errorf("unknown report %q", s)
		}
		return nil
	})

	c.WholeWord = confirm(r, w, "Replace whole words only?")
	c.Backup = !confirm(r, w, "Skip .bak copies when overwriting documents?")
	c.ScriptTimeout = "60s"

	c.Log.File = prompt(r, w, "Log file (empty for none)", "")
	c.Log.MaxSize = 10
	c.Log.MaxBackups = 3
	c.Log.MaxAge = 30
	c.Log.Compress = true

	return c
}

func newInitConfigCmd(a *app) *cobra.Command {
	var defaults bool

	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write a framekit.yaml",
		Long: "Write framekit.yaml to --config or the user config directory, asking for\n" +
			"each setting. With --defaults the commented default file is written as is.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()

			path := a.cfgFile
			if path == "" {
				path = manager.DefaultPath()
			}

			if _, err := os.Stat(path); err == nil {
				if !confirm(reader, out, path+" already exists. Overwrite?") {
					return nil
				}
			}

			data := config.DefaultConfig()
			if !defaults {
				var err error
				if data, err = yaml.Marshal(askConfig(reader, out)); err != nil {
					return err
				}
			}

			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0644); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}

			fmt.Fprintf(out, "Config written to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&defaults, "defaults", false, "write the default config without asking")
	return cmd
}
