package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/atotto/clipboard"
	"github.com/hoppxi/framekit/pkg/jsxgen"
	"github.com/spf13/cobra"
)

// emit writes a generated script to --out, the clipboard or stdout.
func emit(cmd *cobra.Command, a *app, toClipboard bool, src string) error {
	if a.out != "" {
		if err := os.WriteFile(a.out, []byte(src), 0644); err != nil {
			return fmt.Errorf("failed to write script: %w", err)
		}
		log.Printf("Script written to %s", a.out)
	}

	if toClipboard {
		if err := clipboard.WriteAll(src); err != nil {
			return fmt.Errorf("failed to copy script: %w", err)
		}
		log.Println("Script copied to clipboard")
	}

	if a.out == "" && !toClipboard {
		_, err := fmt.Fprint(cmd.OutOrStdout(), src)
		return err
	}
	return nil
}

func newJSXCmd(a *app) *cobra.Command {
	var toClipboard bool

	cmd := &cobra.Command{
		Use:   "jsx",
		Short: "Generate Illustrator scripts",
		Long: "Generate ExtendScript (.jsx) files that perform the same passes inside\n" +
			"Illustrator. Use File > Scripts > Other Script... to run them.",
	}
	cmd.PersistentFlags().BoolVar(&toClipboard, "clipboard", false, "copy the script to the clipboard")

	duplicates := &cobra.Command{
		Use:   "duplicates",
		Short: "Script that marks repeated text frames",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := jsxgen.Duplicates(a.settings.Threshold, a.settings.Highlight)
			if err != nil {
				return err
			}
			return emit(cmd, a, toClipboard, src)
		},
	}
	duplicates.Flags().Int("threshold", 2, "minimum number of visible frames sharing the contents")

	var targetsFile string
	recolor := &cobra.Command{
		Use:   "recolor --targets list.txt",
		Short: "Script that marks listed text frames",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, err := loadTargets(targetsFile, a.settings.Targets)
			if err != nil {
				return err
			}
			src, err := jsxgen.Recolor(targets, a.settings.Highlight)
			if err != nil {
				return err
			}
			return emit(cmd, a, toClipboard, src)
		},
	}
	recolor.Flags().StringVarP(&targetsFile, "targets", "t", "", "file with one target per line")

	var pf pairFlags
	replace := &cobra.Command{
		Use:   "replace (--old A --new B | --map pairs.txt)",
		Short: "Script that replaces text in text frames",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := pf.pairs(cmd)
			if err != nil {
				return err
			}
			src, err := jsxgen.Replace(pairs, a.settings.WholeWord)
			if err != nil {
				return err
			}
			return emit(cmd, a, toClipboard, src)
		},
	}
	pf.register(replace)
	replace.Flags().Bool("whole-word", false, "only match old when it is not part of a longer word")

	cmd.AddCommand(duplicates, recolor, replace)
	return cmd
}
