package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/hoppxi/framekit/internal/report"
	"github.com/hoppxi/framekit/pkg/scripthost"
	"github.com/hoppxi/framekit/pkg/svgdoc"
	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script.jsx> [file|dir]...",
		Short: "Run an Illustrator script against documents",
		Long: "Run an ExtendScript (.jsx) written for Illustrator against each document, as\n" +
			"if it were the active document. The script sees app.activeDocument.textFrames\n" +
			"with contents, layer and textRange.characterAttributes.fillColor, and may\n" +
			"call alert() and $.writeln().",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script := args[0]
			src, err := os.ReadFile(script)
			if err != nil {
				return fmt.Errorf("failed to read script: %w", err)
			}
			name := filepath.Base(script)

			opts := scripthost.Options{
				Timeout: a.settings.ScriptTimeout,
				Alert: func(msg string) {
					log.Printf("%s: alert: %s", name, msg)
				},
			}

			return a.each(cmd, args[1:], "run", func(doc *svgdoc.Document) (report.Summary, error) {
				res, err := scripthost.Run(cmd.Context(), doc, string(src), name, opts)
				return report.Summary{
					Count:  res.Marked + res.Edited,
					Detail: "changed by " + name,
					Notes:  res.Alerts,
				}, err
			})
		},
	}
	cmd.Flags().Duration("timeout", scripthost.DefaultTimeout, "stop a script that runs longer than this")
	return cmd
}
