package cmd

import (
	"errors"

	"github.com/hoppxi/framekit/internal/report"
	"github.com/hoppxi/framekit/pkg/mapping"
	"github.com/hoppxi/framekit/pkg/marker"
	"github.com/hoppxi/framekit/pkg/svgdoc"
	"github.com/spf13/cobra"
)

var errNoTargets = errors.New("no targets (use --targets or set targets in the config)")

// loadTargets reads the list file when given, else the configured targets.
func loadTargets(path string, configured []string) ([]string, error) {
	if path == "" {
		if len(configured) == 0 {
			return nil, errNoTargets
		}
		return configured, nil
	}

	targets, err := mapping.ReadTargetsFile(path)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, errNoTargets
	}
	return targets, nil
}

func newRecolorCmd(a *app) *cobra.Command {
	var targetsFile string

	cmd := &cobra.Command{
		Use:   "recolor [file|dir]... --targets list.txt",
		Short: "Mark text frames whose contents appear in a list",
		Long: "Mark every text frame, visible or not, whose contents exactly equal one\n" +
			"of the targets. Targets are read one per line from --targets, or taken\n" +
			"from the targets key of the config.",
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, err := loadTargets(targetsFile, a.settings.Targets)
			if err != nil {
				return err
			}

			opts := a.settings.Options()
			return a.each(cmd, args, "recolor", func(doc *svgdoc.Document) (report.Summary, error) {
				res, err := marker.MarkListed(doc.TextFrames(), targets, opts, (*svgdoc.TextFrame).Mark)
				return summarize(res, markDetail(opts.Highlight)), err
			})
		},
	}
	cmd.Flags().StringVarP(&targetsFile, "targets", "t", "", "file with one target per line")
	return cmd
}
