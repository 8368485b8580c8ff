package cmd

import (
	"github.com/hoppxi/framekit/internal/report"
	"github.com/hoppxi/framekit/pkg/marker"
	"github.com/hoppxi/framekit/pkg/rules"
	"github.com/hoppxi/framekit/pkg/svgdoc"
	"github.com/spf13/cobra"
)

func newWhereCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "where <expr> [file|dir]...",
		Short: "Mark text frames matching an expression",
		Long: "Mark every text frame for which the expression is true. Available values:\n" +
			"  content  the frame's text\n" +
			"  count    how many visible frames share that text\n" +
			"  layer    name of the frame's top-level layer\n" +
			"  visible  whether the frame's layers are shown\n" +
			"  length   number of characters in content\n" +
			"and functions contains, hasPrefix and hasSuffix, e.g.\n\n" +
			"  framekit where \"count >= 3 && layer != 'Legend'\" map.svg",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rule, err := rules.Compile(args[0])
			if err != nil {
				return err
			}

			opts := a.settings.Options()
			return a.each(cmd, args[1:], "where", func(doc *svgdoc.Document) (report.Summary, error) {
				frames := doc.TextFrames()
				counts := marker.Frequencies(frames)

				res, err := marker.MarkMatching(frames, opts, (*svgdoc.TextFrame).Mark, func(_ int, f *svgdoc.TextFrame) (bool, error) {
					return rule.Match(rules.Facts{
						Content: f.Content(),
						Count:   counts[f.Content()],
						Layer:   f.Layer(),
						Visible: f.Visible(),
					})
				})
				return summarize(res, markDetail(opts.Highlight)), err
			})
		},
	}
}
