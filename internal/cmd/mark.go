package cmd

import (
	"github.com/hoppxi/framekit/internal/report"
	"github.com/hoppxi/framekit/pkg/marker"
	"github.com/hoppxi/framekit/pkg/svgdoc"
	"github.com/spf13/cobra"
)

func markDetail(c marker.Color) string {
	return "marked " + c.String()
}

func newMarkCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mark [file|dir]...",
		Short: "Mark text frames whose contents repeat",
		Long: "Mark every visible text frame whose contents occur on at least --threshold\n" +
			"visible frames. Frames on hidden layers are neither counted nor marked.",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := a.settings.Options()
			return a.each(cmd, args, "mark", func(doc *svgdoc.Document) (report.Summary, error) {
				res, err := marker.MarkDuplicates(doc.TextFrames(), opts, (*svgdoc.TextFrame).Mark)
				return summarize(res, markDetail(opts.Highlight)), err
			})
		},
	}
	cmd.Flags().Int("threshold", 2, "minimum number of visible frames sharing the contents")
	return cmd
}
