package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/hoppxi/framekit/pkg/marker"
	"github.com/hoppxi/framekit/pkg/svgdoc"
	"github.com/spf13/cobra"
)

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func framesTable(doc *svgdoc.Document, onlyDuplicates bool, threshold int) *table.Table {
	frames := doc.TextFrames()
	counts := marker.Frequencies(frames)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "ID", "LAYER", "VISIBLE", "LOCKED", "COUNT", "CONTENTS")

	for _, f := range frames {
		n := counts[f.Content()]
		if onlyDuplicates && (!f.Visible() || n < threshold) {
			continue
		}
		t.Row(
			strconv.Itoa(f.Index()),
			f.ID(),
			f.Layer(),
			yesNo(f.Visible()),
			yesNo(f.Locked()),
			strconv.Itoa(n),
			f.Content(),
		)
	}
	return t
}

func layersTable(doc *svgdoc.Document) *table.Table {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("LAYER", "VISIBLE", "LOCKED", "FRAMES")

	for _, l := range doc.Layers() {
		t.Row(l.Name, yesNo(l.Visible), yesNo(l.Locked), strconv.Itoa(l.Frames))
	}
	return t
}

func newListCmd(a *app) *cobra.Command {
	var (
		layers     bool
		duplicates bool
	)

	cmd := &cobra.Command{
		Use:   "list [file|dir]...",
		Short: "Print the text frames of a document",
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := a.inputs(args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, in := range files {
				doc, err := svgdoc.Open(in)
				if err != nil {
					return err
				}

				var t *table.Table
				if layers {
					t = layersTable(doc)
				} else {
					t = framesTable(doc, duplicates, a.settings.Threshold)
				}

				if len(files) > 1 {
					fmt.Fprintln(out, in)
				}
				fmt.Fprintln(out, t.String())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&layers, "layers", false, "list layers instead of text frames")
	cmd.Flags().BoolVarP(&duplicates, "duplicates", "d", false, "only list frames the mark command would mark")
	cmd.Flags().Int("threshold", 2, "minimum count for --duplicates")
	return cmd
}
