package cmd

import (
	"errors"
	"fmt"
	"log"

	"github.com/hoppxi/framekit/internal/report"
	"github.com/hoppxi/framekit/pkg/mapping"
	"github.com/hoppxi/framekit/pkg/marker"
	"github.com/hoppxi/framekit/pkg/svgdoc"
	"github.com/spf13/cobra"
)

type pairFlags struct {
	old, new   string
	mapFile    string
	skipHeader bool
}

func (p *pairFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.old, "old", "", "text to find")
	cmd.Flags().StringVar(&p.new, "new", "", "replacement text")
	cmd.Flags().StringVarP(&p.mapFile, "map", "m", "", "file of old/new pairs, tab or space separated")
	cmd.Flags().BoolVar(&p.skipHeader, "skip-header", false, "ignore the first line of the map file")
}

// pairs returns the substitutions to apply, longest old first.
func (p *pairFlags) pairs(cmd *cobra.Command) ([]marker.Pair, error) {
	if p.mapFile == "" {
		if !cmd.Flags().Changed("old") {
			return nil, errors.New("nothing to replace (use --old/--new or --map)")
		}
		if p.old == "" {
			return nil, marker.ErrEmptyPattern
		}
		return []marker.Pair{{Old: p.old, New: p.new}}, nil
	}

	pairs, warnings, err := mapping.ReadPairsFile(p.mapFile, mapping.PairOptions{SkipHeader: p.skipHeader})
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		log.Printf("%s: %s", p.mapFile, w)
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("no pairs in %s", p.mapFile)
	}
	mapping.SortLongestFirst(pairs)
	return pairs, nil
}

func newReplaceCmd(a *app) *cobra.Command {
	var pf pairFlags

	cmd := &cobra.Command{
		Use:   "replace [file|dir]... (--old A --new B | --map pairs.txt)",
		Short: "Replace text inside text frames",
		Long: "Replace every occurrence of a literal string in the contents of every text\n" +
			"frame. With --map, each pair of the file is applied in turn, longest first.\n" +
			"A frame is counted once per pair however many occurrences it held.",
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := pf.pairs(cmd)
			if err != nil {
				return err
			}

			s := a.settings
			return a.each(cmd, args, "replace", func(doc *svgdoc.Document) (report.Summary, error) {
				results, total, err := marker.ReplaceBatch(doc.TextFrames(), pairs, s.WholeWord, s.Policy)

				sum := report.Summary{Count: total, Detail: "changed"}
				for _, r := range results {
					if len(pairs) > 1 && r.Matched > 0 {
						sum.Notes = append(sum.Notes, fmt.Sprintf("%q -> %q: %d", r.Old, r.New, r.Matched))
					}
					for _, f := range r.Failures {
						sum.Failures = append(sum.Failures, f)
					}
				}
				return sum, err
			})
		},
	}
	pf.register(cmd)
	cmd.Flags().Bool("whole-word", false, "only match old when it is not part of a longer word")
	return cmd
}
