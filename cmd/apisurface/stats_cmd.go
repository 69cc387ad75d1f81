package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/apisurface/internal/pipeline"
	"github.com/odvcencio/apisurface/internal/stats"
)

func (c *cli) newStatsCmd() *cobra.Command {
	var rootName string
	var top int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats <manifest>",
		Short: "Report declaration counts and module sizes for a manifest",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if top <= 0 {
				return usageErrorf("top must be > 0")
			}

			p, err := c.newPipeline(1)
			if err != nil {
				return err
			}
			tree, err := p.Build(pipeline.Job{Input: args[0], RootName: rootName})
			if err != nil {
				return err
			}
			report, err := stats.Build(tree, stats.Options{TopModules: top})
			if err != nil {
				return err
			}

			if jsonOutput {
				return emitJSON(c.stdout, report)
			}

			fmt.Fprintf(c.stdout,
				"stats: nodes=%d depth=%d documented=%d undocumented=%d\n",
				report.NodeCount,
				report.MaxDepth,
				report.Documented,
				report.Undocumented,
			)
			if len(report.KindCounts) > 0 {
				fmt.Fprintln(c.stdout, "kinds:")
				for _, kind := range report.KindCounts {
					fmt.Fprintf(c.stdout, "  %s count=%d\n", kind.Kind, kind.Count)
				}
			}
			if len(report.TopModules) > 0 {
				fmt.Fprintf(c.stdout, "top modules (limit=%d):\n", top)
				for _, module := range report.TopModules {
					fmt.Fprintf(c.stdout, "  %s items=%d children=%d\n", module.Path, module.Items, module.Children)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&rootName, "root", "", "name of the root module (default: none)")
	cmd.Flags().IntVar(&top, "top", 10, "number of largest modules to list")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit JSON output")
	return cmd
}
