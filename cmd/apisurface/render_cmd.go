package main

import (
	"github.com/spf13/cobra"

	"github.com/odvcencio/apisurface/internal/pipeline"
)

func (c *cli) newRenderCmd() *cobra.Command {
	var outPath string
	var rootName string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "render <manifest>",
		Short: "Render one manifest as an API surface listing",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.newPipeline(1)
			if err != nil {
				return err
			}
			job := pipeline.Job{Input: args[0], Output: outPath, RootName: rootName}

			if jsonOutput {
				tree, err := p.Build(job)
				if err != nil {
					return err
				}
				return emitJSON(c.stdout, tree)
			}

			_, err = p.Run(cmd.Context(), job)
			return err
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "write output to file instead of stdout")
	cmd.Flags().StringVar(&rootName, "root", "", "name of the root module (default: none)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit the surface tree as JSON")
	return cmd
}
