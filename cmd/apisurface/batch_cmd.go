package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odvcencio/apisurface/internal/pipeline"
)

func (c *cli) newBatchCmd() *cobra.Command {
	var outDir string
	var concurrency int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "batch <manifest>...",
		Short: "Render several manifests concurrently",
		Args:  usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if concurrency < 0 {
				return usageErrorf("concurrency must be >= 0")
			}
			if jsonOutput && strings.TrimSpace(outDir) == "" {
				return usageErrorf("--json requires --out-dir")
			}
			p, err := c.newPipeline(concurrency)
			if err != nil {
				return err
			}

			jobs := make([]pipeline.Job, 0, len(args))
			for _, input := range args {
				job := pipeline.Job{Input: input}
				if strings.TrimSpace(outDir) != "" {
					job.Output = outputPathFor(outDir, input)
				}
				jobs = append(jobs, job)
			}

			results, err := p.RunBatch(cmd.Context(), jobs)
			if err != nil {
				return err
			}
			if jsonOutput {
				return emitJSON(c.stdout, results)
			}
			if strings.TrimSpace(outDir) == "" {
				return nil
			}
			for _, result := range results {
				status := "written"
				if result.Skipped {
					status = "unchanged"
				}
				fmt.Fprintf(c.stdout, "%s -> %s nodes=%d bytes=%d %s\n", result.Input, result.Output, result.Nodes, result.Bytes, status)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out-dir", "", "write <out-dir>/<name>.rs per manifest instead of stdout")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "parallel passes (default from APISURFACE_CONCURRENCY)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit pass results as JSON (requires --out-dir)")
	return cmd
}
