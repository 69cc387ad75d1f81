package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	slogctx "github.com/veqryn/slog-context"

	"github.com/odvcencio/apisurface/internal/pipeline"
	"github.com/odvcencio/apisurface/internal/watch"
)

func (c *cli) newWatchCmd() *cobra.Command {
	var outPath string
	var rootName string
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch <manifest>",
		Short: "Re-render a manifest whenever it changes",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(outPath) == "" || outPath == pipeline.StdoutOutput {
				return usageErrorf("watch requires --out <file>")
			}
			if debounce < 0 {
				return usageErrorf("debounce must be >= 0")
			}
			if debounce == 0 {
				debounce = c.cfg.Debounce
			}

			p, err := c.newPipeline(1)
			if err != nil {
				return err
			}
			job := pipeline.Job{Input: args[0], Output: outPath, RootName: rootName}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if _, err := p.Run(ctx, job); err != nil {
				return err
			}
			slogctx.Info(ctx, "watching manifest", "input", job.Input, "debounce", debounce)

			return watch.Watch(ctx, []string{job.Input}, debounce, func(changed []string) {
				if _, err := p.Run(ctx, job); err != nil {
					slogctx.Error(ctx, "render failed", "input", job.Input, "err", err)
				}
			})
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "output file (required)")
	cmd.Flags().StringVar(&rootName, "root", "", "name of the root module (default: none)")
	cmd.Flags().DurationVar(&debounce, "debounce", 0, "quiet period before re-rendering (default from APISURFACE_WATCH_DEBOUNCE)")
	return cmd
}
