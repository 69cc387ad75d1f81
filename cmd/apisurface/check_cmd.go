package main

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
)

func (c *cli) newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <manifest>...",
		Short: "Validate manifests and report every invalid declaration",
		Args:  usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.newPipeline(1)
			if err != nil {
				return err
			}

			var problems *multierror.Error
			for _, path := range args {
				count, err := p.Validate(path)
				if err != nil {
					problems = multierror.Append(problems, err)
					continue
				}
				fmt.Fprintf(c.stdout, "%s: ok declarations=%d\n", path, count)
			}
			if err := problems.ErrorOrNil(); err != nil {
				return exitCodeError{code: 1, err: err}
			}
			return nil
		},
	}
}
