package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odvcencio/apisurface/internal/config"
	"github.com/odvcencio/apisurface/internal/logging"
	"github.com/odvcencio/apisurface/internal/pipeline"
)

var version = "0.1.0"

const exitUsage = 2

type exitCodeError struct {
	code int
	err  error
}

func (e exitCodeError) Error() string {
	if e.err == nil {
		return "command failed"
	}
	return e.err.Error()
}

func (e exitCodeError) ExitCode() int {
	if e.code <= 0 {
		return 1
	}
	return e.code
}

func (e exitCodeError) Unwrap() error {
	return e.err
}

func usageError(err error) error {
	return exitCodeError{code: exitUsage, err: err}
}

func usageErrorf(format string, args ...any) error {
	return usageError(fmt.Errorf(format, args...))
}

// usageArgs marks positional argument failures as usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return usageError(err)
		}
		return nil
	}
}

type cli struct {
	stdout io.Writer
	stderr io.Writer

	envFile   string
	logLevel  string
	logFormat string
	cfg       config.Config
}

func newCLI(stdout, stderr io.Writer) *cli {
	return &cli{stdout: stdout, stderr: stderr, cfg: config.Default()}
}

func (c *cli) Run(args []string) error {
	root := c.newRootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func (c *cli) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "apisurface",
		Short:         "Render the public API surface of a declaration manifest",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageErrorf("unknown command %q", args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError(err)
	})

	root.PersistentFlags().StringVar(&c.envFile, "env-file", "", "load environment from file (default .env when present)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level: debug|info|warn|error")
	root.PersistentFlags().StringVar(&c.logFormat, "log-format", "", "log format: text|json")

	root.AddCommand(
		c.newRenderCmd(),
		c.newCheckCmd(),
		c.newBatchCmd(),
		c.newWatchCmd(),
		c.newStatsCmd(),
		c.newVersionCmd(),
	)
	return root
}

// setup loads configuration, applies flag overrides, and installs the logger
// on the command context.
func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.envFile)
	if err != nil {
		return usageError(err)
	}
	if strings.TrimSpace(c.logLevel) != "" {
		if cfg.LogLevel, err = config.ParseLevel(c.logLevel); err != nil {
			return usageError(err)
		}
	}
	if strings.TrimSpace(c.logFormat) != "" {
		if cfg.LogFormat, err = config.ParseFormat(c.logFormat); err != nil {
			return usageError(err)
		}
	}
	c.cfg = cfg

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.Setup(ctx, c.stderr, cfg.LogLevel, cfg.LogFormat))
	return nil
}

func (c *cli) newPipeline(concurrency int) (*pipeline.Pipeline, error) {
	if concurrency <= 0 {
		concurrency = c.cfg.Concurrency
	}
	return pipeline.New(pipeline.Options{
		RootName:    c.cfg.RootName,
		Concurrency: concurrency,
		CacheSize:   c.cfg.CacheSize,
		Stdout:      c.stdout,
	})
}

func (c *cli) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the apisurface version",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(c.stdout, "apisurface v%s\n", version)
			return err
		},
	}
}
