// Package pipeline runs extraction passes: load a manifest, build the surface
// tree, render it, and write the text to its destination.
package pipeline

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-multierror"
	lru "github.com/hashicorp/golang-lru/v2"
	slogctx "github.com/veqryn/slog-context"
	"golang.org/x/sync/errgroup"

	"github.com/odvcencio/apisurface/internal/logging"
	"github.com/odvcencio/apisurface/pkg/manifest"
	"github.com/odvcencio/apisurface/pkg/model"
	"github.com/odvcencio/apisurface/pkg/render"
	"github.com/odvcencio/apisurface/pkg/surface"
)

// StdoutOutput selects the pipeline's stdout writer as a job destination.
const StdoutOutput = "-"

const defaultCacheSize = 256

type Options struct {
	// RootName names the root module when neither the job nor the manifest does.
	RootName    string
	Concurrency int
	// CacheSize bounds how many output files remember their last written digest.
	CacheSize int
	Stdout    io.Writer
	Registry  *manifest.Registry
}

type Job struct {
	Input string
	// Output is a file path; "" or "-" means stdout.
	Output   string
	RootName string
}

type Result struct {
	Input   string `json:"input"`
	Output  string `json:"output"`
	Nodes   int    `json:"nodes"`
	Bytes   int    `json:"bytes"`
	Skipped bool   `json:"skipped,omitempty"`
}

type Pipeline struct {
	registry    *manifest.Registry
	digests     *lru.Cache[string, [sha256.Size]byte]
	stdout      io.Writer
	stdoutMu    sync.Mutex
	rootName    string
	concurrency int
}

func New(opts Options) (*Pipeline, error) {
	size := opts.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	digests, err := lru.New[string, [sha256.Size]byte](size)
	if err != nil {
		return nil, fmt.Errorf("create digest cache: %w", err)
	}

	p := &Pipeline{
		registry:    opts.Registry,
		digests:     digests,
		stdout:      opts.Stdout,
		rootName:    strings.TrimSpace(opts.RootName),
		concurrency: opts.Concurrency,
	}
	if p.registry == nil {
		p.registry = manifest.NewRegistry()
	}
	if p.stdout == nil {
		p.stdout = os.Stdout
	}
	if p.concurrency <= 0 {
		p.concurrency = 1
	}
	return p, nil
}

// Build loads the job's manifest and builds its tree without rendering.
func (p *Pipeline) Build(job Job) (*model.Tree, error) {
	m, err := p.registry.Load(job.Input)
	if err != nil {
		return nil, err
	}
	tree, err := surface.Build(m.Declarations, surface.WithRootName(p.resolveRootName(job, m)))
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", job.Input, err)
	}
	return tree, nil
}

// Validate loads the manifest at path and reports every invalid declaration.
func (p *Pipeline) Validate(path string) (int, error) {
	m, err := p.registry.Load(path)
	if err != nil {
		return 0, err
	}
	if err := surface.Validate(m.Declarations, surface.WithRootName(p.resolveRootName(Job{Input: path}, m))); err != nil {
		return len(m.Declarations), fmt.Errorf("validate %s: %w", path, err)
	}
	return len(m.Declarations), nil
}

// Run performs one pass and writes its output.
func (p *Pipeline) Run(ctx context.Context, job Job) (Result, error) {
	ctx = logging.With(ctx, "input", job.Input)
	result, text, err := p.render(job)
	if err != nil {
		return Result{}, err
	}
	if isStdout(job.Output) {
		if err := p.writeStdout(text); err != nil {
			return Result{}, err
		}
		p.logResult(ctx, result)
		return result, nil
	}

	result, err = p.writeOutput(result, text)
	if err != nil {
		return Result{}, err
	}
	p.logResult(ctx, result)
	return result, nil
}

// RunBatch runs independent passes concurrently. Results keep job order;
// stdout output is written in job order once every pass has finished.
func (p *Pipeline) RunBatch(ctx context.Context, jobs []Job) ([]Result, error) {
	if err := checkDistinctOutputs(jobs); err != nil {
		return nil, err
	}

	results := make([]Result, len(jobs))
	stdoutText := make([][]byte, len(jobs))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.concurrency)
	jobCtxs := make([]context.Context, len(jobs))
	for i, job := range jobs {
		i, job := i, job
		jobCtxs[i] = logging.With(ctx, "input", job.Input)
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			result, text, err := p.render(job)
			if err != nil {
				return err
			}
			if isStdout(job.Output) {
				stdoutText[i] = text
				results[i] = result
				return nil
			}
			result, err = p.writeOutput(result, text)
			if err != nil {
				return err
			}
			results[i] = result
			p.logResult(jobCtxs[i], result)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	for i, text := range stdoutText {
		if text == nil {
			continue
		}
		if err := p.writeStdout(text); err != nil {
			return nil, err
		}
		p.logResult(jobCtxs[i], results[i])
	}
	return results, nil
}

func (p *Pipeline) render(job Job) (Result, []byte, error) {
	tree, err := p.Build(job)
	if err != nil {
		return Result{}, nil, err
	}

	var buf bytes.Buffer
	if err := render.Write(&buf, tree); err != nil {
		return Result{}, nil, fmt.Errorf("render %s: %w", job.Input, err)
	}

	output := job.Output
	if isStdout(output) {
		output = StdoutOutput
	}
	return Result{
		Input:  job.Input,
		Output: output,
		Nodes:  tree.NodeCount(),
		Bytes:  buf.Len(),
	}, buf.Bytes(), nil
}

func (p *Pipeline) resolveRootName(job Job, m model.Manifest) string {
	if name := strings.TrimSpace(job.RootName); name != "" {
		return name
	}
	if name := strings.TrimSpace(m.Root); name != "" {
		return name
	}
	return p.rootName
}

func (p *Pipeline) writeStdout(text []byte) error {
	p.stdoutMu.Lock()
	defer p.stdoutMu.Unlock()
	_, err := p.stdout.Write(text)
	return err
}

// writeOutput skips the write when this pipeline wrote the same bytes to the
// file before and the file still holds them.
func (p *Pipeline) writeOutput(result Result, text []byte) (Result, error) {
	key, err := filepath.Abs(result.Output)
	if err != nil {
		return Result{}, err
	}
	digest := sha256.Sum256(text)

	if previous, ok := p.digests.Get(key); ok && previous == digest && fileDigestIs(key, digest) {
		result.Skipped = true
		return result, nil
	}

	if err := writeFileAtomic(key, text); err != nil {
		return Result{}, fmt.Errorf("write %s: %w", result.Output, err)
	}
	p.digests.Add(key, digest)
	return result, nil
}

func fileDigestIs(path string, digest [sha256.Size]byte) bool {
	current, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return sha256.Sum256(current) == digest
}

func (p *Pipeline) logResult(ctx context.Context, result Result) {
	if result.Skipped {
		slogctx.Debug(ctx, "surface unchanged", "output", result.Output)
		return
	}
	slogctx.Info(ctx, "rendered surface",
		"output", result.Output,
		"nodes", result.Nodes,
		"size", humanize.Bytes(uint64(result.Bytes)),
	)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func checkDistinctOutputs(jobs []Job) error {
	seen := make(map[string]string, len(jobs))
	var result *multierror.Error
	for _, job := range jobs {
		if isStdout(job.Output) {
			continue
		}
		key, err := filepath.Abs(job.Output)
		if err != nil {
			return err
		}
		if other, ok := seen[key]; ok {
			result = multierror.Append(result, fmt.Errorf("inputs %s and %s both write %s", other, job.Input, job.Output))
			continue
		}
		seen[key] = job.Input
	}
	return result.ErrorOrNil()
}

func isStdout(output string) bool {
	output = strings.TrimSpace(output)
	return output == "" || output == StdoutOutput
}
