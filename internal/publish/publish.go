package publish

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shiphq/pyship/internal/index"
	"github.com/shiphq/pyship/internal/project"
	"github.com/shiphq/pyship/internal/toolchain"
)

// Builds the distributions for the project rooted at root, leaving them
// in the dist directory. Implemented by the host toolchain by default and
// by the container sandbox for isolated builds.
type Builder interface {
	Build(ctx context.Context, root string) error
}

// Controls a publish run.
type Options struct {
	Root          string       // Project root. Defaults to the current directory.
	Target        index.Target // Destination index. Defaults to production.
	SkipTests     bool         // Bypass the test step.
	SkipClean     bool         // Bypass artifact cleanup.
	RepositoryURL string       // Override for the target's upload endpoint.
	SimpleURL     string       // Override for the target's simple-index URL.
	Builder       Builder      // Alternative build backend. Nil builds on the host.
}

// Returned after a successful publish run.
type Result struct {
	Project   *project.Project // The published project.
	Index     index.Index      // Index the distributions were uploaded to.
	Artifacts []Artifact       // Distributions that were uploaded.
}

// Executes the publish pipeline to completion.
//
// The project descriptor is loaded before anything else; a missing
// descriptor fails the run without invoking a single tool. Steps then
// execute in a fixed order (tool checks, tests, clean, build, validate,
// upload) and the first failure is terminal.
func Run(ctx context.Context, tc *toolchain.Toolchain, opts Options) (*Result, error) {
	if opts.Root == "" {
		opts.Root = "."
	}
	if opts.Target == "" {
		opts.Target = index.Production
	}

	proj, err := project.Load(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEnvironment, err)
	}

	ix, err := index.Resolve(opts.Target, opts.RepositoryURL, opts.SimpleURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEnvironment, err)
	}

	slog.Info("publishing",
		"project", proj.Name,
		"version", versionLabel(proj),
		"target", ix.Target,
	)

	return newRun(tc, proj, ix, opts).execute(ctx)
}

// Holds shared state for one pass through the pipeline.
type run struct {
	tc   *toolchain.Toolchain
	proj *project.Project
	ix   index.Index
	opts Options
}

// Creates a new [run] from resolved inputs.
func newRun(tc *toolchain.Toolchain, proj *project.Project, ix index.Index, opts Options) *run {
	return &run{tc: tc, proj: proj, ix: ix, opts: opts}
}

// Executes the pipeline steps in order, stopping at the first failure.
func (r *run) execute(ctx context.Context) (*Result, error) {
	if err := r.checkTools(ctx); err != nil {
		return nil, err
	}

	if err := r.runTests(ctx); err != nil {
		return nil, err
	}

	r.clean()

	if err := r.build(ctx); err != nil {
		return nil, err
	}

	artifacts, err := r.validate(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.upload(ctx, artifacts); err != nil {
		return nil, err
	}

	return &Result{Project: r.proj, Index: r.ix, Artifacts: artifacts}, nil
}

// Returns the version for logging, or a placeholder when it is dynamic.
func versionLabel(p *project.Project) string {
	if p.Version == "" {
		return "(dynamic)"
	}
	return p.Version
}
