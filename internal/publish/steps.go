package publish

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shiphq/pyship/internal/toolchain"
)

// Directories removed by the clean step, relative to the project root.
// The egg-info entry is a glob; the others are literal names.
var staleDirs = []string{"dist", "build", "*.egg-info"}

// Verifies the interpreter and ensures the helper tools are installed.
//
// The build module is only needed for host builds; sandboxed builds run
// the tool shipped inside the build image.
func (r *run) checkTools(ctx context.Context) error {
	if err := r.tc.CheckInterpreter(); err != nil {
		return fmt.Errorf("%w: %w", ErrDependency, err)
	}

	modules := []string{toolchain.ModuleTwine}
	if r.opts.Builder == nil {
		modules = append(modules, toolchain.ModuleBuild)
	}

	if err := r.tc.Ensure(ctx, modules...); err != nil {
		return fmt.Errorf("%w: %w", ErrDependency, err)
	}

	return nil
}

// Runs the test suite unless skipped.
//
// A missing test runner downgrades the step to a warning; an installed
// runner that exits non-zero fails the run.
func (r *run) runTests(ctx context.Context) error {
	if r.opts.SkipTests {
		slog.Info("skipping tests")
		return nil
	}

	if !r.tc.HasModule(ctx, toolchain.ModulePytest) {
		slog.Warn("pytest is not installed, skipping tests")
		return nil
	}

	slog.Info("running tests")

	code, err := r.tc.RunModule(ctx, r.proj.Root, toolchain.ModulePytest)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTests, err)
	}
	if code != 0 {
		return fmt.Errorf("%w: pytest exited with code %d", ErrTests, code)
	}

	return nil
}

// Removes stale build artifacts unless skipped.
//
// Cleanup is best-effort: a directory that cannot be removed is logged
// and left behind rather than failing the run.
func (r *run) clean() {
	if r.opts.SkipClean {
		slog.Info("skipping clean")
		return
	}

	slog.Info("cleaning stale artifacts")

	for _, pattern := range staleDirs {
		matches, err := filepath.Glob(filepath.Join(r.proj.Root, pattern))
		if err != nil {
			continue // Only possible with a malformed pattern.
		}
		for _, path := range matches {
			slog.Debug("removing", "path", path)
			if err := os.RemoveAll(path); err != nil {
				slog.Warn("failed to remove stale artifact", "path", path, "error", err)
			}
		}
	}
}

// Builds the source and wheel distributions.
//
// Host builds shell out to "python -m build"; isolated builds delegate to
// the configured [Builder].
func (r *run) build(ctx context.Context) error {
	if r.opts.Builder != nil {
		slog.Info("building distributions in sandbox")
		if err := r.opts.Builder.Build(ctx, r.proj.Root); err != nil {
			return fmt.Errorf("%w: %w", ErrBuild, err)
		}
		return nil
	}

	slog.Info("building distributions")

	code, err := r.tc.RunModule(ctx, r.proj.Root, toolchain.ModuleBuild)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuild, err)
	}
	if code != 0 {
		return fmt.Errorf("%w: build exited with code %d", ErrBuild, code)
	}

	return nil
}

// Validates the built distributions.
//
// The dist directory must contain at least one distribution, every
// artifact is reported with its size and digest, and twine check must
// pass over the full set.
func (r *run) validate(ctx context.Context) ([]Artifact, error) {
	artifacts, err := collectArtifacts(r.proj.Root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if len(artifacts) == 0 {
		return nil, fmt.Errorf("%w: no distributions found in %s", ErrValidation, filepath.Join(r.proj.Root, distDir))
	}

	for _, a := range artifacts {
		slog.Info("built artifact", "name", a.Name, "size", a.Size, "digest", a.Digest)
	}

	r.checkExpectedNames(artifacts)

	args := append([]string{"check"}, relativePaths(artifacts)...)
	code, err := r.tc.RunModule(ctx, r.proj.Root, toolchain.ModuleTwine, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if code != 0 {
		return nil, fmt.Errorf("%w: twine check exited with code %d", ErrValidation, code)
	}

	return artifacts, nil
}

// Warns when the built artifacts do not match the declared version.
//
// Projects with a dynamic version are not checked; the expected names
// cannot be predicted from the descriptor.
func (r *run) checkExpectedNames(artifacts []Artifact) {
	sdist := r.proj.SDistName()
	if sdist == "" {
		return
	}

	found := false
	for _, a := range artifacts {
		if a.Name == sdist {
			found = true
			break
		}
	}

	if !found {
		slog.Warn("no sdist matches the declared version",
			"expected", sdist,
			"declared", r.proj.Version,
		)
	}
}

// Uploads the distributions to the resolved index.
func (r *run) upload(ctx context.Context, artifacts []Artifact) error {
	slog.Info("uploading distributions",
		"target", r.ix.Target,
		"repository", r.ix.RepositoryURL,
		"count", len(artifacts),
	)

	args := append([]string{"upload", "--repository-url", r.ix.RepositoryURL}, relativePaths(artifacts)...)

	code, err := r.tc.RunModule(ctx, r.proj.Root, toolchain.ModuleTwine, args...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpload, err)
	}
	if code != 0 {
		return fmt.Errorf("%w: twine upload exited with code %d", ErrUpload, code)
	}

	slog.Info("upload complete", "target", r.ix.Target)
	return nil
}

// Returns the artifact paths relative to the project root, as passed to
// twine (which runs with the project root as its working directory).
func relativePaths(artifacts []Artifact) []string {
	paths := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		paths = append(paths, filepath.Join(distDir, a.Name))
	}
	return paths
}
