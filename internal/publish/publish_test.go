package publish

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shiphq/pyship/internal/index"
	"github.com/shiphq/pyship/internal/toolchain"
)

// Runner that simulates the packaging toolchain without spawning processes.
type fakeRunner struct {
	missing map[string]bool   // Modules whose availability probe fails.
	failOn  string            // Run exits 1 when the command line contains this substring.
	onBuild func(root string) // Invoked when "python -m build" runs, to simulate artifact output.
	runs    []string          // Recorded Run command lines.
	probes  []string          // Recorded Probe command lines.
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	return "/usr/bin/" + name, nil
}

func (f *fakeRunner) Run(ctx context.Context, dir, name string, args ...string) (int, error) {
	line := strings.Join(append([]string{name}, args...), " ")
	f.runs = append(f.runs, line)

	if f.failOn != "" && strings.Contains(line, f.failOn) {
		return 1, nil
	}
	if strings.Contains(line, "-m build") && f.onBuild != nil {
		f.onBuild(dir)
	}
	return 0, nil
}

func (f *fakeRunner) Probe(ctx context.Context, dir, name string, args ...string) (int, error) {
	line := strings.Join(append([]string{name}, args...), " ")
	f.probes = append(f.probes, line)

	if len(args) >= 2 && f.missing[args[1]] {
		return 1, nil
	}
	return 0, nil
}

// Returns the recorded Run lines containing the substring.
func (f *fakeRunner) ran(substr string) []string {
	var out []string
	for _, line := range f.runs {
		if strings.Contains(line, substr) {
			out = append(out, line)
		}
	}
	return out
}

// Creates a project root with a descriptor for "demo" version 1.0.0.
func newProjectRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	descriptor := "[project]\nname = \"demo\"\nversion = \"1.0.0\"\n"
	if err := os.WriteFile(filepath.Join(root, "pyproject.toml"), []byte(descriptor), 0644); err != nil {
		t.Fatalf("write descriptor: %v", err)
	}
	return root
}

// Writes placeholder distributions into the project's dist directory.
func writeDist(t *testing.T, root string, names ...string) {
	t.Helper()
	dir := filepath.Join(root, distDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir dist: %v", err)
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

// Returns a fake runner whose build step produces the standard pair of
// distributions.
func buildingRunner() *fakeRunner {
	f := &fakeRunner{}
	f.onBuild = func(root string) {
		dir := filepath.Join(root, distDir)
		os.MkdirAll(dir, 0755)
		os.WriteFile(filepath.Join(dir, "demo-1.0.0.tar.gz"), []byte("sdist"), 0644)
		os.WriteFile(filepath.Join(dir, "demo-1.0.0-py3-none-any.whl"), []byte("wheel"), 0644)
	}
	return f
}

func TestRunHappyPath(t *testing.T) {
	root := newProjectRoot(t)
	f := buildingRunner()
	tc := toolchain.New(f, "python3")

	result, err := Run(context.Background(), tc, Options{Root: root})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Project.Name != "demo" {
		t.Fatalf("Project.Name = %q", result.Project.Name)
	}
	if result.Index.Target != index.Production {
		t.Fatalf("Target = %q, want production", result.Index.Target)
	}
	if len(result.Artifacts) != 2 {
		t.Fatalf("Artifacts = %d, want 2", len(result.Artifacts))
	}

	if got := f.ran("-m pytest"); len(got) != 1 {
		t.Fatalf("pytest runs = %v, want exactly one", got)
	}
	if got := f.ran("twine check"); len(got) != 1 {
		t.Fatalf("twine check runs = %v, want exactly one", got)
	}
	uploads := f.ran("twine upload")
	if len(uploads) != 1 {
		t.Fatalf("twine upload runs = %v, want exactly one", uploads)
	}
	if !strings.Contains(uploads[0], "https://upload.pypi.org/legacy/") {
		t.Fatalf("upload %q does not target production", uploads[0])
	}
}

func TestRunStagingTarget(t *testing.T) {
	root := newProjectRoot(t)
	f := buildingRunner()
	tc := toolchain.New(f, "python3")

	result, err := Run(context.Background(), tc, Options{Root: root, Target: index.Staging})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Index.Target != index.Staging {
		t.Fatalf("Target = %q, want staging", result.Index.Target)
	}

	uploads := f.ran("twine upload")
	if len(uploads) != 1 || !strings.Contains(uploads[0], "https://test.pypi.org/legacy/") {
		t.Fatalf("upload %v does not target staging", uploads)
	}
}

func TestRunMissingDescriptor(t *testing.T) {
	f := buildingRunner()
	tc := toolchain.New(f, "python3")

	_, err := Run(context.Background(), tc, Options{Root: t.TempDir()})
	if !errors.Is(err, ErrEnvironment) {
		t.Fatalf("err = %v, want ErrEnvironment", err)
	}

	if len(f.runs) != 0 || len(f.probes) != 0 {
		t.Fatalf("tools were invoked outside a project root: runs=%v probes=%v", f.runs, f.probes)
	}
}

func TestRunSkipTests(t *testing.T) {
	root := newProjectRoot(t)
	f := buildingRunner()
	tc := toolchain.New(f, "python3")

	if _, err := Run(context.Background(), tc, Options{Root: root, SkipTests: true}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := f.ran("pytest"); len(got) != 0 {
		t.Fatalf("pytest was invoked despite SkipTests: %v", got)
	}
}

func TestRunMissingPytestIsWarning(t *testing.T) {
	root := newProjectRoot(t)
	f := buildingRunner()
	f.missing = map[string]bool{"pytest": true}
	tc := toolchain.New(f, "python3")

	if _, err := Run(context.Background(), tc, Options{Root: root}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := f.ran("-m pytest"); len(got) != 0 {
		t.Fatalf("pytest was invoked although missing: %v", got)
	}
}

func TestRunTestFailureStopsPipeline(t *testing.T) {
	root := newProjectRoot(t)
	f := buildingRunner()
	f.failOn = "pytest"
	tc := toolchain.New(f, "python3")

	_, err := Run(context.Background(), tc, Options{Root: root})
	if !errors.Is(err, ErrTests) {
		t.Fatalf("err = %v, want ErrTests", err)
	}

	if got := f.ran("-m build"); len(got) != 0 {
		t.Fatalf("build ran after a test failure: %v", got)
	}
	if got := f.ran("twine"); len(got) != 0 {
		t.Fatalf("twine ran after a test failure: %v", got)
	}
}

func TestRunCleanRemovesStaleArtifacts(t *testing.T) {
	root := newProjectRoot(t)
	writeDist(t, root, "stale-0.9.0.tar.gz")
	if err := os.MkdirAll(filepath.Join(root, "demo.egg-info"), 0755); err != nil {
		t.Fatalf("mkdir egg-info: %v", err)
	}

	f := buildingRunner()
	tc := toolchain.New(f, "python3")

	if _, err := Run(context.Background(), tc, Options{Root: root}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, "demo.egg-info")); !os.IsNotExist(err) {
		t.Fatal("egg-info survived the clean step")
	}
	if _, err := os.Stat(filepath.Join(root, distDir, "stale-0.9.0.tar.gz")); !os.IsNotExist(err) {
		t.Fatal("stale distribution survived the clean step")
	}
}

func TestRunSkipClean(t *testing.T) {
	root := newProjectRoot(t)
	writeDist(t, root, "stale-0.9.0.tar.gz")

	f := &fakeRunner{} // No onBuild: the stale artifact is the only distribution.
	tc := toolchain.New(f, "python3")

	if _, err := Run(context.Background(), tc, Options{Root: root, SkipClean: true}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, distDir, "stale-0.9.0.tar.gz")); err != nil {
		t.Fatalf("artifact was removed despite SkipClean: %v", err)
	}
}

func TestRunBuildFailure(t *testing.T) {
	root := newProjectRoot(t)
	f := buildingRunner()
	f.failOn = "-m build"
	tc := toolchain.New(f, "python3")

	_, err := Run(context.Background(), tc, Options{Root: root})
	if !errors.Is(err, ErrBuild) {
		t.Fatalf("err = %v, want ErrBuild", err)
	}
	if got := f.ran("twine"); len(got) != 0 {
		t.Fatalf("twine ran after a build failure: %v", got)
	}
}

func TestRunNoArtifactsIsValidationError(t *testing.T) {
	root := newProjectRoot(t)
	f := &fakeRunner{} // Build "succeeds" but writes nothing.
	tc := toolchain.New(f, "python3")

	_, err := Run(context.Background(), tc, Options{Root: root})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestRunValidationFailure(t *testing.T) {
	root := newProjectRoot(t)
	f := buildingRunner()
	f.failOn = "twine check"
	tc := toolchain.New(f, "python3")

	_, err := Run(context.Background(), tc, Options{Root: root})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if got := f.ran("twine upload"); len(got) != 0 {
		t.Fatalf("upload ran after failed validation: %v", got)
	}
}

func TestRunUploadFailure(t *testing.T) {
	root := newProjectRoot(t)
	f := buildingRunner()
	f.failOn = "twine upload"
	tc := toolchain.New(f, "python3")

	_, err := Run(context.Background(), tc, Options{Root: root})
	if !errors.Is(err, ErrUpload) {
		t.Fatalf("err = %v, want ErrUpload", err)
	}
}

// Builder that records its invocation and writes a distribution.
type fakeBuilder struct {
	called bool
	err    error
}

func (b *fakeBuilder) Build(ctx context.Context, root string) error {
	b.called = true
	if b.err != nil {
		return b.err
	}
	dir := filepath.Join(root, distDir)
	os.MkdirAll(dir, 0755)
	return os.WriteFile(filepath.Join(dir, "demo-1.0.0.tar.gz"), []byte("sdist"), 0644)
}

func TestRunWithBuilder(t *testing.T) {
	root := newProjectRoot(t)
	f := &fakeRunner{}
	b := &fakeBuilder{}
	tc := toolchain.New(f, "python3")

	if _, err := Run(context.Background(), tc, Options{Root: root, Builder: b}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !b.called {
		t.Fatal("builder was not invoked")
	}
	if got := f.ran("-m build"); len(got) != 0 {
		t.Fatalf("host build ran despite a configured builder: %v", got)
	}
}

func TestRunWithBuilderSkipsHostBuildTool(t *testing.T) {
	root := newProjectRoot(t)
	f := &fakeRunner{missing: map[string]bool{"build": true}}
	b := &fakeBuilder{}
	tc := toolchain.New(f, "python3")

	if _, err := Run(context.Background(), tc, Options{Root: root, Builder: b}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := f.ran("pip install"); len(got) != 0 {
		t.Fatalf("host build module installed for a sandboxed build: %v", got)
	}
	for _, line := range f.probes {
		if strings.Contains(line, "-m build") {
			t.Fatalf("build module probed for a sandboxed build: %v", f.probes)
		}
	}
}

func TestRunBuilderFailure(t *testing.T) {
	root := newProjectRoot(t)
	b := &fakeBuilder{err: errors.New("sandbox exploded")}
	tc := toolchain.New(&fakeRunner{}, "python3")

	_, err := Run(context.Background(), tc, Options{Root: root, Builder: b})
	if !errors.Is(err, ErrBuild) {
		t.Fatalf("err = %v, want ErrBuild", err)
	}
}
