package toolchain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Helper modules invoked as "python -m <module>".
const (
	ModulePip    = "pip"
	ModuleBuild  = "build"
	ModuleTwine  = "twine"
	ModulePytest = "pytest"
)

var (
	ErrInterpreter = errors.New("python interpreter not found")
	ErrInstall     = errors.New("tool installation failed")
)

// The set of external tools pyship drives, bound to one interpreter.
type Toolchain struct {
	runner      Runner
	interpreter string
}

// Creates a toolchain around the given interpreter command.
func New(runner Runner, interpreter string) *Toolchain {
	return &Toolchain{runner: runner, interpreter: interpreter}
}

// Returns the interpreter command this toolchain drives.
func (tc *Toolchain) Interpreter() string {
	return tc.interpreter
}

// Verifies that the interpreter is available on PATH.
func (tc *Toolchain) CheckInterpreter() error {
	path, err := tc.runner.LookPath(tc.interpreter)
	if err != nil {
		return fmt.Errorf("%w: %q is not on PATH", ErrInterpreter, tc.interpreter)
	}

	slog.Debug("interpreter found", "command", tc.interpreter, "path", path)
	return nil
}

// Reports whether a helper module is importable by the interpreter.
//
// The probe runs "python -m <module> --version" and treats any non-zero
// exit as absence. Spawn failures also count as absence; the interpreter's
// own availability is checked separately.
func (tc *Toolchain) HasModule(ctx context.Context, module string) bool {
	code, err := tc.runner.Probe(ctx, "", tc.interpreter, "-m", module, "--version")
	return err == nil && code == 0
}

// Installs helper modules with pip.
func (tc *Toolchain) Install(ctx context.Context, modules ...string) error {
	args := append([]string{"-m", ModulePip, "install", "--upgrade"}, modules...)

	code, err := tc.runner.Run(ctx, "", tc.interpreter, args...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInstall, err)
	}
	if code != 0 {
		return fmt.Errorf("%w: pip exited with code %d", ErrInstall, code)
	}

	return nil
}

// Ensures the given helper modules are available, installing any that are
// missing.
func (tc *Toolchain) Ensure(ctx context.Context, modules ...string) error {
	var missing []string
	for _, m := range modules {
		if tc.HasModule(ctx, m) {
			continue
		}
		missing = append(missing, m)
	}

	if len(missing) == 0 {
		return nil
	}

	slog.Info("installing missing tools", "modules", missing)
	return tc.Install(ctx, missing...)
}

// Runs a helper module in dir, streaming output to the user, and returns
// its exit code.
func (tc *Toolchain) RunModule(ctx context.Context, dir, module string, args ...string) (int, error) {
	full := append([]string{"-m", module}, args...)
	return tc.runner.Run(ctx, dir, tc.interpreter, full...)
}
