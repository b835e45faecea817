package toolchain

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
)

// Executes external commands on behalf of the toolchain.
type Runner interface {

	// Looks up a command on PATH, returning its resolved path.
	LookPath(name string) (string, error)

	// Runs a command in dir with output streamed to the user. A non-zero
	// exit code is returned, not treated as an error; the error return is
	// reserved for failures to spawn or interrupt the process.
	Run(ctx context.Context, dir, name string, args ...string) (int, error)

	// Runs a command in dir with all output discarded. Used for
	// availability probes whose output would only be noise.
	Probe(ctx context.Context, dir, name string, args ...string) (int, error)
}

// Runner that spawns processes on the host.
type hostRunner struct {
	stdout io.Writer
	stderr io.Writer
}

// Returns a runner that executes commands on the host, streaming output
// to the process's stdout and stderr.
func NewRunner() Runner {
	return &hostRunner{stdout: os.Stdout, stderr: os.Stderr}
}

func (r *hostRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (r *hostRunner) Run(ctx context.Context, dir, name string, args ...string) (int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr
	// Upload tools may prompt for credentials.
	cmd.Stdin = os.Stdin
	return exitCode(cmd.Run())
}

func (r *hostRunner) Probe(ctx context.Context, dir, name string, args ...string) (int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	return exitCode(cmd.Run())
}

// Converts the error of [exec.Cmd.Run] into an exit code.
//
// A process that ran and exited non-zero yields its code with a nil error.
// Anything else (command not found, context cancelled before spawn) is
// surfaced as an error.
func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 0, err
}
