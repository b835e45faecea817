// Package publish orchestrates packaging and uploading a Python library.
//
// A publish run is a linear pipeline of steps, each a shell-out to the
// packaging toolchain: verify the tools, run the test suite, clean stale
// artifacts, build the distributions, validate them, and upload to the
// resolved index. The first failing step stops the run; there are no
// retries. Each failure class has a sentinel error so the CLI can label
// the message, and every failure maps to the same terminal outcome.
//
// The test and clean steps are skippable through [Options]. Cleaning is
// best-effort: problems removing stale artifacts are logged and ignored.
// Building normally happens on the host via "python -m build", but an
// alternative [Builder] (e.g. a container sandbox) can be supplied.
//
// Example usage:
//
//	tc := toolchain.New(toolchain.NewRunner(), "python3")
//	result, err := publish.Run(ctx, tc, publish.Options{
//	    Root:   ".",
//	    Target: index.Staging,
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Index.InstallCommand(result.Project.NormalizedName()))
package publish
