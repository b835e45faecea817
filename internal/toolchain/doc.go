// Drives the external Python packaging tools.
//
// A [Toolchain] wraps the Python interpreter and the helper modules pyship
// shells out to: pip for on-demand installs, build for producing
// distributions, twine for validating and uploading them, and pytest as
// the test runner. The interpreter itself is a hard requirement; helper
// modules are probed with "python -m <module> --version" and installed via
// pip when missing.
//
// Command execution goes through the [Runner] interface so the publish
// pipeline can be exercised in tests without spawning processes. The
// default runner executes on the host with output streamed to the user.
package toolchain
