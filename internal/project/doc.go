// Reads the project descriptor of the library being published.
//
// A publishable project is a directory containing a pyproject.toml with a
// [project] table naming the package. The descriptor gates every run: its
// absence means pyship was started outside a project root and nothing else
// may execute. The parsed name and version also drive the expected artifact
// filenames and the install instructions printed after an upload.
package project
