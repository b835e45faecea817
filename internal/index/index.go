package index

import (
	"errors"
	"fmt"
)

// Selects the destination package repository.
type Target string

const (
	// The production index (PyPI).
	Production Target = "production"

	// The staging index (TestPyPI).
	Staging Target = "staging"
)

// Default endpoints for the two targets.
const (
	productionRepositoryURL = "https://upload.pypi.org/legacy/"
	productionSimpleURL     = "https://pypi.org/simple/"
	stagingRepositoryURL    = "https://test.pypi.org/legacy/"
	stagingSimpleURL        = "https://test.pypi.org/simple/"
)

var ErrUnknownTarget = errors.New("unknown target index")

// A resolved upload destination.
type Index struct {
	Target        Target // Target this index was resolved from.
	RepositoryURL string // Endpoint distributions are uploaded to.
	SimpleURL     string // Simple-index URL packages are installed from.
}

// Resolves a target to its index, applying optional URL overrides.
//
// Empty override strings keep the target's default endpoints.
func Resolve(t Target, repositoryURL, simpleURL string) (Index, error) {
	var ix Index

	switch t {
	case Production:
		ix = Index{Target: t, RepositoryURL: productionRepositoryURL, SimpleURL: productionSimpleURL}
	case Staging:
		ix = Index{Target: t, RepositoryURL: stagingRepositoryURL, SimpleURL: stagingSimpleURL}
	default:
		return Index{}, fmt.Errorf("%w: %q", ErrUnknownTarget, t)
	}

	if repositoryURL != "" {
		ix.RepositoryURL = repositoryURL
	}
	if simpleURL != "" {
		ix.SimpleURL = simpleURL
	}

	return ix, nil
}

// Returns the pip command line a user should run to install the published
// package from this index.
//
// Production installs use pip's built-in default index; anything else
// carries an explicit --index-url so the instruction is copy-pasteable.
func (ix Index) InstallCommand(pkg string) string {
	if ix.Target == Production && ix.SimpleURL == productionSimpleURL {
		return fmt.Sprintf("pip install %s", pkg)
	}
	return fmt.Sprintf("pip install --index-url %s %s", ix.SimpleURL, pkg)
}
