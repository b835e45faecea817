package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Filename of the project descriptor.
const DescriptorName = "pyproject.toml"

var (
	ErrNoDescriptor = errors.New("no " + DescriptorName + " found")
	ErrDescriptor   = errors.New("invalid " + DescriptorName)
)

// Runs of name separator characters, collapsed during normalization.
var separatorRuns = regexp.MustCompile(`[-_.]+`)

// A parsed project descriptor.
type Project struct {
	Root    string // Directory containing the descriptor.
	Name    string // Package name as declared in [project].
	Version string // Declared version; empty when the version is dynamic.
}

// Shape of the descriptor fields pyship reads.
type descriptor struct {
	Project struct {
		Name    string   `toml:"name"`
		Version string   `toml:"version"`
		Dynamic []string `toml:"dynamic"`
	} `toml:"project"`
}

// Loads the project descriptor from the given directory.
//
// Returns [ErrNoDescriptor] when the descriptor file is absent, which the
// caller treats as "not a project root". A descriptor that exists but
// declares no package name is rejected with [ErrDescriptor].
func Load(root string) (*Project, error) {
	path := filepath.Join(root, DescriptorName)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w in %s", ErrNoDescriptor, root)
		}
		return nil, fmt.Errorf("%w: %w", ErrDescriptor, err)
	}

	var d descriptor
	if err := toml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDescriptor, err)
	}

	name := strings.TrimSpace(d.Project.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: missing [project] name", ErrDescriptor)
	}

	return &Project{
		Root:    root,
		Name:    name,
		Version: strings.TrimSpace(d.Project.Version),
	}, nil
}

// Returns the normalized package name used by package indexes.
//
// Normalization lowercases the name and collapses runs of "-", "_", and "."
// into a single "-", matching how indexes compare project names.
func (p *Project) NormalizedName() string {
	return separatorRuns.ReplaceAllString(strings.ToLower(p.Name), "-")
}

// Returns the name component used in distribution filenames.
//
// Build backends write artifacts with the normalized name, but with "_"
// as the separator instead of "-".
func (p *Project) DistName() string {
	return strings.ReplaceAll(p.NormalizedName(), "-", "_")
}

// Returns the expected source distribution filename, or "" when the
// version is dynamic and cannot be predicted.
func (p *Project) SDistName() string {
	if p.Version == "" {
		return ""
	}
	return fmt.Sprintf("%s-%s.tar.gz", p.DistName(), p.Version)
}

// Returns the filename prefix shared by this release's wheels, or "" when
// the version is dynamic.
func (p *Project) WheelPrefix() string {
	if p.Version == "" {
		return ""
	}
	return fmt.Sprintf("%s-%s-", p.DistName(), p.Version)
}
