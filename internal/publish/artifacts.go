package publish

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/opencontainers/go-digest"
)

// Directory the build tool writes distributions into, relative to the
// project root.
const distDir = "dist"

// A built distribution artifact.
type Artifact struct {
	Path   string        // Absolute or root-relative path on disk.
	Name   string        // Filename within the dist directory.
	Size   int64         // Size in bytes.
	Digest digest.Digest // Canonical (sha256) digest of the contents.
}

// Returns true for filenames that are distribution artifacts.
func isDistribution(name string) bool {
	return strings.HasSuffix(name, ".whl") || strings.HasSuffix(name, ".tar.gz")
}

// Enumerates the distributions in the project's dist directory.
//
// Only wheel and sdist files are considered; anything else the build
// backend leaves behind is ignored. Results are sorted by name so logs
// and upload order are stable. A missing dist directory yields an empty
// slice, which the caller rejects as "nothing was built".
func collectArtifacts(root string) ([]Artifact, error) {
	dir := filepath.Join(root, distDir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var artifacts []Artifact
	for _, entry := range entries {
		if entry.IsDir() || !isDistribution(entry.Name()) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		a, err := describeArtifact(path)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a)
	}

	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].Name < artifacts[j].Name
	})

	return artifacts, nil
}

// Reads an artifact's size and canonical digest from disk.
func describeArtifact(path string) (Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return Artifact{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Artifact{}, err
	}

	d, err := digest.Canonical.FromReader(f)
	if err != nil {
		return Artifact{}, err
	}

	return Artifact{
		Path:   path,
		Name:   filepath.Base(path),
		Size:   info.Size(),
		Digest: d,
	}, nil
}
