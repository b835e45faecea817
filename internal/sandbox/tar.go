package sandbox

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shiphq/pyship/internal/paths"
)

// Trees excluded when staging the project into the container. Stale
// artifacts and local state have no business in a reproducible build.
var excludedTrees = map[string]bool{
	"dist":        true,
	"build":       true,
	".git":        true,
	".venv":       true,
	"__pycache__": true,
}

// Returns true for directory names excluded from the staged project.
func isExcluded(name string) bool {
	return excludedTrees[name] || strings.HasSuffix(name, ".egg-info")
}

// Packs the project tree rooted at root into a tar stream, with every
// entry prefixed "src/" so extraction at "/" lands in the staging
// directory.
func packProject(w io.Writer, root string) error {
	tw := tar.NewWriter(w)

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() && path != root && isExcluded(d.Name()) {
			return filepath.SkipDir
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		archivePath := filepath.ToSlash(filepath.Join("src", relPath))
		return writeTarEntry(tw, path, archivePath, d)
	})
	if err != nil {
		tw.Close()
		return err
	}

	return tw.Close()
}

// Writes a single file or directory entry to a tar writer.
//
// Symlinks and other irregular files are skipped; a project tree staged
// for building needs neither.
func writeTarEntry(tw *tar.Writer, hostPath, archivePath string, d os.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}

	if !info.Mode().IsRegular() && !info.IsDir() {
		return nil
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = archivePath

	if err := tw.WriteHeader(header); err != nil {
		return err
	}

	if info.Mode().IsRegular() {
		f, err := os.Open(hostPath)
		if err != nil {
			return err
		}
		defer f.Close()
		if _, err := io.Copy(tw, f); err != nil {
			return err
		}
	}

	return nil
}

// Extracts a tar stream of the container's dist directory into the
// project root on the host.
//
// The stream is expected to contain a top-level "dist" directory, as
// produced by [Builder.archiveDist]. Entries that would escape the project
// root are rejected.
func unpackDist(r io.Reader, root string) error {
	tr := tar.NewReader(r)

	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		dest, err := safeJoin(root, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(dest, paths.DefaultDirMode); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(dest), paths.DefaultDirMode); err != nil {
				return err
			}
			if err := writeExtractedFile(dest, tr, header.FileInfo().Mode()); err != nil {
				return err
			}
		}
		// Anything else (symlinks, devices) is dropped.
	}
}

// Writes one extracted file to disk.
func writeExtractedFile(dest string, r io.Reader, mode os.FileMode) error {
	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Joins an archive entry name onto root, rejecting names that resolve
// outside it.
func safeJoin(root, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry %q escapes the project root", name)
	}
	return filepath.Join(root, cleaned), nil
}
