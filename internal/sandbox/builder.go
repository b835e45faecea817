package sandbox

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
)

const (

	// Directory the project tree is staged into inside the container.
	containerRoot = "/src"

	// Directory the build writes distributions into inside the container.
	containerDist = containerRoot + "/dist"
)

// Builds distributions inside a container created from a pinned build
// image. Implements the publish pipeline's build hook.
type Builder struct {
	rt          *Runtime
	archive     string // Path to the OCI archive holding the build image.
	interpreter string // Interpreter command inside the image.
}

// Creates a builder that imports the build image from the given OCI
// archive and drives the given interpreter inside it.
func NewBuilder(rt *Runtime, archive, interpreter string) *Builder {
	return &Builder{rt: rt, archive: archive, interpreter: interpreter}
}

// Builds the project rooted at root inside a fresh container.
//
// The build image is imported, a container is started, the project tree
// is streamed in, "python -m build" runs against it, and the resulting
// dist directory is streamed back to the host. The container is destroyed
// when the build finishes, successful or not.
func (b *Builder) Build(ctx context.Context, root string) error {
	tag, err := b.rt.ImportArchive(ctx, b.archive)
	if err != nil {
		return err
	}

	ctr, err := b.rt.StartContainer(ctx, tag, buildContainerID(root))
	if err != nil {
		return err
	}
	defer ctr.Destroy(ctx)

	if err := b.stageProject(ctx, ctr, root); err != nil {
		return err
	}

	if err := b.runBuild(ctx, ctr); err != nil {
		return err
	}

	return b.retrieveDist(ctx, ctr, root)
}

// Streams the project tree into the container's staging directory.
//
// The tree is packed on the host as a tar rooted at "src" and handed to
// tar inside the container, which extracts it at "/". Artifacts from
// previous builds and other ignorable trees are excluded by the packer.
func (b *Builder) stageProject(ctx context.Context, ctr *Container, root string) error {
	slog.Debug("staging project", "root", root, "dest", containerRoot)

	err := streamProject(root, func(r io.Reader) error {
		return b.extractProject(ctx, ctr, r)
	})
	if err != nil {
		return fmt.Errorf("%w: staging project: %w", ErrSandbox, err)
	}

	return nil
}

// Runs tar inside the container, extracting the staged project from r.
func (b *Builder) extractProject(ctx context.Context, ctr *Container, r io.Reader) error {
	code, stderr, err := ctr.execCommand(ctx, r, nil, nil, "", "tar", "xf", "-", "-C", "/")
	if err != nil {
		return err
	}
	if code != 0 {
		return fmt.Errorf("tar extract exited with code %d (%s)", code, stderr)
	}
	return nil
}

// Runs the build tool against the staged project.
func (b *Builder) runBuild(ctx context.Context, ctr *Container) error {
	command := b.interpreter + " -m build"
	slog.Debug("running sandboxed build", "command", command)

	result, err := ctr.Exec(ctx, command, nil, containerRoot)
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("%w: build exited with code %d: %s", ErrSandbox, result.ExitCode, result.Stderr)
	}

	return nil
}

// Streams the container's dist directory back to the host project root.
func (b *Builder) retrieveDist(ctx context.Context, ctr *Container, root string) error {
	slog.Debug("retrieving distributions", "src", containerDist, "root", root)

	pr, pw := io.Pipe()

	errc := make(chan error, 1)
	go func() {
		errc <- b.archiveDist(ctx, ctr, pw)
		pw.Close()
	}()

	if err := unpackDist(pr, root); err != nil {
		// Unblock the archiving goroutine before reporting.
		pr.CloseWithError(err)
		<-errc
		return fmt.Errorf("%w: retrieving distributions: %w", ErrSandbox, err)
	}

	return <-errc
}

// Runs tar inside the container, archiving the dist directory to w.
func (b *Builder) archiveDist(ctx context.Context, ctr *Container, w io.Writer) error {
	code, stderr, err := ctr.execCommand(ctx, nil, w, nil, "", "tar", "cf", "-", "-C", containerRoot, "dist")
	if err != nil {
		return err
	}
	if code != 0 {
		return fmt.Errorf("%w: tar archive exited with code %d (%s)", ErrSandbox, code, stderr)
	}
	return nil
}

// Packs the project on one end of a pipe while sink consumes the other.
//
// The read end is closed when the sink fails, so the packing goroutine
// always exits even if the sink stops before draining the stream.
func streamProject(root string, sink func(io.Reader) error) error {
	pr, pw := io.Pipe()

	packed := make(chan struct{})
	go func() {
		pw.CloseWithError(packProject(pw, root))
		close(packed)
	}()

	if err := sink(pr); err != nil {
		pr.CloseWithError(err)
		<-packed
		return err
	}

	<-packed
	return nil
}

// Returns a container ID unique to the project root.
//
// Hashing the root keeps concurrent builds of different projects apart
// while letting a rerun for the same project reclaim its stale container.
func buildContainerID(root string) string {
	h := sha256.Sum256([]byte(root))
	return "pyship-build-" + hex.EncodeToString(h[:6])
}
