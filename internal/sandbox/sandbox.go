package sandbox

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	goruntime "runtime"

	containerd "github.com/containerd/containerd/v2/client"
	"github.com/containerd/containerd/v2/core/images"
	"github.com/containerd/errdefs"
)

const (

	// Default containerd socket address.
	DefaultAddress = "/run/containerd/containerd.sock"

	// Default containerd namespace for pyship's images and containers.
	DefaultNamespace = "pyship"

	// Snapshotter used for container filesystems. fuse-overlayfs works
	// without mount(2) privileges, so pyship can run as a regular user.
	snapshotter = "fuse-overlayfs"

	// OCI runtime shim for running containers.
	ociRuntime = "io.containerd.runc.v2"
)

// Manages the containerd client backing isolated builds.
type Runtime struct {
	client *containerd.Client
}

// Creates a runtime connected to the containerd socket at the given address.
//
// The namespace scopes all image and container records. The runtime must
// be closed when no longer needed.
func New(address, namespace string) (*Runtime, error) {
	client, err := containerd.New(address, containerd.WithDefaultNamespace(namespace))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSandbox, err)
	}
	return &Runtime{client: client}, nil
}

// Closes the containerd client connection.
func (rt *Runtime) Close() error {
	return rt.client.Close()
}

// Imports a build image from an OCI archive and prepares it for use.
//
// The archive is imported into the content store, tagged with a name
// derived from the archive path, and unpacked into the snapshotter for
// the host platform. Returns the tag the image was stored under.
// Re-importing the same archive updates the existing tag.
func (rt *Runtime) ImportArchive(ctx context.Context, path string) (string, error) {
	tag := imageTag(path)

	source, err := rt.importArchive(ctx, path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSandbox, err)
	}

	if err := rt.tagImage(ctx, source, tag); err != nil {
		return "", fmt.Errorf("%w: %w", ErrSandbox, err)
	}

	if err := rt.unpackImage(ctx, tag); err != nil {
		return "", fmt.Errorf("%w: %w", ErrSandbox, err)
	}

	slog.Debug("build image imported", "tag", tag, "archive", path)
	return tag, nil
}

// Imports an OCI archive into the content store.
//
// The archive must contain exactly one image.
func (rt *Runtime) importArchive(ctx context.Context, path string) (images.Image, error) {
	fh, err := os.Open(path)
	if err != nil {
		return images.Image{}, err
	}
	defer fh.Close()

	imported, err := rt.client.Import(ctx, fh)
	if err != nil {
		return images.Image{}, err
	}

	if len(imported) == 0 {
		return images.Image{}, ErrEmptyArchive
	} else if len(imported) > 1 {
		return images.Image{}, ErrMultipleImages
	}

	return imported[0], nil
}

// Tags an imported image under a deterministic name.
//
// Updates the tag if it already exists and removes the source record when
// its name differs, so repeated imports don't accumulate duplicates.
func (rt *Runtime) tagImage(ctx context.Context, source images.Image, tag string) error {
	is := rt.client.ImageService()

	img := images.Image{
		Name:   tag,
		Target: source.Target,
	}

	if _, err := is.Create(ctx, img); err != nil {
		if !errdefs.IsAlreadyExists(err) {
			return err
		}
		if _, err := is.Update(ctx, img, "target"); err != nil {
			return err
		}
	}

	if source.Name != tag {
		_ = is.Delete(ctx, source.Name)
	}

	return nil
}

// Unpacks the image layers into the snapshotter for the host platform.
func (rt *Runtime) unpackImage(ctx context.Context, tag string) error {
	image, err := rt.client.GetImage(ctx, tag)
	if err != nil {
		return err
	}
	return image.Unpack(ctx, snapshotter)
}

// Starts a build container from a previously imported tag.
//
// Any stale container with the same ID (e.g. from an interrupted run) is
// removed first. The container runs detached with a long-running task so
// build commands can be executed against it.
func (rt *Runtime) StartContainer(ctx context.Context, tag, id string) (*Container, error) {
	c := &Container{
		client:   rt.client,
		id:       id,
		platform: hostPlatform(),
	}

	c.remove(ctx)

	image, err := rt.client.GetImage(ctx, tag)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSandbox, err)
	}

	ctr, err := c.create(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSandbox, err)
	}

	if err := c.startTask(ctx, ctr); err != nil {
		ctr.Delete(ctx, containerd.WithSnapshotCleanup)
		return nil, fmt.Errorf("%w: %w", ErrSandbox, err)
	}

	slog.Debug("build container started", "id", id, "image", tag)
	return c, nil
}

// Produces a containerd image tag from an archive path.
//
// The path is hashed so the tag is always a valid OCI reference no matter
// which characters the path contains.
func imageTag(path string) string {
	h := sha256.Sum256([]byte(path))
	return fmt.Sprintf("pyship-env/%s:latest", hex.EncodeToString(h[:]))
}

// Returns the OCI platform of the host.
func hostPlatform() string {
	return "linux/" + goruntime.GOARCH
}
