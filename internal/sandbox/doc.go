// Package sandbox runs distribution builds inside containers.
//
// An isolated build is the reproducible alternative to building on the
// host: a pinned build image is imported from an OCI archive into
// containerd, a container is started from it, the project tree is
// streamed in as a tar archive, "python -m build" runs inside, and the
// resulting dist directory is streamed back out to the host. The host
// environment never influences the build.
//
// A [Runtime] wraps the containerd client; a [Container] wraps a running
// task that commands are executed in and files are copied through. The
// [Builder] ties both together behind the publish pipeline's build hook.
//
// Example usage:
//
//	rt, err := sandbox.New(sandbox.DefaultAddress, sandbox.DefaultNamespace)
//	if err != nil {
//	    return err
//	}
//	defer rt.Close()
//
//	b := sandbox.NewBuilder(rt, "build-env.tar", "python3")
//	if err := b.Build(ctx, projectRoot); err != nil {
//	    return err
//	}
package sandbox
