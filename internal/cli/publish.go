package cli

import (
	"context"
	"fmt"

	"github.com/shiphq/pyship/internal/index"
	"github.com/shiphq/pyship/internal/publish"
	"github.com/shiphq/pyship/internal/sandbox"
	"github.com/shiphq/pyship/internal/settings"
	"github.com/shiphq/pyship/internal/toolchain"
)

// Represents the 'pyship publish' command.
type PublishCmd struct {
	Test              bool   `help:"Upload to the staging index (TestPyPI) instead of production."`
	SkipTests         bool   `help:"Bypass the test suite."`
	SkipClean         bool   `help:"Keep stale build artifacts instead of cleaning them."`
	Sandbox           string `help:"Build inside a container created from this OCI archive." placeholder:"ARCHIVE"`
	ContainerdAddress string `help:"Containerd socket for sandboxed builds." placeholder:"PATH"`
}

// Executes the publish command.
//
// Loads the settings, resolves the target index, assembles the toolchain
// (and the container sandbox when requested), and hands off to the
// publish pipeline. On success the install instructions for the chosen
// index are printed.
func (c *PublishCmd) Run(ctx context.Context) error {
	set, err := c.loadSettings()
	if err != nil {
		return err
	}

	target := index.Production
	endpoints := set.Indexes.Production
	if c.Test {
		target = index.Staging
		endpoints = set.Indexes.Staging
	}

	opts := publish.Options{
		Target:        target,
		SkipTests:     c.SkipTests,
		SkipClean:     c.SkipClean,
		RepositoryURL: endpoints.RepositoryURL,
		SimpleURL:     endpoints.SimpleURL,
	}

	if c.Sandbox != "" {
		address := c.ContainerdAddress
		if address == "" {
			address = sandbox.DefaultAddress
		}

		rt, err := sandbox.New(address, sandbox.DefaultNamespace)
		if err != nil {
			return err
		}
		defer rt.Close()

		opts.Builder = sandbox.NewBuilder(rt, c.Sandbox, set.Interpreter)
	}

	tc := toolchain.New(toolchain.NewRunner(), set.Interpreter)

	result, err := publish.Run(ctx, tc, opts)
	if err != nil {
		return err
	}

	name := result.Project.NormalizedName()
	fmt.Printf("\nPublished %s to the %s index. Install it with:\n\n  %s\n",
		name, result.Index.Target, result.Index.InstallCommand(name))

	return nil
}

// Loads the settings file, honoring the --settings override.
func (c *PublishCmd) loadSettings() (settings.Settings, error) {
	if RootCmd.Settings != "" {
		return settings.LoadFile(RootCmd.Settings)
	}
	return settings.Load()
}
