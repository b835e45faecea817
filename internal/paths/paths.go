package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	toolName = "pyship"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755
)

// Path to the directory for persistent configuration.
//
//	Linux:   ~/.config/pyship
//	macOS:   ~/Library/Application Support/pyship
func Config() string {
	return filepath.Join(xdg.ConfigHome, toolName)
}

// Default path to the settings file.
//
//	Linux:   ~/.config/pyship/settings.toml
//	macOS:   ~/Library/Application Support/pyship/settings.toml
func Settings() string {
	return filepath.Join(Config(), "settings.toml")
}
