package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/shiphq/pyship/internal/paths"
)

// Interpreter used when the settings file does not name one.
const DefaultInterpreter = "python3"

var ErrSettings = errors.New("invalid settings file")

// User-tunable defaults loaded from the settings file.
type Settings struct {
	Interpreter string  `toml:"interpreter"` // Python interpreter command.
	Indexes     Indexes `toml:"indexes"`     // Per-target endpoint overrides.
}

// Endpoint overrides for the two targets.
type Indexes struct {
	Production Endpoints `toml:"production"`
	Staging    Endpoints `toml:"staging"`
}

// Overrides for a single index. Empty fields keep the built-in defaults.
type Endpoints struct {
	RepositoryURL string `toml:"repository-url"`
	SimpleURL     string `toml:"simple-url"`
}

// Returns the built-in settings.
func Default() Settings {
	return Settings{Interpreter: DefaultInterpreter}
}

// Loads settings from the default location.
//
// A missing file yields the defaults without error.
func Load() (Settings, error) {
	return LoadFile(paths.Settings())
}

// Loads settings from the given path.
//
// Values absent from the file keep their defaults. A file that cannot be
// read or parsed is an error; a file that does not exist is not.
func LoadFile(path string) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("%w: %w", ErrSettings, err)
	}

	if err := toml.Unmarshal(data, &s); err != nil {
		return Default(), fmt.Errorf("%w: %s: %w", ErrSettings, path, err)
	}

	if s.Interpreter == "" {
		s.Interpreter = DefaultInterpreter
	}

	return s, nil
}
