package config

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// EnvPath overrides the default config file location.
const EnvPath = "APICALL_CONFIG"

// Load reads and parses a YAML configuration file. ${VAR} references are
// expanded from the environment before parsing so secrets can stay out of
// the file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	return Parse(data)
}

// Parse parses YAML configuration data.
func Parse(data []byte) (*File, error) {
	file := &File{}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), file); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	if err := file.validate(); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "invalid configuration"), ErrInvalid)
	}

	return file, nil
}

// DefaultPath returns the config file location: $APICALL_CONFIG when set,
// otherwise apicall/config.yaml under the XDG config directory.
func DefaultPath() (string, error) {
	if path := os.Getenv(EnvPath); path != "" {
		return path, nil
	}

	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "failed to resolve home directory")
		}
		base = filepath.Join(home, ".config")
	}

	return filepath.Join(base, "apicall", "config.yaml"), nil
}
