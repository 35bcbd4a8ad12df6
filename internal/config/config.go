// Package config handles the optional sem tool configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds defaults that would otherwise be passed as flags on every
// invocation. Flags always take precedence.
type Config struct {
	// LibraryDirs are the default library directories.
	LibraryDirs []string `toml:"library_dirs"`

	// DirVars are default file directory substitution variables.
	DirVars map[string]string `toml:"dir_vars"`

	// Newline is the default output newline convention: posix or windows.
	Newline string `toml:"newline"`

	// HashAlgorithm is the default algorithm for --update-hash: md5 or
	// sha256.
	HashAlgorithm string `toml:"hash_algorithm"`
}

// ResolvePath returns the config file path: the explicit flag value if
// set, else $SEM_CONFIG, else ~/.config/sem/config.toml.
func ResolvePath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if env := os.Getenv("SEM_CONFIG"); env != "" {
		return env
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "sem", "config.toml")
}

// Load reads the config at path. A missing file is not an error: every
// setting has a flag equivalent.
func Load(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("cannot load config '%s': %w", path, err)
	}
	return &cfg, nil
}
