// Package config loads the settings of the sfs tool.
package config

import (
	"os"
	"path/filepath"

	"github.com/aligator/gosfs"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

// EnvPath names the environment variable overriding the config location.
const EnvPath = "SFS_CONFIG"

// Config is the global tool configuration
type Config struct {
	// Verbose is used when -v is not given on the command line.
	Verbose int          `yaml:"verbose"`
	Format  FormatConfig `yaml:"format"`
}

// FormatConfig is the config specific to the `format` subcommand
type FormatConfig struct {
	BlockSize     uint16 `yaml:"block-size"`
	BlockCount    uint32 `yaml:"block-count"`
	FATBlocks     uint32 `yaml:"fat-blocks"`
	RootDirBlocks uint32 `yaml:"root-dir-blocks"`
}

// Default returns the configuration used if no file exists.
func Default() Config {
	return Config{
		Verbose: 1,
		Format: FormatConfig{
			BlockSize:     gosfs.DefaultGeometry.BlockSize,
			BlockCount:    gosfs.DefaultGeometry.BlockCount,
			FATBlocks:     gosfs.DefaultGeometry.FATBlocks,
			RootDirBlocks: gosfs.DefaultGeometry.RootDirBlocks,
		},
	}
}

// Geometry converts the format settings.
func (c FormatConfig) Geometry() gosfs.Geometry {
	return gosfs.Geometry{
		BlockSize:     c.BlockSize,
		BlockCount:    c.BlockCount,
		FATBlocks:     c.FATBlocks,
		RootDirBlocks: c.RootDirBlocks,
	}
}

// Path returns the location of the config file.
// It is empty if neither SFS_CONFIG nor a user config directory exist.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "sfs", "config.yml")
}

// Read loads the file at path on top of Default.
// A missing file is not an error.
func Read(fs afero.Fs, path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	b, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, "failed to read %q", path)
	}
	if err := yaml.UnmarshalStrict(b, &cfg); err != nil {
		return Default(), errors.Wrapf(err, "failed to parse %q", path)
	}
	return cfg, nil
}
