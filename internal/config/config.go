// Package config loads the optional YAML file that supplies defaults for
// the roga subcommands.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kttn8769/relion-optics-group-assigner/internal/fault"
)

type Config struct {
	Find  Find  `yaml:"find"`
	Apply Apply `yaml:"apply"`
}

type Find struct {
	Filelists []string `yaml:"filelists"`
	MTFInfo   string   `yaml:"mtf_info"`
	Outfile   string   `yaml:"outfile"`
	Report    string   `yaml:"report"`
}

type Apply struct {
	InputStar  string `yaml:"input_star"`
	OutputStar string `yaml:"output_star"`
	Membership string `yaml:"membership"`
	ImageSize  int    `yaml:"image_size"`
	Report     string `yaml:"report"`
}

// Load reads path. An empty path yields an empty Config.
func Load(path string) (*Config, error) {
	cfg := new(Config)
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fault.Format("%s does not exist", path)
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fault.Format("%s: %v", path, err)
	}
	if cfg.Apply.ImageSize < 0 {
		return nil, fmt.Errorf("%s: image_size must not be negative", path)
	}
	return cfg, nil
}
