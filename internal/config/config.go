// Package config loads the RuboCop-layout YAML file that configures a run.
//
//	AllCops:
//	  Exclude: ["vendor/**", "db/schema.rb"]
//	Layout/IndentationWidth:
//	  Width: 2
//	ParanoiaSupport/CallActsAsParanoid:
//	  Superclass:
//	    - ApplicationRecord
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/toyz/paranoia/internal/cop/paranoia"
	"github.com/toyz/paranoia/internal/errors"
)

// DiscoveryFiles are looked up, in order, in the working directory when no
// explicit path is given
var DiscoveryFiles = []string{".paranoia.yml", ".rubocop.yml"}

const (
	allCopsKey          = "AllCops"
	indentationWidthKey = "Layout/IndentationWidth"
)

// Config is the effective configuration of a run
type Config struct {
	// Path is the file the configuration came from; empty for built-in defaults
	Path string

	Exclude          []string
	IndentationWidth int
	Paranoia         paranoia.Config
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		IndentationWidth: paranoia.DefaultIndentationWidth,
		Paranoia:         paranoia.DefaultConfig(),
	}
}

type allCops struct {
	Exclude []string `yaml:"Exclude"`
}

type indentationWidth struct {
	Width int `yaml:"Width"`
}

// Parse decodes configuration from YAML. Sections that are absent keep their
// defaults; unrelated cops are ignored.
func Parse(path string, data []byte) (*Config, error) {
	cfg := Default()
	cfg.Path = path

	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	var sections map[string]yaml.Node
	if err := yaml.Unmarshal(data, &sections); err != nil {
		return nil, errors.WrapConfigurationError(path, "parse", err).WithFile(path)
	}

	if node, ok := sections[allCopsKey]; ok {
		var all allCops
		if err := node.Decode(&all); err != nil {
			return nil, sectionError(path, allCopsKey, &node, err)
		}
		cfg.Exclude = all.Exclude
	}

	if node, ok := sections[indentationWidthKey]; ok {
		var width indentationWidth
		if err := node.Decode(&width); err != nil {
			return nil, sectionError(path, indentationWidthKey, &node, err)
		}
		if width.Width < 0 {
			return nil, errors.ConfigurationError(indentationWidthKey,
				fmt.Sprintf("Width must not be negative, got %d", width.Width)).WithFile(path)
		}
		if width.Width > 0 {
			cfg.IndentationWidth = width.Width
		}
	}

	if node, ok := sections[paranoia.CopName]; ok {
		copCfg, err := DecodeCop(&node)
		if err != nil {
			return nil, sectionError(path, paranoia.CopName, &node, err)
		}
		cfg.Paranoia = copCfg
	}

	return cfg, nil
}

// DecodeCop decodes the cop's block. An absent Superclass key keeps the
// default watch list.
func DecodeCop(node *yaml.Node) (paranoia.Config, error) {
	cfg := paranoia.DefaultConfig()
	if node.Kind == 0 || (node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null") {
		return cfg, nil
	}
	if err := node.Decode(&cfg); err != nil {
		return paranoia.Config{}, err
	}
	return cfg, nil
}

func sectionError(path, section string, node *yaml.Node, cause error) error {
	if errors.IsConfigurationError(cause) {
		if base, ok := cause.(*errors.BaseError); ok {
			return base.WithFile(path)
		}
		return cause
	}
	return errors.WrapConfigurationError(section, "decode", cause).
		WithLocation(errors.SourceLocation{File: path, Line: node.Line})
}

// Load reads and parses the configuration file at path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapConfigurationError(path, "read", err).WithFile(path)
	}
	return Parse(path, data)
}

// Discover returns the configuration file to use: explicit when set (which
// must exist), else the first of DiscoveryFiles present in dir. It returns
// an empty path when no file applies.
func Discover(dir, explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", errors.WrapConfigurationError(explicit, "find", err).
				WithSuggestion("check the --config path")
		}
		return explicit, nil
	}

	for _, name := range DiscoveryFiles {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", nil
}

// Resolve discovers and loads the configuration, falling back to defaults
func Resolve(dir, explicit string) (*Config, error) {
	path, err := Discover(dir, explicit)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Overrides are command line settings layered over the file
type Overrides struct {
	// Superclasses are appended to the watch list as bare rules
	Superclasses []string

	// IndentationWidth replaces the configured width when positive
	IndentationWidth int
}

// Apply layers o over c
func (c *Config) Apply(o Overrides) {
	for _, name := range o.Superclasses {
		c.Paranoia.Superclass = append(c.Paranoia.Superclass, paranoia.Bare(name))
	}
	if o.IndentationWidth > 0 {
		c.IndentationWidth = o.IndentationWidth
	}
}

// Source describes where the configuration came from, for diagnostics
func (c *Config) Source() string {
	if c.Path == "" {
		return "built-in defaults"
	}
	return c.Path
}
