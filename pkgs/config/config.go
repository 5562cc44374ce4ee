// Package config loads the per-project .delight.yaml file.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/delight-lang/delight/pkgs/errors"
)

// FileName is the configuration file looked up from the working directory
// upwards.
const FileName = ".delight.yaml"

//go:embed schema.json
var schemaJSON string

// Config holds project settings. Command line flags override them.
type Config struct {
	Indentation string `yaml:"indentation"` // output indentation unit; empty means detect
	Extension   string `yaml:"extension"`   // extension of generated files
	Header      bool   `yaml:"header"`      // write the generated-code header
	Color       *bool  `yaml:"color"`       // nil means decide from the terminal
	Requires    string `yaml:"requires"`    // minimum delight version

	// Path is the file the settings came from, or "" for defaults.
	Path string `yaml:"-"`
}

// Default returns the settings used without a configuration file.
func Default() *Config {
	return &Config{
		Extension: ".d",
		Header:    true,
	}
}

var (
	schema     *jsonschema.Schema
	schemaErr  error
	schemaOnce sync.Once
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true
		if compiler.Formats == nil {
			compiler.Formats = make(map[string]func(interface{}) bool)
		}
		compiler.Formats["semver"] = func(v interface{}) bool {
			s, ok := v.(string)
			if !ok {
				return true // type validation happens separately
			}
			return semver.IsValid(canonical(s))
		}
		url := "schema://delight-config.json"
		if err := compiler.AddResource(url, strings.NewReader(schemaJSON)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = compiler.Compile(url)
	})
	return schema, schemaErr
}

// canonical adds the "v" prefix semver expects.
func canonical(version string) string {
	if !strings.HasPrefix(version, "v") {
		return "v" + version
	}
	return version
}

// Parse validates YAML configuration data and applies it over the defaults.
func Parse(data []byte, path string) (*Config, error) {
	cfg := Default()
	cfg.Path = path

	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewConfigError(errors.ErrConfigValidation, path, err)
	}
	if doc == nil {
		return cfg, nil
	}

	// The validator works on JSON values, so round-trip the document.
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrConfigValidation, path, err)
	}
	var value interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&value); err != nil {
		return nil, errors.NewConfigError(errors.ErrConfigValidation, path, err)
	}

	s, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("config schema: %w", err)
	}
	if err := s.Validate(value); err != nil {
		return nil, errors.NewConfigError(errors.ErrConfigValidation, path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigError(errors.ErrConfigValidation, path, err)
	}
	return cfg, nil
}

// Load reads the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrConfigRead, path, err)
	}
	return Parse(data, path)
}

// Find returns the nearest configuration file at or above dir.
func Find(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// Resolve loads the explicit path when given, otherwise the nearest
// configuration file above dir, otherwise the defaults.
func Resolve(explicit, dir string) (*Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	if path, ok := Find(dir); ok {
		return Load(path)
	}
	return Default(), nil
}

// CheckVersion fails when the configuration requires a newer delight than
// current. Development builds without a release version always pass.
func (c *Config) CheckVersion(current string) error {
	if c.Requires == "" || !semver.IsValid(canonical(current)) {
		return nil
	}
	if semver.Compare(canonical(current), canonical(c.Requires)) < 0 {
		return errors.New(errors.ErrVersionMismatch,
			fmt.Sprintf("configuration requires delight %s or newer, this is %s", c.Requires, current)).
			WithContext("file", c.Path)
	}
	return nil
}

// ColorEnabled decides whether diagnostics are colored. terminal reports
// whether stderr is a terminal.
func (c *Config) ColorEnabled(terminal bool) bool {
	if c.Color != nil {
		return *c.Color && terminal
	}
	return terminal
}
