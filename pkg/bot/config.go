package bot

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-go-golems/godbot/pkg/conversation"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the persisted form of a bot: its name, persona context and seed
// dialogue. The live dialogue is session-local and never part of it.
//
// The seed dialogue is stored under "thursdayism": the bot was created last
// thursday, this is the dialogue it is born with.
type Config struct {
	Botname string                `json:"botname" yaml:"botname"`
	Context string                `json:"context" yaml:"context"`
	Seed    conversation.Dialogue `json:"thursdayism" yaml:"thursdayism"`
}

// rawConfig detects missing keys: every key of a config is required.
type rawConfig struct {
	Botname *string                `json:"botname" yaml:"botname"`
	Context *string                `json:"context" yaml:"context"`
	Seed    *conversation.Dialogue `json:"thursdayism" yaml:"thursdayism"`
}

func (r *rawConfig) toConfig() (*Config, error) {
	switch {
	case r.Botname == nil:
		return nil, errors.New("missing field botname")
	case r.Context == nil:
		return nil, errors.New("missing field context")
	case r.Seed == nil:
		return nil, errors.New("missing field thursdayism")
	}
	return &Config{
		Botname: *r.Botname,
		Context: *r.Context,
		Seed:    *r.Seed,
	}, nil
}

// ParseConfig decodes a JSON config. Any failure is a *ParseError.
func ParseConfig(data []byte) (*Config, error) {
	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Source: "json", Err: err}
	}
	cfg, err := raw.toConfig()
	if err != nil {
		return nil, &ParseError{Source: "json", Err: err}
	}
	return cfg, nil
}

// ParseConfigYAML decodes a YAML config. Any failure is a *ParseError.
func ParseConfigYAML(data []byte) (*Config, error) {
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Source: "yaml", Err: err}
	}
	cfg, err := raw.toConfig()
	if err != nil {
		return nil, &ParseError{Source: "yaml", Err: err}
	}
	return cfg, nil
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	return &Config{
		Botname: c.Botname,
		Context: c.Context,
		Seed:    c.Seed.Clone(),
	}
}

func (c *Config) MarshalIndentJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	// keep "<", ">" and "&" readable in persona texts
	enc.SetEscapeHTML(false)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *Config) MarshalIndentYAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isYAMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Marshal encodes the config in the format matching the extension of path:
// YAML for .yaml and .yml, JSON for everything else.
func (c *Config) Marshal(path string) ([]byte, error) {
	if isYAMLPath(path) {
		return c.MarshalIndentYAML()
	}
	return c.MarshalIndentJSON()
}

// Parse decodes data in the format matching the extension of path.
func Parse(path string, data []byte) (*Config, error) {
	if isYAMLPath(path) {
		return ParseConfigYAML(data)
	}
	return ParseConfig(data)
}

func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read bot config %s", path)
	}
	return Parse(path, data)
}

// SaveConfigFile writes the config next to path and renames it into place, so
// readers never see a half-written file.
func SaveConfigFile(path string, cfg *Config) error {
	data, err := cfg.Marshal(path)
	if err != nil {
		return errors.Wrap(err, "could not encode bot config")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "could not create %s", dir)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(err, "could not create temporary config file")
	}
	tmpName := f.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return errors.Wrap(err, "could not write bot config")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "could not write bot config")
	}

	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrapf(err, "could not move bot config to %s", path)
	}
	return nil
}
