// Package config loads .chatcall.yaml and resolves the API credential from
// the source it names.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = ".chatcall.yaml"

// DefaultAPIKeyEnv is the environment variable holding the credential unless
// credential.env overrides it.
const DefaultAPIKeyEnv = "OPENAI_API_KEY"

// Config holds settings loaded from .chatcall.yaml.
type Config struct {
	Credential CredentialSettings `yaml:"credential"`
	BaseURL    string             `yaml:"base_url"` // custom OpenAI-compatible API base URL
	Timeout    string             `yaml:"timeout"`  // per-request timeout (e.g., "30s"); empty keeps the transport default

	// dir is the directory relative credential paths are resolved against.
	dir string
}

// CredentialSettings names where the API key is read from. When several are
// set, File wins over Dotenv, which wins over Env.
type CredentialSettings struct {
	Env    string `yaml:"env"`    // env var name (default: OPENAI_API_KEY)
	Dotenv string `yaml:"dotenv"` // dotenv file containing the env var
	File   string `yaml:"file"`   // file whose trimmed contents are the key
}

// Load reads the config file at path. If the file does not exist, a
// zero-value Config is returned with no error.
func Load(path string) (*Config, error) {
	cfg := &Config{dir: filepath.Dir(path)}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return cfg, nil
}

// APIKeyEnv returns the name of the environment variable holding the key.
func (c *Config) APIKeyEnv() string {
	if c.Credential.Env != "" {
		return c.Credential.Env
	}
	return DefaultAPIKeyEnv
}

// ResolveAPIKey returns the credential. A key that is absent everywhere is
// not an error; the remote service rejects the call instead. getenv is
// usually os.Getenv.
func (c *Config) ResolveAPIKey(getenv func(string) string) (string, error) {
	if c.Credential.File != "" {
		path := c.resolve(c.Credential.File)
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading credential file %s: %w", path, err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	name := c.APIKeyEnv()

	if c.Credential.Dotenv != "" {
		path := c.resolve(c.Credential.Dotenv)
		vars, err := godotenv.Read(path)
		if err != nil {
			return "", fmt.Errorf("reading dotenv file %s: %w", path, err)
		}
		if v, ok := vars[name]; ok {
			return v, nil
		}
	}

	return getenv(name), nil
}

// RequestTimeout parses the timeout setting. Empty means zero.
func (c *Config) RequestTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid timeout %q: must not be negative", c.Timeout)
	}
	return d, nil
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}
