package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/alnah/audio-splitter/internal/plan"
)

// Config keys.
const (
	KeyOutputDir = "output-dir"
	KeyMaxSize   = "max-size"
	KeyModel     = "model"
)

// Environment variable fallbacks.
const (
	EnvOutputDir = "AUDIOSPLIT_OUTPUT_DIR"
	EnvMaxSize   = "AUDIOSPLIT_MAX_SIZE"
	EnvModel     = "AUDIOSPLIT_MODEL"
)

const (
	appName  = "audiosplit"
	fileName = "config.toml"
	dirPerm  = 0o750
	filePerm = 0o644
)

var (
	// ErrInvalidKey indicates a key that is not one of Keys().
	ErrInvalidKey = errors.New("invalid config key")

	// ErrInvalidValue indicates a value rejected for its key.
	ErrInvalidValue = errors.New("invalid config value")

	// ErrNotDirectory indicates an output-dir that exists but is a file.
	ErrNotDirectory = errors.New("not a directory")

	// ErrNotWritable indicates an output-dir that cannot be written to.
	ErrNotWritable = errors.New("directory is not writable")
)

// Config holds user configuration loaded from
// $XDG_CONFIG_HOME/audiosplit/config.toml.
type Config struct {
	OutputDir string `toml:"output-dir,omitempty"`
	MaxSize   string `toml:"max-size,omitempty"`
	Model     string `toml:"model,omitempty"`
}

// Keys returns the supported configuration keys in display order.
func Keys() []string {
	return []string{KeyOutputDir, KeyMaxSize, KeyModel}
}

// field returns a pointer to the field stored under key.
func (c *Config) field(key string) (*string, error) {
	switch key {
	case KeyOutputDir:
		return &c.OutputDir, nil
	case KeyMaxSize:
		return &c.MaxSize, nil
	case KeyModel:
		return &c.Model, nil
	}
	return nil, fmt.Errorf("%w: %q (valid keys: %s)", ErrInvalidKey, key, strings.Join(Keys(), ", "))
}

// Values returns the non-empty settings keyed by config key.
func (c Config) Values() map[string]string {
	values := make(map[string]string)
	for _, key := range Keys() {
		v, _ := c.field(key)
		if *v != "" {
			values[key] = *v
		}
	}
	return values
}

// dir returns the configuration directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/audiosplit.
func dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// Path returns the full path to the config file.
func Path() (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, fileName), nil
}

// Load reads the configuration file and environment variables.
// Precedence: config file values, then environment variable fallbacks.
// Returns an empty Config if the file doesn't exist (not an error).
func Load() (Config, error) {
	p, err := Path()
	if err != nil {
		return Config{}, err
	}

	cfg, err := readFile(p)
	if err != nil {
		return Config{}, err
	}

	// Environment variable fallback (only if not set in config).
	if cfg.OutputDir == "" {
		cfg.OutputDir = os.Getenv(EnvOutputDir)
	}
	if cfg.MaxSize == "" {
		cfg.MaxSize = os.Getenv(EnvMaxSize)
	}
	if cfg.Model == "" {
		cfg.Model = os.Getenv(EnvModel)
	}

	return cfg, nil
}

// readFile decodes the TOML file at p. A missing file yields an empty Config.
func readFile(p string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(p) // #nosec G304 -- config path is constructed from home dir
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", p, err)
	}
	return cfg, nil
}

// Validate checks value for key without saving it.
func Validate(key, value string) error {
	var cfg Config
	if _, err := cfg.field(key); err != nil {
		return err
	}
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("%w: %s must be a single line", ErrInvalidValue, key)
	}

	switch key {
	case KeyMaxSize:
		if _, err := plan.ParseSize(value); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidValue, key, err)
		}
	case KeyOutputDir, KeyModel:
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s cannot be empty", ErrInvalidValue, key)
		}
	}
	return nil
}

// Save validates and writes a single key to the config file.
// Creates the config directory and file if they don't exist.
// Preserves the other keys.
func Save(key, value string) error {
	if err := Validate(key, value); err != nil {
		return err
	}

	p, err := Path()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p), dirPerm); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	cfg, err := readFile(p)
	if err != nil {
		return err
	}
	field, _ := cfg.field(key)
	*field = value

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(p, data, filePerm); err != nil { // #nosec G306 -- user config, not secret
		return fmt.Errorf("cannot write config file: %w", err)
	}
	return nil
}

// Get reads a single value from the config file.
// Returns empty string if the key is not set.
func Get(key string) (string, error) {
	p, err := Path()
	if err != nil {
		return "", err
	}

	cfg, err := readFile(p)
	if err != nil {
		return "", err
	}
	field, err := cfg.field(key)
	if err != nil {
		return "", err
	}
	return *field, nil
}

// List returns all values set in the config file.
func List() (map[string]string, error) {
	p, err := Path()
	if err != nil {
		return nil, err
	}

	cfg, err := readFile(p)
	if err != nil {
		return nil, err
	}
	return cfg.Values(), nil
}

// EnsureOutputDir expands d, creates it if missing and checks it is a
// writable directory.
func EnsureOutputDir(d string) error {
	if d == "" {
		return fmt.Errorf("%w: output-dir cannot be empty", ErrInvalidValue)
	}
	d = ExpandPath(d)

	info, err := os.Stat(d)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(d, dirPerm); err != nil {
			return fmt.Errorf("%w: cannot create %s: %w", ErrNotWritable, d, err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("cannot access directory: %w", err)
	case !info.IsDir():
		return fmt.Errorf("%w: %s", ErrNotDirectory, d)
	}

	f, err := os.CreateTemp(d, ".audiosplit-write-test-*")
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrNotWritable, d, err)
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name) // best effort cleanup

	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if p == "~" {
		return home
	}
	return filepath.Join(home, p[2:])
}
