// Package config manages mimir's persisted configuration: the active model,
// temperature, named profiles and favorite models. The configuration lives in
// a single JSON file and is written back atomically after every mutation.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/mimirsh/mimir/internal/util"
)

const (
	// DefaultModel is used whenever use_default_model is set or nothing else
	// resolves.
	DefaultModel = "tinyllama:latest"

	// DefaultTemperature is the compiled-in sampling temperature.
	DefaultTemperature = 0.1

	DefaultOllamaURL      = "http://localhost:11434"
	DefaultTimeoutSeconds = 30
	DefaultMaxMatches     = 20
	DefaultManBudget      = 600
)

// Profile is a named bundle of model and temperature selectable as a unit.
type Profile struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
}

// Config is the full persisted configuration.
type Config struct {
	Model           string             `json:"model"`
	OllamaURL       string             `json:"ollama_url"`
	Temperature     float64            `json:"temperature"`
	UseDefaultModel bool               `json:"use_default_model"`
	Stream          bool               `json:"stream"`
	HistoryFile     string             `json:"history_file"`
	TimeoutSeconds  int                `json:"timeout_seconds"`
	MaxMatches      int                `json:"max_matches"`
	ManBudget       int                `json:"man_budget"`
	Profiles        map[string]Profile `json:"profiles"`
	Favorites       []string           `json:"favorites"`
}

// ConfigError indicates that a configuration file exists but could not be
// parsed as the expected structure. Callers must not silently fall back to
// defaults when they see this error.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config file %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsConfigError reports whether err is a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		Model:           DefaultModel,
		OllamaURL:       DefaultOllamaURL,
		Temperature:     DefaultTemperature,
		UseDefaultModel: true,
		Stream:          false,
		HistoryFile:     "~/.bash_history",
		TimeoutSeconds:  DefaultTimeoutSeconds,
		MaxMatches:      DefaultMaxMatches,
		ManBudget:       DefaultManBudget,
		Profiles: map[string]Profile{
			"lightweight": {Model: "tinyllama:latest", Temperature: 0.1},
			"balanced":    {Model: "llama3.2:1b", Temperature: 0.2},
			"powerful":    {Model: "llama3.2:3b", Temperature: 0.1},
		},
		Favorites: []string{
			"tinyllama:latest",
			"llama3.2:1b",
			"llama3.2:3b",
			"codellama:latest",
			"mistral:latest",
		},
	}
}

// Load reads the configuration file at path. A missing file yields the
// compiled-in defaults. An unreadable or unparseable file yields a ConfigError;
// the caller must report the path and abort rather than quietly reverting to
// defaults, since persisted state would otherwise silently diverge from what
// the user sees.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, &ConfigError{Path: path, Err: err}
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	cfg.normalize()
	return cfg, nil
}

// Save writes the configuration atomically (temp file + rename) so a crash
// mid-write cannot leave a partial file behind.
func (c *Config) Save(path string) error {
	c.normalize()

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	data = append(data, '\n')

	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// normalize fills in zero values and enforces invariants after a load or
// before a save. Temperatures are always clamped to [0.0, 1.0].
func (c *Config) normalize() {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.OllamaURL == "" {
		c.OllamaURL = DefaultOllamaURL
	}
	if c.HistoryFile == "" {
		c.HistoryFile = "~/.bash_history"
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.MaxMatches <= 0 {
		c.MaxMatches = DefaultMaxMatches
	}
	if c.ManBudget <= 0 {
		c.ManBudget = DefaultManBudget
	}
	if len(c.Profiles) == 0 {
		c.Profiles = Default().Profiles
	}
	if c.Favorites == nil {
		c.Favorites = []string{}
	}

	c.Temperature = ClampTemperature(c.Temperature)
	for name, p := range c.Profiles {
		p.Temperature = ClampTemperature(p.Temperature)
		c.Profiles[name] = p
	}
}

// ClampTemperature bounds t to the valid [0.0, 1.0] range.
func ClampTemperature(t float64) float64 {
	if t < 0.0 {
		return 0.0
	}
	if t > 1.0 {
		return 1.0
	}
	return t
}

// SetModel sets the active model explicitly and disables the default-model
// behavior.
func (c *Config) SetModel(model string) {
	c.Model = model
	c.UseDefaultModel = false
}

// ApplyProfile copies the named profile's model and temperature into the
// active configuration.
func (c *Config) ApplyProfile(name string) error {
	p, ok := c.Profiles[name]
	if !ok {
		return fmt.Errorf("unknown profile %q (available: %v)", name, c.ProfileNames())
	}
	c.Model = p.Model
	c.Temperature = ClampTemperature(p.Temperature)
	c.UseDefaultModel = false
	return nil
}

// SetTemperature sets the active temperature, clamped to the valid range.
func (c *Config) SetTemperature(t float64) {
	c.Temperature = ClampTemperature(t)
}

// ResetDefault restores the compiled-in model, temperature and default-model
// flag, independent of any prior profile selection.
func (c *Config) ResetDefault() {
	c.Model = DefaultModel
	c.Temperature = DefaultTemperature
	c.UseDefaultModel = true
}

// AddFavorite appends a model to the favorites list. Returns false if it was
// already present.
func (c *Config) AddFavorite(model string) bool {
	if slices.Contains(c.Favorites, model) {
		return false
	}
	c.Favorites = append(c.Favorites, model)
	return true
}

// ProfileNames returns the profile names in sorted order.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
