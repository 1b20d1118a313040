package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// duration parses Go duration strings ("12s", "150ms") from YAML.
type duration time.Duration

func (d *duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = duration(parsed)

	return nil
}

// config is the optional file at ~/.config/pathgo.yaml. Every field has a
// working default; command line flags override whatever the file sets.
type config struct {
	Runtime   duration `yaml:"runtime"`
	BatchSize int      `yaml:"batch_size"`
	MinDelay  duration `yaml:"min_delay"`
	MaxDelay  duration `yaml:"max_delay"`
	Weight    string   `yaml:"weight"`
	Heuristic string   `yaml:"heuristic"`
	OutputDir string   `yaml:"output_dir"`
	DataDir   string   `yaml:"data_dir"`

	S3 struct {
		Bucket string `yaml:"bucket"`
		Prefix string `yaml:"prefix"`
		Table  string `yaml:"table"`
	} `yaml:"s3"`

	// Presets adds or overrides city generator parameter sets by name.
	Presets map[string]cityParams `yaml:"presets"`
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", "pathgo.yaml")
}

// loadConfig reads the config file. A missing file is not an error; the
// zero config stands in for it.
func loadConfig(path string) (*config, error) {
	cfg := &config{}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// preset resolves a place name, config entries first, then the built-in
// set.
func (c *config) preset(name string) (cityParams, bool) {
	if p, ok := c.Presets[name]; ok {
		return p.withDefaults(), true
	}

	p, ok := builtinPresets[name]

	return p, ok
}

// cityParams parameterize the synthetic street grid generator.
type cityParams struct {
	// Seed makes the generated city reproducible.
	Seed int64 `yaml:"seed"`

	// Width and Height are the grid dimensions in nodes.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// Lat and Lon anchor the grid center.
	Lat float64 `yaml:"lat"`
	Lon float64 `yaml:"lon"`

	// Spacing is the lattice step in degrees.
	Spacing float64 `yaml:"spacing"`

	// Jitter displaces each node by up to this fraction of Spacing.
	Jitter float64 `yaml:"jitter"`

	// Removal is the fraction of non-backbone streets dropped.
	Removal float64 `yaml:"removal"`

	// SpeedKmh is the base travel speed; per-street speeds vary around it.
	SpeedKmh float64 `yaml:"speed_kmh"`
}

func (p cityParams) withDefaults() cityParams {
	if p.Width <= 0 {
		p.Width = 40
	}

	if p.Height <= 0 {
		p.Height = 32
	}

	if p.Spacing <= 0 {
		p.Spacing = 0.0015
	}

	if p.Jitter < 0 {
		p.Jitter = 0
	}

	if p.Removal < 0 {
		p.Removal = 0
	}

	if p.SpeedKmh <= 0 {
		p.SpeedKmh = 40
	}

	return p
}

// builtinPresets are ready-made city parameter sets. Coordinates anchor
// each synthetic grid at the real city center; sizes and seeds differ so
// the cities feel distinct.
var builtinPresets = map[string]cityParams{
	"baku":    {Seed: 4001, Width: 40, Height: 32, Lat: 40.4093, Lon: 49.8671, Spacing: 0.0016, Jitter: 0.35, Removal: 0.12, SpeedKmh: 38},
	"seattle": {Seed: 4002, Width: 48, Height: 40, Lat: 47.6062, Lon: -122.3321, Spacing: 0.0015, Jitter: 0.30, Removal: 0.10, SpeedKmh: 42},
	"tokyo":   {Seed: 4003, Width: 64, Height: 56, Lat: 35.6762, Lon: 139.6503, Spacing: 0.0012, Jitter: 0.40, Removal: 0.15, SpeedKmh: 32},
	"london":  {Seed: 4004, Width: 56, Height: 48, Lat: 51.5072, Lon: -0.1276, Spacing: 0.0014, Jitter: 0.45, Removal: 0.14, SpeedKmh: 30},
	"seoul":   {Seed: 4005, Width: 52, Height: 44, Lat: 37.5665, Lon: 126.9780, Spacing: 0.0013, Jitter: 0.30, Removal: 0.10, SpeedKmh: 36},
	"nyc":     {Seed: 4006, Width: 44, Height: 52, Lat: 40.7128, Lon: -74.0060, Spacing: 0.0015, Jitter: 0.20, Removal: 0.08, SpeedKmh: 28},
}
