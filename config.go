package rig

import (
	"fmt"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// Config holds the tunables of a rig runtime.
//
// Example config.yaml:
//
//	tick_rate_hz: 20
//	mount:
//	  rideable_offset: [0, -0.4, 0]
//	  holder_offset: [0, 0.5, 0]
//	  lead_velocity: true
type Config struct {
	TickRateHz int         `yaml:"tick_rate_hz"`
	Mount      MountConfig `yaml:"mount"`
}

// MountConfig positions the proxies of a Mount relative to its subject.
type MountConfig struct {
	RideableOffset []float64 `yaml:"rideable_offset"`
	HolderOffset   []float64 `yaml:"holder_offset"`
	// LeadVelocity places both proxies at subject position + velocity.
	LeadVelocity *bool `yaml:"lead_velocity"`
}

// DefaultConfig returns the configuration used for missing fields.
func DefaultConfig() Config {
	lead := true
	return Config{
		TickRateHz: 20,
		Mount: MountConfig{
			RideableOffset: []float64{0, -0.4, 0},
			HolderOffset:   []float64{0, 0.5, 0},
			LeadVelocity:   &lead,
		},
	}
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("rig: config %s: %w", path, err)
	}
	cfg, err := ParseConfig(raw)
	if err != nil {
		return Config{}, fmt.Errorf("rig: config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML, fills defaults for missing fields and validates
// the result.
func ParseConfig(raw []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, err
	}
	cfg.fill()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) fill() {
	def := DefaultConfig()
	if c.TickRateHz == 0 {
		c.TickRateHz = def.TickRateHz
	}
	if c.Mount.RideableOffset == nil {
		c.Mount.RideableOffset = def.Mount.RideableOffset
	}
	if c.Mount.HolderOffset == nil {
		c.Mount.HolderOffset = def.Mount.HolderOffset
	}
	if c.Mount.LeadVelocity == nil {
		c.Mount.LeadVelocity = def.Mount.LeadVelocity
	}
}

// Validate checks the configuration for values rig cannot run with.
func (c Config) Validate() error {
	if c.TickRateHz <= 0 {
		return fmt.Errorf("tick_rate_hz must be positive, got %d", c.TickRateHz)
	}
	if n := len(c.Mount.RideableOffset); n != 3 {
		return fmt.Errorf("mount.rideable_offset must have 3 components, got %d", n)
	}
	if n := len(c.Mount.HolderOffset); n != 3 {
		return fmt.Errorf("mount.holder_offset must have 3 components, got %d", n)
	}
	return nil
}

// TickRate returns the duration of one tick.
func (c Config) TickRate() time.Duration {
	if c.TickRateHz <= 0 {
		return 50 * time.Millisecond
	}
	return time.Second / time.Duration(c.TickRateHz)
}

func (c MountConfig) rideable() mgl64.Vec3 { return vec(c.RideableOffset) }
func (c MountConfig) holder() mgl64.Vec3   { return vec(c.HolderOffset) }
func (c MountConfig) lead() bool           { return c.LeadVelocity == nil || *c.LeadVelocity }

func vec(v []float64) mgl64.Vec3 {
	if len(v) != 3 {
		return mgl64.Vec3{}
	}
	return mgl64.Vec3{v[0], v[1], v[2]}
}
