// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Device    DeviceConfig     `yaml:"device"`
	Retry     RetryConfig      `yaml:"retry"`
	Registers []RegisterConfig `yaml:"registers"`
}

// ---- DEVICE ----

type DeviceConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	UnitID    uint8  `yaml:"unit_id"`
	TimeoutMs int    `yaml:"timeout_ms"`
	Debug     bool   `yaml:"debug"`
}

// Endpoint returns the host:port dial target.
func (d DeviceConfig) Endpoint() string {
	return fmt.Sprintf("%s:%d", d.Host, d.Port)
}

// ---- RETRY ----

type RetryConfig struct {
	Attempts int `yaml:"attempts"` // extra attempts after the first
	DelayMs  int `yaml:"delay_ms"`
}

// ---- REGISTERS ----

type RegisterConfig struct {
	Name      string  `yaml:"name"`
	Reference int     `yaml:"reference"` // conventional 5-digit reference
	Type      string  `yaml:"type"`      // u16, s16, u32, s32, f32, u64, s64, f64, bool
	Count     int     `yaml:"count"`     // number of typed values
	Scale     float64 `yaml:"scale"`
	ByteOrder string  `yaml:"byte_order"`
	WordOrder string  `yaml:"word_order"`
	Format    string  `yaml:"format"` // value (default) or hex
}

// Load reads and parses a YAML config file. Validation is separate.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}
