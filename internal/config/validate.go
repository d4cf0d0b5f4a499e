// internal/config/validate.go
package config

import (
	"fmt"

	"github.com/glenmo/modbus-reader/internal/address"
	"github.com/glenmo/modbus-reader/internal/codec"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration; defaults belong to Normalize.
func Validate(cfg *Config) error {
	// ------------------------------------------------------------
	// DEVICE
	// ------------------------------------------------------------

	if cfg.Device.Host == "" {
		return fmt.Errorf("config: device.host is required")
	}
	if cfg.Device.Port < 0 || cfg.Device.Port > 65535 {
		return fmt.Errorf("config: device.port %d out of range", cfg.Device.Port)
	}
	if cfg.Device.UnitID == 0 {
		return fmt.Errorf("config: device.unit_id must be between 1 and 255")
	}
	if cfg.Device.TimeoutMs < 0 {
		return fmt.Errorf("config: device.timeout_ms must not be negative")
	}

	// ------------------------------------------------------------
	// RETRY
	// ------------------------------------------------------------

	if cfg.Retry.Attempts < 0 {
		return fmt.Errorf("config: retry.attempts must not be negative")
	}
	if cfg.Retry.DelayMs < 0 {
		return fmt.Errorf("config: retry.delay_ms must not be negative")
	}

	// ------------------------------------------------------------
	// REGISTERS
	// ------------------------------------------------------------

	if len(cfg.Registers) == 0 {
		return fmt.Errorf("config: at least one register is required")
	}

	seen := make(map[string]struct{})

	for _, r := range cfg.Registers {
		if r.Name == "" {
			return fmt.Errorf("config: register with reference %d has no name", r.Reference)
		}
		if _, dup := seen[r.Name]; dup {
			return fmt.Errorf("config: duplicate register name %q", r.Name)
		}
		seen[r.Name] = struct{}{}

		if _, _, err := address.Resolve(r.Reference); err != nil {
			return fmt.Errorf("config: register %q: %w", r.Name, err)
		}

		if r.Type != "" {
			if _, err := codec.ParseType(r.Type); err != nil {
				return fmt.Errorf("config: register %q: %w", r.Name, err)
			}
		}
		if r.ByteOrder != "" {
			if _, err := codec.ParseByteOrder(r.ByteOrder); err != nil {
				return fmt.Errorf("config: register %q: %w", r.Name, err)
			}
		}
		if r.WordOrder != "" {
			if _, err := codec.ParseWordOrder(r.WordOrder); err != nil {
				return fmt.Errorf("config: register %q: %w", r.Name, err)
			}
		}

		if r.Count < 0 {
			return fmt.Errorf("config: register %q: count must not be negative", r.Name)
		}

		switch r.Format {
		case "", "value", "hex":
		default:
			return fmt.Errorf("config: register %q: unknown format %q", r.Name, r.Format)
		}
	}

	return nil
}
