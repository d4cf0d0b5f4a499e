// internal/config/normalize.go
package config

// Defaults match the original field-tooling conventions: Modbus TCP port
// 502, a 5 second socket timeout, single u16 registers, big byte and word
// order, scale passed through as-is (the reader treats 0 as 1).
const (
	DefaultPort      = 502
	DefaultTimeoutMs = 5000
)

// Normalize fills in defaults for omitted fields.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Device.Port == 0 {
		cfg.Device.Port = DefaultPort
	}
	if cfg.Device.TimeoutMs == 0 {
		cfg.Device.TimeoutMs = DefaultTimeoutMs
	}

	for i := range cfg.Registers {
		r := &cfg.Registers[i]

		if r.Type == "" {
			r.Type = "u16"
		}
		if r.Count == 0 {
			r.Count = 1
		}
		if r.ByteOrder == "" {
			r.ByteOrder = "big"
		}
		if r.WordOrder == "" {
			r.WordOrder = "big"
		}
		if r.Format == "" {
			r.Format = "value"
		}
	}
}
