// cmd/modreader/main.go
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/glenmo/modbus-reader/internal/codec"
	"github.com/glenmo/modbus-reader/internal/config"
	"github.com/glenmo/modbus-reader/internal/reader"
)

func main() {
	var (
		cfgPath = flag.String("config", "", "YAML register map; overrides the single-register flags")

		host      = flag.String("host", "127.0.0.1", "device IP or hostname")
		port      = flag.Int("port", config.DefaultPort, "Modbus TCP port")
		unit      = flag.Uint("unit", 1, "Modbus slave/unit id (1-255)")
		register  = flag.Int("register", 0, "register reference, e.g. 40001 or 30002")
		count     = flag.Int("count", 1, "number of typed values to read")
		dtype     = flag.String("type", "u16", "value type: u16, s16, u32, s32, f32, u64, s64, f64, bool")
		scale     = flag.Float64("scale", 1.0, "scaling factor applied to each value")
		byteOrder = flag.String("byteorder", "big", "byte order within each register: big or little")
		wordOrder = flag.String("wordorder", "big", "register order for multi-register values: big or little")
		hexOut    = flag.Bool("hex", false, "print raw registers as a hex string (model/serial registers)")

		timeout    = flag.Duration("timeout", time.Duration(config.DefaultTimeoutMs)*time.Millisecond, "socket timeout")
		retries    = flag.Int("retries", 2, "extra attempts on transient failures")
		retryDelay = flag.Duration("retry-delay", 200*time.Millisecond, "pause between attempts")
		debug      = flag.Bool("debug", false, "trace Modbus frames on stderr")
	)
	flag.Parse()

	cfg, err := loadConfig(*cfgPath, singleRegister{
		host:      *host,
		port:      *port,
		unit:      *unit,
		register:  *register,
		count:     *count,
		dtype:     *dtype,
		scale:     *scale,
		byteOrder: *byteOrder,
		wordOrder: *wordOrder,
		hex:       *hexOut,
		timeout:   *timeout,
		debug:     *debug,
	})
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if *cfgPath == "" {
		cfg.Retry.Attempts = *retries
		cfg.Retry.DelayMs = int(retryDelay.Milliseconds())
	}

	r, closeConn, err := reader.Build(cfg.Device)
	if err != nil {
		log.Fatalf("connect to %s failed: %v", cfg.Device.Endpoint(), err)
	}
	defer func() {
		if err := closeConn(); err != nil {
			log.Printf("close failed: %v", err)
		}
	}()

	log.Printf("connected to %s (unit %d)", cfg.Device.Endpoint(), cfg.Device.UnitID)

	failed := false
	for _, reg := range cfg.Registers {
		if err := readOne(r, cfg.Retry, reg); err != nil {
			log.Printf("read failed (register=%s ref=%d): %v", reg.Name, reg.Reference, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

// singleRegister carries the flag-mode parameters before they are folded
// into the same config shape the YAML path produces.
type singleRegister struct {
	host      string
	port      int
	unit      uint
	register  int
	count     int
	dtype     string
	scale     float64
	byteOrder string
	wordOrder string
	hex       bool
	timeout   time.Duration
	debug     bool
}

func loadConfig(path string, one singleRegister) (*config.Config, error) {
	var cfg *config.Config

	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		if one.register == 0 {
			return nil, fmt.Errorf("either -config or -register is required")
		}
		if one.unit > 255 {
			return nil, fmt.Errorf("unit id %d out of range (1-255)", one.unit)
		}
		format := "value"
		if one.hex {
			format = "hex"
		}
		cfg = &config.Config{
			Device: config.DeviceConfig{
				Host:      one.host,
				Port:      one.port,
				UnitID:    uint8(one.unit),
				TimeoutMs: int(one.timeout.Milliseconds()),
				Debug:     one.debug,
			},
			Registers: []config.RegisterConfig{{
				Name:      fmt.Sprintf("register_%d", one.register),
				Reference: one.register,
				Type:      one.dtype,
				Count:     one.count,
				Scale:     one.scale,
				ByteOrder: one.byteOrder,
				WordOrder: one.wordOrder,
				Format:    format,
			}},
		}
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	config.Normalize(cfg)
	return cfg, nil
}

func readOne(r *reader.Reader, retry config.RetryConfig, reg config.RegisterConfig) error {
	t, err := codec.ParseType(reg.Type)
	if err != nil {
		return err
	}
	bo, err := codec.ParseByteOrder(reg.ByteOrder)
	if err != nil {
		return err
	}
	wo, err := codec.ParseWordOrder(reg.WordOrder)
	if err != nil {
		return err
	}

	readings, err := r.Read(reader.Request{
		Reference:  reg.Reference,
		Type:       t,
		Count:      reg.Count,
		Scale:      reg.Scale,
		ByteOrder:  bo,
		WordOrder:  wo,
		Retries:    retry.Attempts,
		RetryDelay: time.Duration(retry.DelayMs) * time.Millisecond,
	})
	if err != nil {
		return err
	}

	var raw []uint16
	for _, rd := range readings {
		raw = append(raw, rd.Raw...)
	}

	if reg.Format == "hex" {
		fmt.Printf("%s: %s (raw %v)\n", reg.Name, codec.HexString(raw), raw)
		return nil
	}

	if len(readings) == 1 {
		fmt.Printf("%s: %g (raw %v)\n", reg.Name, readings[0].Value, raw)
		return nil
	}
	for i, rd := range readings {
		fmt.Printf("%s[%d]: %g (raw %v)\n", reg.Name, i, rd.Value, rd.Raw)
	}
	return nil
}
