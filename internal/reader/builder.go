// internal/reader/builder.go
package reader

import (
	"log"
	"os"
	"time"

	cfg "github.com/glenmo/modbus-reader/internal/config"
	tmodbus "github.com/glenmo/modbus-reader/internal/transport/modbus"
)

// Build constructs a Reader over a freshly connected Modbus TCP transport.
// The returned closer releases the connection; callers must invoke it on
// every exit path.
func Build(device cfg.DeviceConfig) (*Reader, func() error, error) {
	var logger *log.Logger
	if device.Debug {
		logger = log.New(os.Stderr, "modbus: ", log.LstdFlags)
	}

	conn, err := tmodbus.New(tmodbus.Config{
		Endpoint: device.Endpoint(),
		UnitID:   device.UnitID,
		Timeout:  time.Duration(device.TimeoutMs) * time.Millisecond,
		Logger:   logger,
	})
	if err != nil {
		return nil, nil, err
	}

	return New(conn), conn.Close, nil
}
