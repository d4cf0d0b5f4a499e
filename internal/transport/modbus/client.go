// internal/transport/modbus/client.go
package modbus

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/goburrow/modbus"

	"github.com/glenmo/modbus-reader/internal/transport"
)

// Client implements transport.Conn over one Modbus TCP connection.
// Modbus TCP is half-duplex per connection, so requests are serialized.
type Client struct {
	mu      sync.Mutex
	handler *modbus.TCPClientHandler
	client  modbus.Client
}

// Config is minimal transport config.
type Config struct {
	Endpoint string
	UnitID   uint8
	Timeout  time.Duration
	Logger   *log.Logger // optional wire tracing
}

// New creates a connected Modbus TCP client. Connection failures are
// reported immediately so callers fail fast at startup.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("modbus client: endpoint required")
	}

	h := modbus.NewTCPClientHandler(cfg.Endpoint)
	h.Timeout = cfg.Timeout
	h.SlaveId = cfg.UnitID
	h.Logger = cfg.Logger

	if err := h.Connect(); err != nil {
		return nil, &transport.TransientError{Err: err}
	}

	return &Client{
		handler: h,
		client:  modbus.NewClient(h),
	}, nil
}

// Close closes the TCP connection. Safe to call more than once.
func (c *Client) Close() error {
	if c == nil || c.handler == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handler.Close()
}

// ---- transport.Conn ----

func (c *Client) ReadCoils(addr, qty uint16) ([]bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, err := c.client.ReadCoils(addr, qty)
	if err != nil {
		return nil, classify(err)
	}
	return unpackBits(p, int(qty)), nil
}

func (c *Client) ReadDiscreteInputs(addr, qty uint16) ([]bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, err := c.client.ReadDiscreteInputs(addr, qty)
	if err != nil {
		return nil, classify(err)
	}
	return unpackBits(p, int(qty)), nil
}

func (c *Client) ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, err := c.client.ReadHoldingRegisters(addr, qty)
	if err != nil {
		return nil, classify(err)
	}
	return unpackRegisters(p), nil
}

func (c *Client) ReadInputRegisters(addr, qty uint16) ([]uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, err := c.client.ReadInputRegisters(addr, qty)
	if err != nil {
		return nil, classify(err)
	}
	return unpackRegisters(p), nil
}

// classify separates device exception responses from everything else.
// An exception response is a well-formed rejection and must not be
// retried; timeouts, resets and malformed frames are worth another try.
func classify(err error) error {
	var me *modbus.ModbusError
	if errors.As(err, &me) {
		return &transport.ProtocolError{
			Function:  me.FunctionCode,
			Exception: me.ExceptionCode,
			Err:       err,
		}
	}
	return &transport.TransientError{Err: err}
}

// ---- payload helpers (pure geometry) ----

func unpackBits(data []byte, count int) []bool {
	out := make([]bool, count)
	for i := 0; i < count; i++ {
		byteIdx := i / 8
		bitIdx := i % 8
		if byteIdx >= len(data) {
			out[i] = false
			continue
		}
		out[i] = (data[byteIdx]&(1<<bitIdx) != 0)
	}
	return out
}

func unpackRegisters(data []byte) []uint16 {
	n := len(data) / 2
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out
}
