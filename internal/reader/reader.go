// internal/reader/reader.go
package reader

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/glenmo/modbus-reader/internal/address"
	"github.com/glenmo/modbus-reader/internal/codec"
	"github.com/glenmo/modbus-reader/internal/transport"
)

// ErrInvalidArgument reports a caller contract violation.
var ErrInvalidArgument = errors.New("reader: invalid argument")

// Modbus read limits per request (the transport enforces the same).
const (
	maxRegisterQuantity = 125
	maxBitQuantity      = 2000
)

// Request describes one logical read.
type Request struct {
	Reference int        // conventional 5-digit register reference, e.g. 40001
	Type      codec.Type // numeric interpretation of each value
	Count     int        // number of typed values, not raw registers
	Scale     float64    // linear factor applied to each value; 0 means 1
	ByteOrder codec.ByteOrder
	WordOrder codec.WordOrder

	Retries    int           // extra attempts after the first, transient failures only
	RetryDelay time.Duration // pause between attempts, none before the first
}

// Reading is one scaled result in request order.
type Reading struct {
	Type  codec.Type
	Value float64  // decoded value multiplied by the request scale
	Raw   []uint16 // the registers this value was decoded from
}

// Reader performs scaled reads over one transport connection.
// It holds no state besides the connection and is synchronous: Read blocks
// for the round trip plus any retry delays. Serializing concurrent use of
// one connection is the caller's concern.
type Reader struct {
	conn  transport.Conn
	sleep func(time.Duration)
}

func New(conn transport.Conn) *Reader {
	return &Reader{conn: conn, sleep: time.Sleep}
}

// Read resolves the reference, fetches the required registers with bounded
// retry, decodes Count consecutive values and applies the scale. Results
// preserve request order. Transient transport failures are retried up to
// Retries times; a device exception response surfaces immediately.
func (r *Reader) Read(req Request) ([]Reading, error) {
	if req.Count <= 0 {
		return nil, fmt.Errorf("%w: value count must be positive, got %d", ErrInvalidArgument, req.Count)
	}
	if req.Retries < 0 {
		return nil, fmt.Errorf("%w: retries must be non-negative, got %d", ErrInvalidArgument, req.Retries)
	}
	scale := req.Scale
	if scale == 0 {
		scale = 1
	}
	if math.IsNaN(scale) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("%w: scale must be finite, got %v", ErrInvalidArgument, req.Scale)
	}

	space, offset, err := address.Resolve(req.Reference)
	if err != nil {
		return nil, err
	}

	wordsPerValue := req.Type.WordCount()
	if wordsPerValue == 0 {
		return nil, fmt.Errorf("%w: tag %d", codec.ErrUnsupportedType, int(req.Type))
	}
	rawCount := req.Count * wordsPerValue

	limit := maxRegisterQuantity
	if space == address.Coil || space == address.DiscreteInput {
		limit = maxBitQuantity
	}
	if rawCount > limit {
		return nil, fmt.Errorf("%w: %d registers exceeds the per-request limit of %d",
			ErrInvalidArgument, rawCount, limit)
	}

	words, err := r.fetch(space, offset, uint16(rawCount), req)
	if err != nil {
		return nil, err
	}
	if len(words) < rawCount {
		return nil, fmt.Errorf("%w: transport returned %d registers, need %d",
			codec.ErrInsufficientData, len(words), rawCount)
	}

	out := make([]Reading, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		chunk := words[i*wordsPerValue : (i+1)*wordsPerValue]
		v, err := codec.Decode(chunk, req.Type, req.ByteOrder, req.WordOrder)
		if err != nil {
			return nil, err
		}
		out = append(out, Reading{
			Type:  req.Type,
			Value: v.Float64() * scale,
			Raw:   chunk,
		})
	}
	return out, nil
}

// fetch requests raw registers with the request's retry budget. Only
// transient failures consume the budget; on exhaustion the last failure is
// wrapped with enough detail to identify the read.
func (r *Reader) fetch(space address.Space, offset, qty uint16, req Request) ([]uint16, error) {
	var last error
	attempts := 0

	for attempt := 0; attempt <= req.Retries; attempt++ {
		if attempt > 0 && req.RetryDelay > 0 {
			r.sleep(req.RetryDelay)
		}
		attempts++

		words, err := r.readSpace(space, offset, qty)
		if err == nil {
			return words, nil
		}

		var pe *transport.ProtocolError
		if errors.As(err, &pe) {
			return nil, fmt.Errorf("reader: reference %d (%s offset %d, %s): %w",
				req.Reference, space, offset, req.Type, err)
		}
		last = err
	}

	return nil, fmt.Errorf("reader: reference %d (%s offset %d, %s) failed after %d attempts: %w",
		req.Reference, space, offset, req.Type, attempts, last)
}

func (r *Reader) readSpace(space address.Space, offset, qty uint16) ([]uint16, error) {
	switch space {
	case address.Coil:
		bits, err := r.conn.ReadCoils(offset, qty)
		if err != nil {
			return nil, err
		}
		return bitsToWords(bits), nil
	case address.DiscreteInput:
		bits, err := r.conn.ReadDiscreteInputs(offset, qty)
		if err != nil {
			return nil, err
		}
		return bitsToWords(bits), nil
	case address.InputRegister:
		return r.conn.ReadInputRegisters(offset, qty)
	case address.HoldingRegister:
		return r.conn.ReadHoldingRegisters(offset, qty)
	default:
		return nil, fmt.Errorf("%w: unsupported register space %d", ErrInvalidArgument, int(space))
	}
}

// bitsToWords widens coil and discrete input bits to 0/1 registers so the
// codec sees one uniform representation.
func bitsToWords(bits []bool) []uint16 {
	out := make([]uint16, len(bits))
	for i, b := range bits {
		if b {
			out[i] = 1
		}
	}
	return out
}
