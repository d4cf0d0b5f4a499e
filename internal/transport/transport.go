// internal/transport/transport.go
package transport

import "fmt"

// Conn abstracts the Modbus operations the reader needs.
// One implementation wraps a TCP client; tests substitute fakes.
// Implementations are not safe for concurrent use unless stated; the
// connection lifecycle is owned by the caller.
type Conn interface {
	ReadCoils(addr, qty uint16) ([]bool, error)              // FC 1
	ReadDiscreteInputs(addr, qty uint16) ([]bool, error)     // FC 2
	ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) // FC 3
	ReadInputRegisters(addr, qty uint16) ([]uint16, error)   // FC 4
	Close() error
}

// TransientError marks a connection or timeout class failure.
// The request may succeed if retried.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transport: transient failure: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// ProtocolError is a device-reported Modbus exception response: a
// definitive rejection of the request as formed. Retrying it cannot
// succeed.
type ProtocolError struct {
	Function  byte
	Exception byte
	Err       error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("transport: device exception: function=%d code=%d", e.Function, e.Exception)
}

func (e *ProtocolError) Unwrap() error { return e.Err }
