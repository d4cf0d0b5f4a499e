// internal/transport/modbus/client_test.go
package modbus

import (
	"errors"
	"fmt"
	"testing"

	"github.com/goburrow/modbus"

	"github.com/glenmo/modbus-reader/internal/transport"
)

func TestClassify_DeviceException(t *testing.T) {
	src := &modbus.ModbusError{FunctionCode: 0x83, ExceptionCode: 2}

	err := classify(src)

	var pe *transport.ProtocolError
	if !errors.As(err, &pe) {
		t.Fatalf("err=%v, want ProtocolError", err)
	}
	if pe.Function != 0x83 || pe.Exception != 2 {
		t.Fatalf("classified as function=%d exception=%d", pe.Function, pe.Exception)
	}
	if !errors.Is(err, src) {
		t.Fatalf("original error not preserved")
	}
}

func TestClassify_EverythingElseTransient(t *testing.T) {
	for _, src := range []error{
		errors.New("read tcp: i/o timeout"),
		fmt.Errorf("modbus: response data size '%v' does not match count '%v'", 3, 2),
	} {
		err := classify(src)

		var te *transport.TransientError
		if !errors.As(err, &te) {
			t.Fatalf("err=%v, want TransientError", err)
		}
		if !errors.Is(err, src) {
			t.Fatalf("original error not preserved")
		}
	}
}

func TestUnpackBits(t *testing.T) {
	// LSB-first packed, as read coil responses arrive.
	got := unpackBits([]byte{0b00000101, 0b00000001}, 9)

	want := []bool{true, false, true, false, false, false, false, false, true}
	if len(got) != len(want) {
		t.Fatalf("len=%d want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("bit %d = %v want %v", i, got[i], want[i])
		}
	}
}

func TestUnpackBits_ShortPayload(t *testing.T) {
	got := unpackBits([]byte{0xFF}, 12)
	for i := 8; i < 12; i++ {
		if got[i] {
			t.Fatalf("bit %d should default to false on short payload", i)
		}
	}
}

func TestUnpackRegisters(t *testing.T) {
	got := unpackRegisters([]byte{0x01, 0x02, 0xAB, 0xCD})

	if len(got) != 2 || got[0] != 0x0102 || got[1] != 0xABCD {
		t.Fatalf("got %v", got)
	}
}

func TestNew_RequiresEndpoint(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error for empty endpoint")
	}
}

func TestClose_NilSafe(t *testing.T) {
	var c *Client
	if err := c.Close(); err != nil {
		t.Fatalf("Close on nil client: %v", err)
	}
}
