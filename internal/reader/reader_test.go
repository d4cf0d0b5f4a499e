// internal/reader/reader_test.go
package reader

import (
	"errors"
	"testing"
	"time"

	"github.com/glenmo/modbus-reader/internal/codec"
	"github.com/glenmo/modbus-reader/internal/transport"
)

// fakeConn scripts transport behavior per attempt.
type fakeConn struct {
	regs []uint16
	bits []bool

	transientFailures int   // fail this many calls before succeeding
	protocolErr       error // returned on every call when set

	calls     int
	lastSpace string
	lastAddr  uint16
	lastQty   uint16
}

func (f *fakeConn) read(space string, addr, qty uint16) error {
	f.calls++
	f.lastSpace = space
	f.lastAddr = addr
	f.lastQty = qty

	if f.protocolErr != nil {
		return f.protocolErr
	}
	if f.transientFailures > 0 {
		f.transientFailures--
		return &transport.TransientError{Err: errors.New("connection reset")}
	}
	return nil
}

func (f *fakeConn) ReadCoils(addr, qty uint16) ([]bool, error) {
	if err := f.read("coils", addr, qty); err != nil {
		return nil, err
	}
	return f.bits[:qty], nil
}

func (f *fakeConn) ReadDiscreteInputs(addr, qty uint16) ([]bool, error) {
	if err := f.read("discrete", addr, qty); err != nil {
		return nil, err
	}
	return f.bits[:qty], nil
}

func (f *fakeConn) ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) {
	if err := f.read("holding", addr, qty); err != nil {
		return nil, err
	}
	return f.regs[:qty], nil
}

func (f *fakeConn) ReadInputRegisters(addr, qty uint16) ([]uint16, error) {
	if err := f.read("input", addr, qty); err != nil {
		return nil, err
	}
	return f.regs[:qty], nil
}

func (f *fakeConn) Close() error { return nil }

func newTestReader(conn transport.Conn) *Reader {
	r := New(conn)
	r.sleep = func(time.Duration) {} // no real delays in tests
	return r
}

func TestRead_ScaledU16Pair(t *testing.T) {
	fake := &fakeConn{regs: []uint16{100, 200}}
	r := newTestReader(fake)

	readings, err := r.Read(Request{
		Reference: 40001,
		Type:      codec.U16,
		Count:     2,
		Scale:     0.1,
		ByteOrder: codec.BigByte,
		WordOrder: codec.BigWord,
	})
	if err != nil {
		t.Fatalf("Read err=%v", err)
	}
	if len(readings) != 2 {
		t.Fatalf("got %d readings, want 2", len(readings))
	}
	if readings[0].Value != 10.0 || readings[1].Value != 20.0 {
		t.Fatalf("values=%v,%v want 10,20", readings[0].Value, readings[1].Value)
	}
	if fake.lastSpace != "holding" || fake.lastAddr != 0 || fake.lastQty != 2 {
		t.Fatalf("transport call: space=%s addr=%d qty=%d", fake.lastSpace, fake.lastAddr, fake.lastQty)
	}
}

func TestRead_U32Chunking(t *testing.T) {
	// Two u32 values, big/big: 0x00010002 and 0x00030004.
	fake := &fakeConn{regs: []uint16{1, 2, 3, 4}}
	r := newTestReader(fake)

	readings, err := r.Read(Request{
		Reference: 30011,
		Type:      codec.U32,
		Count:     2,
		ByteOrder: codec.BigByte,
		WordOrder: codec.BigWord,
	})
	if err != nil {
		t.Fatalf("Read err=%v", err)
	}
	if fake.lastSpace != "input" || fake.lastAddr != 10 || fake.lastQty != 4 {
		t.Fatalf("transport call: space=%s addr=%d qty=%d", fake.lastSpace, fake.lastAddr, fake.lastQty)
	}
	if readings[0].Value != float64(0x00010002) {
		t.Fatalf("readings[0]=%v", readings[0].Value)
	}
	if readings[1].Value != float64(0x00030004) {
		t.Fatalf("readings[1]=%v", readings[1].Value)
	}
}

func TestRead_CoilsAsBool(t *testing.T) {
	fake := &fakeConn{bits: []bool{true, false, true}}
	r := newTestReader(fake)

	readings, err := r.Read(Request{
		Reference: 10001,
		Type:      codec.Bool,
		Count:     3,
		ByteOrder: codec.BigByte,
		WordOrder: codec.BigWord,
	})
	if err != nil {
		t.Fatalf("Read err=%v", err)
	}
	if fake.lastSpace != "coils" || fake.lastAddr != 0 || fake.lastQty != 3 {
		t.Fatalf("transport call: space=%s addr=%d qty=%d", fake.lastSpace, fake.lastAddr, fake.lastQty)
	}
	want := []float64{1, 0, 1}
	for i, rd := range readings {
		if rd.Value != want[i] {
			t.Fatalf("readings[%d]=%v want %v", i, rd.Value, want[i])
		}
	}
}

func TestRead_RetriesTransientThenSucceeds(t *testing.T) {
	fake := &fakeConn{regs: []uint16{500}, transientFailures: 2}
	r := newTestReader(fake)

	readings, err := r.Read(Request{
		Reference: 40101,
		Type:      codec.U16,
		Count:     1,
		Scale:     0.1,
		ByteOrder: codec.BigByte,
		WordOrder: codec.BigWord,
		Retries:   2,
	})
	if err != nil {
		t.Fatalf("Read err=%v", err)
	}
	if fake.calls != 3 {
		t.Fatalf("calls=%d want 3", fake.calls)
	}
	if readings[0].Value != 50.0 {
		t.Fatalf("value=%v want 50", readings[0].Value)
	}
}

func TestRead_RetryBudgetExhausted(t *testing.T) {
	fake := &fakeConn{regs: []uint16{500}, transientFailures: 2}
	r := newTestReader(fake)

	_, err := r.Read(Request{
		Reference: 40101,
		Type:      codec.U16,
		Count:     1,
		ByteOrder: codec.BigByte,
		WordOrder: codec.BigWord,
		Retries:   1,
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if fake.calls != 2 {
		t.Fatalf("calls=%d want 2", fake.calls)
	}
	var te *transport.TransientError
	if !errors.As(err, &te) {
		t.Fatalf("err=%v, want wrapped TransientError", err)
	}
}

func TestRead_ProtocolErrorNotRetried(t *testing.T) {
	fake := &fakeConn{
		regs:        []uint16{500},
		protocolErr: &transport.ProtocolError{Function: 3, Exception: 2},
	}
	r := newTestReader(fake)

	_, err := r.Read(Request{
		Reference: 40101,
		Type:      codec.U16,
		Count:     1,
		ByteOrder: codec.BigByte,
		WordOrder: codec.BigWord,
		Retries:   3,
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if fake.calls != 1 {
		t.Fatalf("calls=%d want 1 (no retry on device exception)", fake.calls)
	}
	var pe *transport.ProtocolError
	if !errors.As(err, &pe) {
		t.Fatalf("err=%v, want wrapped ProtocolError", err)
	}
	if pe.Exception != 2 {
		t.Fatalf("exception=%d want 2", pe.Exception)
	}
}

func TestRead_RetryDelayBetweenAttempts(t *testing.T) {
	fake := &fakeConn{regs: []uint16{1}, transientFailures: 2}
	r := New(fake)

	var delays []time.Duration
	r.sleep = func(d time.Duration) { delays = append(delays, d) }

	_, err := r.Read(Request{
		Reference:  40001,
		Type:       codec.U16,
		Count:      1,
		ByteOrder:  codec.BigByte,
		WordOrder:  codec.BigWord,
		Retries:    2,
		RetryDelay: 50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Read err=%v", err)
	}
	// No delay before the first attempt, one before each retry.
	if len(delays) != 2 {
		t.Fatalf("slept %d times, want 2", len(delays))
	}
	for _, d := range delays {
		if d != 50*time.Millisecond {
			t.Fatalf("delay=%v want 50ms", d)
		}
	}
}

func TestRead_InvalidArguments(t *testing.T) {
	r := newTestReader(&fakeConn{regs: []uint16{1}})

	base := Request{
		Reference: 40001,
		Type:      codec.U16,
		Count:     1,
		ByteOrder: codec.BigByte,
		WordOrder: codec.BigWord,
	}

	zeroCount := base
	zeroCount.Count = 0
	if _, err := r.Read(zeroCount); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("count=0: err=%v want ErrInvalidArgument", err)
	}

	negRetries := base
	negRetries.Retries = -1
	if _, err := r.Read(negRetries); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("retries=-1: err=%v want ErrInvalidArgument", err)
	}

	tooMany := base
	tooMany.Type = codec.U64
	tooMany.Count = 32 // 128 registers
	if _, err := r.Read(tooMany); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("oversized read: err=%v want ErrInvalidArgument", err)
	}
}

func TestRead_BadReference(t *testing.T) {
	r := newTestReader(&fakeConn{regs: []uint16{1}})

	_, err := r.Read(Request{
		Reference: 9000,
		Type:      codec.U16,
		Count:     1,
		ByteOrder: codec.BigByte,
		WordOrder: codec.BigWord,
	})
	if err == nil {
		t.Fatalf("expected error for reference 9000")
	}
}

func TestRead_ScaleZeroMeansUnscaled(t *testing.T) {
	fake := &fakeConn{regs: []uint16{123}}
	r := newTestReader(fake)

	readings, err := r.Read(Request{
		Reference: 40001,
		Type:      codec.U16,
		Count:     1,
		ByteOrder: codec.BigByte,
		WordOrder: codec.BigWord,
	})
	if err != nil {
		t.Fatalf("Read err=%v", err)
	}
	if readings[0].Value != 123 {
		t.Fatalf("value=%v want 123", readings[0].Value)
	}
}
