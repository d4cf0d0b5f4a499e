// internal/address/address.go
package address

import (
	"errors"
	"fmt"
)

// Space identifies one of the four Modbus register spaces.
// It selects the transport read operation (function code).
type Space int

const (
	Coil Space = iota + 1
	DiscreteInput
	InputRegister
	HoldingRegister
)

func (s Space) String() string {
	switch s {
	case Coil:
		return "coils"
	case DiscreteInput:
		return "discrete_inputs"
	case InputRegister:
		return "input_registers"
	case HoldingRegister:
		return "holding_registers"
	default:
		return fmt.Sprintf("space(%d)", int(s))
	}
}

// ErrOutOfRange reports a reference outside every supported Modicon range.
var ErrOutOfRange = errors.New("address: reference out of range")

// Modicon convention: a leading digit selects the space, the remaining
// digits are a one-based offset into it.
const (
	coilBase     = 10000
	discreteBase = 20000
	inputBase    = 30000
	holdingBase  = 40000
)

// Resolve maps a conventional register reference (e.g. 40001) to its space
// and zero-based protocol offset. The four ranges are disjoint and the gaps
// between them (x0000 values, anything below 10001 or above 49999) are
// rejected. Offsets are always in [0, 9998].
func Resolve(reference int) (Space, uint16, error) {
	switch {
	case reference >= coilBase+1 && reference <= coilBase+9999:
		return Coil, uint16(reference - coilBase - 1), nil
	case reference >= discreteBase+1 && reference <= discreteBase+9999:
		return DiscreteInput, uint16(reference - discreteBase - 1), nil
	case reference >= inputBase+1 && reference <= inputBase+9999:
		return InputRegister, uint16(reference - inputBase - 1), nil
	case reference >= holdingBase+1 && reference <= holdingBase+9999:
		return HoldingRegister, uint16(reference - holdingBase - 1), nil
	default:
		return 0, 0, fmt.Errorf("%w: %d", ErrOutOfRange, reference)
	}
}
