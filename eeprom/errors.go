package eeprom

import (
	"errors"
	"fmt"
)

var (
	ErrorOutOfRange        = errors.New("access out of range")
	ErrorTimeout           = errors.New("device did not complete write cycle")
	ErrorInvalidProfile    = errors.New("invalid device profile")
	ErrorUnsupportedDevice = errors.New("unsupported device")
	ErrorInvalidAddress    = errors.New("invalid device address")
)

// BusError reports a transport failure. Offset is the first byte of the
// read or of the chunk being written.
type BusError struct {
	Op     string
	Slave  uint8
	Offset uint32
	Err    error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("%s @ 0x%04x (slave 0x%02x): %v", e.Op, e.Offset, e.Slave, e.Err)
}

func (e *BusError) Unwrap() error {
	return e.Err
}

// MismatchError is returned by Verify for the first byte that reads back
// differently from what was expected.
type MismatchError struct {
	Offset   uint32
	Expected byte
	Actual   byte
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("mismatch @ 0x%04x: expected 0x%02x, read 0x%02x", e.Offset, e.Expected, e.Actual)
}

func checkRange(offset uint32, length int, capacity uint32) error {
	if length < 0 || offset >= capacity || uint64(offset)+uint64(length) > uint64(capacity) {
		return fmt.Errorf("%w: 0x%x bytes @ 0x%04x, capacity 0x%x", ErrorOutOfRange, length, offset, capacity)
	}
	return nil
}
