// Package i2c contains the bus primitive used by the EEPROM driver and a
// Linux i2c-dev implementation of it.
package i2c

import "errors"

var (
	// ErrNACK is wrapped by every error that reports the slave did not
	// acknowledge its address. Callers polling a busy device test for it
	// with errors.Is.
	ErrNACK = errors.New("i2c: slave did not acknowledge")

	ErrorTransferTooLong = errors.New("i2c: transfer too long")
)

// Bus performs a single I2C transaction: an optional write phase with w,
// followed by a repeated start and a read phase filling r. When both w and r
// are empty a zero length write is issued, which only addresses the slave.
type Bus interface {
	Transact(addr uint8, w []byte, r []byte) error
}
