// Package eeprom drives 24AAxx style I2C serial EEPROMs. Writes are split
// into page writes, and the driver waits for each page to be committed by
// polling the device before sending the next one.
package eeprom

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/BertoldVdb/i2ceeprom/i2c"
	"github.com/BertoldVdb/i2ceeprom/image"
)

// EEPROM is one device on a bus. It keeps no state between calls. If the
// bus implements sync.Locker, the lock is held for each complete Read, Write
// or Verify call.
type EEPROM struct {
	bus     i2c.Bus
	profile Profile
	slave   uint8

	LogFunc      func(format string, params ...any)
	ProgressFunc func(done int, total int)
}

func New(bus i2c.Bus, profile Profile, slave uint8) (*EEPROM, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	mask := uint8(1)<<profile.ChipSelectPins - 1
	if slave&^mask != baseAddress {
		return nil, fmt.Errorf("%w: 0x%02x for %s", ErrorInvalidAddress, slave, profile.Name)
	}

	return &EEPROM{
		bus:     bus,
		profile: profile,
		slave:   slave,
	}, nil
}

func (e *EEPROM) log(format string, params ...any) {
	if e.LogFunc != nil {
		e.LogFunc(format, params...)
	}
}

func (e *EEPROM) lock() func() {
	if l, ok := e.bus.(sync.Locker); ok {
		l.Lock()
		return l.Unlock
	}
	return func() {}
}

func (e *EEPROM) Profile() Profile {
	return e.profile
}

func (e *EEPROM) Capacity() uint32 {
	return e.profile.Capacity
}

// Read returns length bytes starting at offset using a single sequential
// read. Either the whole range is returned or an error.
func (e *EEPROM) Read(ctx context.Context, offset uint32, length int) ([]byte, error) {
	if err := checkRange(offset, length, e.profile.Capacity); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	buf := make([]byte, length)
	if length == 0 {
		return buf, nil
	}

	addr, err := EncodeAddress(offset, e.profile)
	if err != nil {
		return nil, err
	}

	unlock := e.lock()
	defer unlock()

	slave := addr.Slave(e.slave)
	e.log("Read @ 0x%04x, %d bytes", offset, length)

	if err := e.bus.Transact(slave, addr.Bytes, buf); err != nil {
		return nil, &BusError{Op: "read", Slave: slave, Offset: offset, Err: err}
	}

	return buf, nil
}

func (e *EEPROM) writeChunk(c Chunk) error {
	addr, err := EncodeAddress(c.Offset, e.profile)
	if err != nil {
		return err
	}

	slave := addr.Slave(e.slave)

	tx := make([]byte, 0, len(addr.Bytes)+len(c.Data))
	tx = append(tx, addr.Bytes...)
	tx = append(tx, c.Data...)

	if err := e.bus.Transact(slave, tx, nil); err != nil {
		return &BusError{Op: "write", Slave: slave, Offset: c.Offset, Err: err}
	}

	probes, err := AwaitReady(e.bus, slave, e.profile)
	if err != nil {
		var busErr *BusError
		if errors.As(err, &busErr) {
			busErr.Offset = c.Offset
			return busErr
		}
		return fmt.Errorf("%w @ 0x%04x after %d probes", err, c.Offset, probes)
	}

	e.log("Write @ 0x%04x, %d bytes, ready after %d probes", c.Offset, len(c.Data), probes)
	return nil
}

// Write stores data at offset. On failure the chunks before the failing one
// are committed and the rest is not written; nothing is retried or rolled
// back. Callers that want to recover should read back the range and write
// the remainder again. Cancellation through ctx takes effect between chunks.
func (e *EEPROM) Write(ctx context.Context, offset uint32, data []byte) error {
	chunks, err := Plan(offset, data, e.profile)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	unlock := e.lock()
	defer unlock()

	done := 0
	for _, c := range chunks {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("write stopped @ 0x%04x: %w", c.Offset, err)
		}

		if err := e.writeChunk(c); err != nil {
			return err
		}

		done += len(c.Data)
		if e.ProgressFunc != nil {
			e.ProgressFunc(done, len(data))
		}
	}

	return nil
}

// Verify reads the range back and compares it with data.
func (e *EEPROM) Verify(ctx context.Context, offset uint32, data []byte) error {
	rb, err := e.Read(ctx, offset, len(data))
	if err != nil {
		return err
	}

	if i := image.Compare(data, rb); i >= 0 {
		return &MismatchError{
			Offset:   offset + uint32(i),
			Expected: data[i],
			Actual:   rb[i],
		}
	}

	return nil
}
