package eeprom

import (
	"errors"
	"runtime"
	"time"

	"github.com/BertoldVdb/i2ceeprom/i2c"
)

// AwaitReady probes the device after a write until it acknowledges its
// address again. It returns the number of probes issued. A NACK means the
// write cycle is still running; any other transport error is returned as a
// *BusError. ErrorTimeout is returned once PollRetryLimit probes have been
// NACKed.
func AwaitReady(bus i2c.Bus, slave uint8, p Profile) (int, error) {
	limit := int(p.PollRetryLimit)

	for attempt := 1; attempt <= limit; attempt++ {
		err := bus.Transact(slave, nil, nil)
		if err == nil {
			return attempt, nil
		}

		if !errors.Is(err, i2c.ErrNACK) {
			return attempt, &BusError{Op: "poll", Slave: slave, Err: err}
		}

		if attempt == limit {
			break
		}

		if p.PollInterval > 0 {
			time.Sleep(p.PollInterval)
		} else {
			runtime.Gosched()
		}
	}

	return limit, ErrorTimeout
}
