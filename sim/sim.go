// Package sim models a 24AAxx serial EEPROM on an I2C bus. It behaves like
// the real parts where the driver depends on it: writes wrap inside a page,
// the device does not acknowledge while a write cycle is in progress, and
// small parts take the high address bits from the slave address.
package sim

import (
	"fmt"
	"math/bits"
	"sync"

	"github.com/BertoldVdb/i2ceeprom/i2c"
)

type Config struct {
	Base         uint8 // slave address with all select bits cleared
	Capacity     int
	PageSize     int
	AddressBytes int

	/* Number of transactions NACKed after every write cycle */
	BusyProbes int
}

// Cycle records one internal write cycle started by the device.
type Cycle struct {
	Slave  uint8
	Offset uint32
	Length int
}

type Device struct {
	cfg        Config
	selectBits uint

	mem  []byte
	ptr  uint32
	busy int

	transactions int
	probes       int
	cycles       []Cycle

	/* Hook is called before the device handles a transaction. A non-nil
	 * error is returned to the caller as the transaction result. */
	Hook func(addr uint8, w []byte, r []byte) error

	bus sync.Mutex
	mu  sync.Mutex
}

func New(cfg Config) *Device {
	d := &Device{
		cfg: cfg,
		mem: make([]byte, cfg.Capacity),
	}

	for i := range d.mem {
		d.mem[i] = 0xff
	}

	width := uint(bits.TrailingZeros(uint(cfg.Capacity)))
	if inStream := uint(cfg.AddressBytes * 8); width > inStream {
		d.selectBits = width - inStream
	}

	return d
}

func (d *Device) Lock() {
	d.bus.Lock()
}

func (d *Device) Unlock() {
	d.bus.Unlock()
}

func (d *Device) nack(addr uint8, reason string) error {
	return fmt.Errorf("%w: slave 0x%02x %s", i2c.ErrNACK, addr, reason)
}

func (d *Device) Transact(addr uint8, w []byte, r []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.transactions++
	if len(w) == 0 && len(r) == 0 {
		d.probes++
	}

	if d.Hook != nil {
		if err := d.Hook(addr, w, r); err != nil {
			return err
		}
	}

	mask := uint8(1)<<d.selectBits - 1
	if addr&^mask != d.cfg.Base {
		return d.nack(addr, "not present")
	}

	if d.busy > 0 {
		d.busy--
		return d.nack(addr, "busy")
	}

	if len(w) == 0 {
		/* Current address read */
		d.read(r)
		return nil
	}

	if len(w) < d.cfg.AddressBytes {
		return fmt.Errorf("sim: incomplete word address (%d bytes)", len(w))
	}

	ptr := uint32(addr & mask)
	for _, m := range w[:d.cfg.AddressBytes] {
		ptr = ptr<<8 | uint32(m)
	}
	ptr &= uint32(d.cfg.Capacity - 1)

	data := w[d.cfg.AddressBytes:]
	if len(data) == 0 {
		d.ptr = ptr
		d.read(r)
		return nil
	}

	/* The page buffer wraps: bytes past the page end land at its start */
	page := uint32(d.cfg.PageSize)
	start := ptr &^ (page - 1)
	for i, m := range data {
		d.mem[start+(ptr-start+uint32(i))%page] = m
	}

	d.ptr = start + (ptr-start+uint32(len(data)))%page
	d.busy = d.cfg.BusyProbes
	d.cycles = append(d.cycles, Cycle{Slave: addr, Offset: ptr, Length: len(data)})

	return nil
}

func (d *Device) read(r []byte) {
	for i := range r {
		r[i] = d.mem[d.ptr]
		d.ptr = (d.ptr + 1) % uint32(len(d.mem))
	}
}

// Load presets the memory contents without any bus activity.
func (d *Device) Load(offset int, data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	copy(d.mem[offset:], data)
}

func (d *Device) Memory() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]byte(nil), d.mem...)
}

func (d *Device) Transactions() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.transactions
}

func (d *Device) Probes() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.probes
}

func (d *Device) Cycles() []Cycle {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]Cycle(nil), d.cycles...)
}

func (d *Device) ResetCounters() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.transactions = 0
	d.probes = 0
	d.cycles = nil
}
