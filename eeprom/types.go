package eeprom

import (
	"fmt"
	"math/bits"
	"sort"
	"strings"
	"time"
)

// Addressing selects where the offset is sent on the wire.
type Addressing int

const (
	/* The whole offset follows the slave address as 1 or 2 word address bytes */
	InStream Addressing = iota

	/* The bits above AddressBits replace the low bits of the slave address */
	SelectBits
)

func (a Addressing) String() string {
	switch a {
	case InStream:
		return "in-stream"
	case SelectBits:
		return "select-bits"
	}
	return fmt.Sprintf("Addressing(%d)", int(a))
}

// Profile describes one EEPROM model. It is never modified after it has
// been handed to the driver.
type Profile struct {
	Name string

	Capacity      uint32
	PageSize      uint16
	MaxWriteChunk uint16

	AddressBits uint8
	Addressing  Addressing

	/* Number of A0..A2 pins wired into the slave address */
	ChipSelectPins uint8

	PollRetryLimit uint16
	PollInterval   time.Duration

	MaxFrequency uint32
}

const (
	baseAddress = 0x50

	/* tWC is 5 ms; the poll budget covers four times that */
	defaultPollRetryLimit = 200
	defaultPollInterval   = 100 * time.Microsecond
)

var devices = []Profile{
	{Name: "24AA01", Capacity: 128, PageSize: 8, MaxWriteChunk: 8, AddressBits: 8, Addressing: InStream, MaxFrequency: 400000},
	{Name: "24AA02", Capacity: 256, PageSize: 8, MaxWriteChunk: 8, AddressBits: 8, Addressing: InStream, MaxFrequency: 400000},
	{Name: "24AA04", Capacity: 512, PageSize: 16, MaxWriteChunk: 16, AddressBits: 8, Addressing: SelectBits, MaxFrequency: 400000},
	{Name: "24AA08", Capacity: 1 << 10, PageSize: 16, MaxWriteChunk: 16, AddressBits: 8, Addressing: SelectBits, MaxFrequency: 400000},
	{Name: "24AA16", Capacity: 2 << 10, PageSize: 16, MaxWriteChunk: 16, AddressBits: 8, Addressing: SelectBits, MaxFrequency: 400000},
	{Name: "24AA32A", Capacity: 4 << 10, PageSize: 32, MaxWriteChunk: 32, AddressBits: 16, Addressing: InStream, ChipSelectPins: 3, MaxFrequency: 400000},
	{Name: "24AA64", Capacity: 8 << 10, PageSize: 32, MaxWriteChunk: 32, AddressBits: 16, Addressing: InStream, ChipSelectPins: 3, MaxFrequency: 400000},
	{Name: "24AA128", Capacity: 16 << 10, PageSize: 64, MaxWriteChunk: 64, AddressBits: 16, Addressing: InStream, ChipSelectPins: 3, MaxFrequency: 400000},
	{Name: "24AA256", Capacity: 32 << 10, PageSize: 64, MaxWriteChunk: 64, AddressBits: 16, Addressing: InStream, ChipSelectPins: 3, MaxFrequency: 400000},
	{Name: "24AA512", Capacity: 64 << 10, PageSize: 128, MaxWriteChunk: 128, AddressBits: 16, Addressing: InStream, ChipSelectPins: 3, MaxFrequency: 400000},
}

func init() {
	for i := range devices {
		devices[i].PollRetryLimit = defaultPollRetryLimit
		devices[i].PollInterval = defaultPollInterval
	}
}

func deviceLookup(name string) (Profile, bool) {
	for _, m := range devices {
		if m.Name == name {
			return m, true
		}
	}
	return Profile{}, false
}

// Lookup returns the profile of a device model such as "24LC256". The
// 24LC and 24FC variants share the 24AA profiles. A trailing revision letter
// is ignored unless the table lists that revision itself.
func Lookup(name string) (Profile, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	for _, prefix := range []string{"24LC", "24FC"} {
		if strings.HasPrefix(n, prefix) {
			n = "24AA" + n[len(prefix):]
		}
	}

	if p, ok := deviceLookup(n); ok {
		return p, nil
	}

	if l := len(n); l > 0 && n[l-1] >= 'A' && n[l-1] <= 'Z' {
		if p, ok := deviceLookup(n[:l-1]); ok {
			return p, nil
		}
	}

	return Profile{}, fmt.Errorf("%w: %q", ErrorUnsupportedDevice, name)
}

// Devices lists the names of all known models, smallest first.
func Devices() []string {
	sorted := append([]Profile(nil), devices...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Capacity < sorted[j].Capacity
	})

	names := make([]string, len(sorted))
	for i, m := range sorted {
		names[i] = m.Name
	}
	return names
}

func isPowerOfTwo(v uint32) bool {
	return v != 0 && v&(v-1) == 0
}

func (p Profile) selectBits() uint {
	if p.Addressing != SelectBits {
		return 0
	}
	return uint(bits.TrailingZeros32(p.Capacity)) - uint(p.AddressBits)
}

func (p Profile) Validate() error {
	invalid := func(format string, params ...any) error {
		return fmt.Errorf("%w %q: %s", ErrorInvalidProfile, p.Name, fmt.Sprintf(format, params...))
	}

	switch {
	case !isPowerOfTwo(p.Capacity):
		return invalid("capacity %d is not a power of two", p.Capacity)
	case !isPowerOfTwo(uint32(p.PageSize)) || uint32(p.PageSize) > p.Capacity:
		return invalid("page size %d", p.PageSize)
	case p.MaxWriteChunk == 0 || p.MaxWriteChunk > p.PageSize:
		return invalid("write chunk %d exceeds page size %d", p.MaxWriteChunk, p.PageSize)
	case p.AddressBits != 8 && p.AddressBits != 16:
		return invalid("%d address bits", p.AddressBits)
	case p.PollRetryLimit == 0:
		return invalid("no poll retries")
	case p.ChipSelectPins > 3:
		return invalid("%d chip select pins", p.ChipSelectPins)
	}

	width := bits.TrailingZeros32(p.Capacity)
	switch p.Addressing {
	case InStream:
		if width > int(p.AddressBits) {
			return invalid("capacity 0x%x needs more than %d address bits", p.Capacity, p.AddressBits)
		}
	case SelectBits:
		k := width - int(p.AddressBits)
		if k <= 0 || k > 3 {
			return invalid("capacity 0x%x needs %d select bits", p.Capacity, k)
		}
		if int(p.ChipSelectPins)+k > 3 {
			return invalid("select bits overlap chip select pins")
		}
	default:
		return invalid("addressing %v", p.Addressing)
	}

	return nil
}
