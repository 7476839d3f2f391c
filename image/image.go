// Package image handles EEPROM contents as files: checksums and comparing a
// readback against the data that was programmed.
package image

import (
	"errors"
	"fmt"
)

var ErrorInvalidLength = errors.New("image length not valid")

// Compare returns the index of the first byte where got differs from want,
// or -1 when they are equal. A length difference counts as a mismatch at
// the end of the shorter slice.
func Compare(want []byte, got []byte) int {
	n := len(want)
	if len(got) < n {
		n = len(got)
	}

	for i := 0; i < n; i++ {
		if want[i] != got[i] {
			return i
		}
	}

	if len(want) != len(got) {
		return n
	}
	return -1
}

// Fit checks that an image of the given length fits at offset in a device
// of the given capacity, and returns the length that remains when length is
// zero (meaning "up to the end of the device").
func Fit(offset uint32, length int, capacity uint32) (int, error) {
	if offset >= capacity || length < 0 {
		return 0, fmt.Errorf("%w: offset 0x%x, capacity 0x%x", ErrorInvalidLength, offset, capacity)
	}

	if length == 0 {
		return int(capacity - offset), nil
	}

	if uint64(offset)+uint64(length) > uint64(capacity) {
		return 0, fmt.Errorf("%w: 0x%x bytes at 0x%x exceed capacity 0x%x", ErrorInvalidLength, length, offset, capacity)
	}

	return length, nil
}

// Blank returns a buffer of the given size filled with the erased value.
func Blank(size int) []byte {
	out := make([]byte, size)
	for i := range out {
		out[i] = 0xff
	}
	return out
}
