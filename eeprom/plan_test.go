package eeprom

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"
)

var testProfile = Profile{
	Name:           "test",
	Capacity:       256,
	PageSize:       16,
	MaxWriteChunk:  16,
	AddressBits:    8,
	Addressing:     InStream,
	ChipSelectPins: 3,
	PollRetryLimit: 5,
}

func TestPlanScenario(t *testing.T) {
	data := make([]byte, 20)
	for i := range data {
		data[i] = byte(i)
	}

	chunks, err := Plan(10, data, testProfile)
	if err != nil {
		t.Fatal(err)
	}

	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Offset != 10 || chunks[0].End() != 16 {
		t.Errorf("First chunk [%d,%d), expected [10,16)", chunks[0].Offset, chunks[0].End())
	}
	if chunks[1].Offset != 16 || chunks[1].End() != 30 {
		t.Errorf("Second chunk [%d,%d), expected [16,30)", chunks[1].Offset, chunks[1].End())
	}
}

func checkPlan(t *testing.T, offset uint32, data []byte, p Profile) {
	chunks, err := Plan(offset, data, p)
	if err != nil {
		t.Errorf("%s: plan %d bytes @ 0x%x: %v", p.Name, len(data), offset, err)
		return
	}

	var joined []byte
	cursor := offset
	for _, c := range chunks {
		if c.Offset != cursor {
			t.Errorf("%s: chunk @ 0x%x, expected 0x%x", p.Name, c.Offset, cursor)
			return
		}
		if len(c.Data) == 0 || len(c.Data) > int(p.MaxWriteChunk) {
			t.Errorf("%s: chunk @ 0x%x has %d bytes", p.Name, c.Offset, len(c.Data))
		}
		if c.Offset/uint32(p.PageSize) != (c.End()-1)/uint32(p.PageSize) {
			t.Errorf("%s: chunk [0x%x,0x%x) crosses a page", p.Name, c.Offset, c.End())
		}
		joined = append(joined, c.Data...)
		cursor = c.End()
	}

	if !bytes.Equal(joined, data) {
		t.Errorf("%s: chunks do not reconstruct the data", p.Name)
	}
}

func TestPlanProperties(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))

	profiles := []Profile{testProfile}
	for _, name := range Devices() {
		p, _ := Lookup(name)
		profiles = append(profiles, p)
	}

	/* A chunk limit below the page size */
	small := testProfile
	small.Name = "small-chunks"
	small.MaxWriteChunk = 5
	profiles = append(profiles, small)

	for _, p := range profiles {
		for i := 0; i < 200; i++ {
			offset := uint32(rnd.Intn(int(p.Capacity)))
			length := rnd.Intn(int(p.Capacity-offset) + 1)

			data := make([]byte, length)
			rnd.Read(data)
			checkPlan(t, offset, data, p)
		}

		checkPlan(t, 0, make([]byte, p.Capacity), p)
	}
}

func TestPlanOutOfRange(t *testing.T) {
	if _, err := Plan(250, make([]byte, 10), testProfile); !errors.Is(err, ErrorOutOfRange) {
		t.Error("Write past the end accepted:", err)
	}
	if _, err := Plan(256, nil, testProfile); !errors.Is(err, ErrorOutOfRange) {
		t.Error("Write at capacity accepted:", err)
	}
	if _, err := Plan(0xffffffff, make([]byte, 2), testProfile); !errors.Is(err, ErrorOutOfRange) {
		t.Error("Overflowing range accepted:", err)
	}

	chunks, err := Plan(246, make([]byte, 10), testProfile)
	if err != nil || len(chunks) != 1 {
		t.Error("Write up to the last byte failed:", err, len(chunks))
	}
}

func TestPlanEmpty(t *testing.T) {
	chunks, err := Plan(17, nil, testProfile)
	if err != nil || len(chunks) != 0 {
		t.Errorf("Empty write: %d chunks, %v", len(chunks), err)
	}
}

func TestPlanInvalidProfile(t *testing.T) {
	p := testProfile
	p.MaxWriteChunk = 0

	if _, err := Plan(0, make([]byte, 4), p); !errors.Is(err, ErrorInvalidProfile) {
		t.Error("Plan accepted invalid profile:", err)
	}
}
