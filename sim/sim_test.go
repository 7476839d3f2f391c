package sim

import (
	"bytes"
	"errors"
	"testing"

	"github.com/BertoldVdb/i2ceeprom/i2c"
)

func TestPageWrap(t *testing.T) {
	d := New(Config{Base: 0x50, Capacity: 256, PageSize: 8, AddressBytes: 1})

	/* Ten bytes at the start of a page: the last two overwrite the first two */
	data := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	if err := d.Transact(0x50, append([]byte{0x10}, data...), nil); err != nil {
		t.Fatal("Write failed:", err)
	}

	mem := d.Memory()
	if !bytes.Equal(mem[0x10:0x18], []byte{8, 9, 2, 3, 4, 5, 6, 7}) {
		t.Errorf("Unexpected page contents: %x", mem[0x10:0x18])
	}
	if mem[0x18] != 0xff {
		t.Error("Write crossed into the next page")
	}
}

func TestBusy(t *testing.T) {
	d := New(Config{Base: 0x50, Capacity: 256, PageSize: 8, AddressBytes: 1, BusyProbes: 2})

	if err := d.Transact(0x50, []byte{0, 1}, nil); err != nil {
		t.Fatal("Write failed:", err)
	}

	for i := 0; i < 2; i++ {
		if err := d.Transact(0x50, nil, nil); !errors.Is(err, i2c.ErrNACK) {
			t.Errorf("Probe %d: expected NACK, got %v", i, err)
		}
	}
	if err := d.Transact(0x50, nil, nil); err != nil {
		t.Error("Device still busy:", err)
	}

	if d.Probes() != 3 || d.Transactions() != 4 {
		t.Errorf("Counters: probes=%d transactions=%d", d.Probes(), d.Transactions())
	}
}

func TestSelectBits(t *testing.T) {
	d := New(Config{Base: 0x50, Capacity: 2048, PageSize: 16, AddressBytes: 1})

	if err := d.Transact(0x57, []byte{0xf0, 0xaa}, nil); err != nil {
		t.Fatal("Write failed:", err)
	}
	if d.Memory()[0x7f0] != 0xaa {
		t.Error("Select bits were not used as high address bits")
	}

	if err := d.Transact(0x58, nil, nil); !errors.Is(err, i2c.ErrNACK) {
		t.Error("Foreign slave address acknowledged:", err)
	}

	/* Sequential reads run across the select bit blocks */
	d.Load(0xff, []byte{1, 2})
	var buf [2]byte
	if err := d.Transact(0x50, []byte{0xff}, buf[:]); err != nil {
		t.Fatal("Read failed:", err)
	}
	if buf != [2]byte{1, 2} {
		t.Errorf("Read %x across block boundary", buf)
	}
}

func TestTwoByteAddress(t *testing.T) {
	d := New(Config{Base: 0x50, Capacity: 4096, PageSize: 32, AddressBytes: 2})

	if err := d.Transact(0x50, []byte{0x0a, 0xbc, 0x11, 0x22}, nil); err != nil {
		t.Fatal("Write failed:", err)
	}

	buf := make([]byte, 2)
	if err := d.Transact(0x50, []byte{0x0a, 0xbc}, buf); err != nil {
		t.Fatal("Read failed:", err)
	}
	if !bytes.Equal(buf, []byte{0x11, 0x22}) {
		t.Errorf("Read back %x", buf)
	}

	if err := d.Transact(0x50, []byte{0x0a}, buf); err == nil {
		t.Error("Incomplete address accepted")
	}

	cycles := d.Cycles()
	if len(cycles) != 1 || cycles[0].Offset != 0xabc || cycles[0].Length != 2 {
		t.Errorf("Unexpected cycles: %+v", cycles)
	}
}
