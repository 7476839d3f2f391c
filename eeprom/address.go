package eeprom

import "encoding/binary"

// Address is an offset as it appears on the wire.
type Address struct {
	Select    uint8 // high offset bits carried in the slave address
	HasSelect bool
	Bytes     []byte // word address, big-endian
}

// Slave returns the 7 bit slave address used to reach this offset.
func (a Address) Slave(base uint8) uint8 {
	if a.HasSelect {
		return base | a.Select
	}
	return base
}

func EncodeAddress(offset uint32, p Profile) (Address, error) {
	if err := checkRange(offset, 0, p.Capacity); err != nil {
		return Address{}, err
	}

	var a Address
	low := offset

	if p.Addressing == SelectBits {
		a.Select = uint8(offset >> p.AddressBits)
		a.HasSelect = true
		low &= 1<<p.AddressBits - 1
	}

	if p.AddressBits == 16 {
		a.Bytes = make([]byte, 2)
		binary.BigEndian.PutUint16(a.Bytes, uint16(low))
	} else {
		a.Bytes = []byte{byte(low)}
	}

	return a, nil
}
