package image

import (
	"github.com/snksoft/crc"
)

var crcTable *crc.Table

func init() {
	crcTable = crc.NewTable(crc.CRC32)
}

// CRC32 returns the standard (reflected, IEEE) CRC-32 of a dump.
func CRC32(data []byte) uint32 {
	h := crc.NewHashWithTable(crcTable)
	h.Update(data)
	return h.CRC32()
}
