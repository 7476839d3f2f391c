//go:build linux

package i2c

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	I2C_RDWR = 0x0707
	I2C_M_RD = 0x0001

	maxMessageLength = 0xffff
)

type I2CMsg struct {
	Addr  uint16  // 7 bit slave address
	Flags uint16  // I2C_M_RD for the read phase
	Len   uint16  // bytes in Buf
	Buf   uintptr // points to the data buffer
}

type I2CRdwrIoctlData struct {
	Msgs  uintptr // points to the first I2CMsg
	Nmsgs uint32
}

// Linux is a bus opened through /dev/i2c-N. It implements sync.Locker so
// that callers can keep the bus for a sequence of transactions.
type Linux struct {
	path string
	fd   int

	lock sync.Mutex
}

func Open(path string) (*Linux, error) {
	l := &Linux{
		path: path,
		fd:   -1,
	}

	var err error
	l.fd, err = unix.Open(path, unix.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	return l, nil
}

func (l *Linux) Lock() {
	l.lock.Lock()
}

func (l *Linux) Unlock() {
	l.lock.Unlock()
}

func (l *Linux) Close() error {
	if l.fd < 0 {
		return nil
	}

	fd := l.fd
	l.fd = -1

	return unix.Close(fd)
}

func (l *Linux) Transact(addr uint8, w []byte, r []byte) error {
	if l.fd < 0 {
		return errors.New("i2c: bus is closed")
	}
	if len(w) > maxMessageLength || len(r) > maxMessageLength {
		return ErrorTransferTooLong
	}

	var msgs [2]I2CMsg
	n := 0

	/* A transaction without any data is sent as a zero length write */
	if len(w) > 0 || len(r) == 0 {
		msgs[n] = I2CMsg{Addr: uint16(addr), Len: uint16(len(w))}
		if len(w) > 0 {
			msgs[n].Buf = uintptr(unsafe.Pointer(&w[0]))
		}
		n++
	}

	if len(r) > 0 {
		msgs[n] = I2CMsg{
			Addr:  uint16(addr),
			Flags: I2C_M_RD,
			Len:   uint16(len(r)),
			Buf:   uintptr(unsafe.Pointer(&r[0])),
		}
		n++
	}

	data := I2CRdwrIoctlData{
		Msgs:  uintptr(unsafe.Pointer(&msgs[0])),
		Nmsgs: uint32(n),
	}

	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(l.fd), I2C_RDWR, uintptr(unsafe.Pointer(&data)))
	runtime.KeepAlive(w)
	runtime.KeepAlive(r)
	runtime.KeepAlive(&msgs)

	if errno != 0 {
		/* Adapters report a missing address ACK as either of these */
		if errno == unix.ENXIO || errno == unix.EREMOTEIO {
			return fmt.Errorf("%w: slave 0x%02x: %v", ErrNACK, addr, errno)
		}
		return fmt.Errorf("i2c transaction with slave 0x%02x: %w", addr, errno)
	}

	return nil
}
