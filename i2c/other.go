//go:build !linux

package i2c

import (
	"errors"
	"sync"
)

var errNotSupported = errors.New("i2c: i2c-dev is only available on Linux")

type Linux struct {
	lock sync.Mutex
}

func Open(path string) (*Linux, error) {
	return nil, errNotSupported
}

func (l *Linux) Lock() {
	l.lock.Lock()
}

func (l *Linux) Unlock() {
	l.lock.Unlock()
}

func (l *Linux) Close() error {
	return nil
}

func (l *Linux) Transact(addr uint8, w []byte, r []byte) error {
	return errNotSupported
}
