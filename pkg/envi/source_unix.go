//go:build unix

package envi

import (
	"bytes"
	"os"

	"golang.org/x/sys/unix"
)

// openSource opens a data file for reading. When mapping is requested the
// file is mapped read-only; if that is not possible the plain file is used.
func openSource(path string, mmap bool) (source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !mmap {
		return f, nil
	}

	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	size := stat.Size()
	if size <= 0 || size > int64(int(^uint(0)>>1)) {
		// empty files cannot be mapped, huge ones cannot be sliced.
		return f, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return f, nil
	}
	// The mapping outlives the descriptor.
	_ = f.Close()
	return &mappedSource{Reader: bytes.NewReader(data), data: data}, nil
}

type mappedSource struct {
	*bytes.Reader
	data []byte
}

func (m *mappedSource) Close() error {
	if m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	m.data = nil
	m.Reader = bytes.NewReader(nil)
	return err
}
