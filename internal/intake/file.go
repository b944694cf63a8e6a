package intake

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// File is a handle on a candidate or staged file. The intake never reads the
// bytes itself; only a Submitter opens them.
type File interface {
	Name() string
	Size() int64
	Open() (io.ReadCloser, error)
}

// Discarder is implemented by files that hold resources (a spooled temp file,
// for example). The intake calls Discard once it lets go of the file: after a
// rejection, a removal, a successful submission or when the intake is closed.
type Discarder interface {
	Discard() error
}

// MemoryFile is a File backed by a byte slice.
type MemoryFile struct {
	name string
	data []byte
	size int64
}

// NewMemoryFile wraps data under the given name.
func NewMemoryFile(name string, data []byte) *MemoryFile {
	return &MemoryFile{name: name, data: data, size: int64(len(data))}
}

// NewSizedFile returns a content-less file that reports the given size. It is
// handy for exercising the size rule without allocating the bytes.
func NewSizedFile(name string, size int64) *MemoryFile {
	return &MemoryFile{name: name, size: size}
}

func (f *MemoryFile) Name() string { return f.name }
func (f *MemoryFile) Size() int64  { return f.size }

func (f *MemoryFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

// DiskFile is a File that refers to a path on the local filesystem. It does
// not own the path, so it has no Discard.
type DiskFile struct {
	path string
	size int64
}

// OpenDiskFile stats path and returns a handle on it.
func OpenDiskFile(path string) (*DiskFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return &DiskFile{path: path, size: info.Size()}, nil
}

func (f *DiskFile) Name() string { return filepath.Base(f.path) }
func (f *DiskFile) Size() int64  { return f.size }

func (f *DiskFile) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}

func discard(f File) {
	if d, ok := f.(Discarder); ok {
		_ = d.Discard()
	}
}
