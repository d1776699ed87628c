package source

import (
	"fmt"
	"io"
	"os"

	"github.com/SteelMorgan/logslice/internal/domain"
)

// ByteSource provides random-access reads over an immutable log file.
// Implementations must support concurrent-free sequential use: one reader,
// reads at arbitrary offsets, known total length.
type ByteSource interface {
	io.ReaderAt

	// Size returns the total length of the underlying file in bytes.
	Size() int64

	// Close releases the file handle and any mapping.
	Close() error
}

// FileSource is a seek-based ByteSource backed by an open file descriptor.
type FileSource struct {
	f    *os.File
	size int64
}

// OpenFile opens path as a plain seek-based byte source.
func OpenFile(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInputUnavailable, err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrInputUnavailable, err)
	}

	return &FileSource{f: f, size: stat.Size()}, nil
}

// ReadAt implements io.ReaderAt.
func (s *FileSource) ReadAt(p []byte, off int64) (int, error) {
	return s.f.ReadAt(p, off)
}

// Size returns the file length captured at open time.
func (s *FileSource) Size() int64 {
	return s.size
}

// Close closes the underlying file.
func (s *FileSource) Close() error {
	return s.f.Close()
}
