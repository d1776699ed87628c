//go:build unix

package source

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"

	"github.com/SteelMorgan/logslice/internal/domain"
)

// MmapSource is a ByteSource backed by a read-only memory mapping.
type MmapSource struct {
	f    *os.File
	data []byte
	size int64
}

// Open opens path as a byte source, preferring a read-only memory mapping
// and falling back to seek-based reads when the file cannot be mapped
// (empty files, filesystems without mmap support).
func Open(path string) (ByteSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInputUnavailable, err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrInputUnavailable, err)
	}

	size := stat.Size()
	if size == 0 {
		// Zero-length mappings are rejected by the kernel.
		return &FileSource{f: f, size: 0}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		log.Debug().
			Err(err).
			Str("path", path).
			Msg("mmap failed, using seek-based reads")
		return &FileSource{f: f, size: size}, nil
	}

	return &MmapSource{f: f, data: data, size: size}, nil
}

// ReadAt implements io.ReaderAt over the mapped region.
func (s *MmapSource) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("negative offset %d", off)
	}
	if off >= s.size {
		return 0, io.EOF
	}

	n := copy(p, s.data[off:s.size])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Size returns the mapped length.
func (s *MmapSource) Size() int64 {
	return s.size
}

// Close unmaps the region and closes the file.
func (s *MmapSource) Close() error {
	if s.data != nil {
		if err := unix.Munmap(s.data); err != nil {
			s.f.Close()
			return fmt.Errorf("munmap: %w", err)
		}
		s.data = nil
	}
	return s.f.Close()
}
