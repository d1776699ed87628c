package sink

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/SteelMorgan/logslice/internal/domain"
)

// DefaultOutputDir is where extraction results land when no explicit output
// path is given.
const DefaultOutputDir = "output"

// DefaultPath derives the output file path for a target date.
func DefaultPath(date string) string {
	return filepath.Join(DefaultOutputDir, fmt.Sprintf("output_%s.txt", date))
}

// FileSink writes matched lines to a local file through a buffered writer.
type FileSink struct {
	path string
	f    *os.File
	w    *bufio.Writer
}

// NewFileSink creates (truncating) the output file at path, creating parent
// directories as needed.
func NewFileSink(path string) (*FileSink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrOutputUnavailable, err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrOutputUnavailable, err)
	}

	log.Debug().Str("path", path).Msg("Opened output file")

	return &FileSink{
		path: path,
		f:    f,
		w:    bufio.NewWriter(f),
	}, nil
}

// Path returns the destination file path.
func (s *FileSink) Path() string {
	return s.path
}

// WriteLine appends line plus a terminator to the buffer.
func (s *FileSink) WriteLine(ctx context.Context, line []byte) error {
	if _, err := s.w.Write(line); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrOutputUnavailable, err)
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrOutputUnavailable, err)
	}
	return nil
}

// Flush drains the buffer to disk.
func (s *FileSink) Flush(ctx context.Context) error {
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrOutputUnavailable, err)
	}
	return nil
}

// Close flushes and closes the output file.
func (s *FileSink) Close() error {
	if err := s.w.Flush(); err != nil {
		s.f.Close()
		return fmt.Errorf("%w: %v", domain.ErrOutputUnavailable, err)
	}
	return s.f.Close()
}
