package extract

import (
	"bytes"
	"context"
	"errors"
	"io"
	"unicode/utf8"

	"github.com/SteelMorgan/logslice/internal/domain"
	"github.com/SteelMorgan/logslice/internal/source"
)

// LineHandler receives each matched line in original file order. The slice
// is only valid for the duration of the call.
type LineHandler func(line []byte) error

// ScanStats summarizes one scan pass.
type ScanStats struct {
	Matches    int64
	LossyLines int64
}

// Scanner reads a byte window in fixed-size chunks and emits every complete
// line whose date key equals the target. Lines split across chunk
// boundaries are reassembled through a carry buffer; a leading fragment is
// dropped only when the window genuinely starts mid-line.
type Scanner struct {
	src         source.ByteSource
	size        int64
	granularity int64
}

// NewScanner creates a scanner reading in chunks of granularity bytes.
func NewScanner(src source.ByteSource, granularity int64) *Scanner {
	return &Scanner{
		src:         src,
		size:        src.Size(),
		granularity: granularity,
	}
}

// Scan walks [window.Start, window.End), calling handle for every matching
// line. Short reads signal end of data and are not errors; invalid UTF-8 in
// a matched line is replaced rather than aborting the scan.
func (s *Scanner) Scan(ctx context.Context, window domain.Window, target DateKey, handle LineHandler) (ScanStats, error) {
	var stats ScanStats
	if window.Start >= window.End {
		return stats, nil
	}

	// The window begins mid-line unless the previous byte is a terminator;
	// in that case the first fragment belongs to a record outside the
	// window and must not be classified.
	dropFirst := false
	if window.Start > 0 {
		var prev [1]byte
		n, err := s.src.ReadAt(prev[:], window.Start-1)
		if n == 1 {
			dropFirst = prev[0] != '\n'
		} else if err != nil && !errors.Is(err, io.EOF) {
			return stats, err
		}
	}

	key := []byte(target.String())
	buf := make([]byte, s.granularity)
	var carry []byte

	pos := window.Start
	for pos < window.End {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		want := s.granularity
		if remain := window.End - pos; remain < want {
			want = remain
		}

		n, err := s.src.ReadAt(buf[:want], pos)
		if n > 0 {
			chunk := buf[:n]
			for {
				i := bytes.IndexByte(chunk, '\n')
				if i < 0 {
					carry = append(carry, chunk...)
					break
				}

				line := chunk[:i]
				if len(carry) > 0 {
					carry = append(carry, line...)
					line = carry
				}
				chunk = chunk[i+1:]

				if dropFirst {
					dropFirst = false
				} else if err := s.classify(line, key, handle, &stats); err != nil {
					return stats, err
				}
				carry = carry[:0]
			}
			pos += int64(n)
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return stats, err
		}
		if n == 0 {
			break
		}
	}

	// A trailing fragment is a complete record only when the window ends at
	// the file's last byte (files need not end with a terminator).
	if len(carry) > 0 && !dropFirst && window.End >= s.size {
		if err := s.classify(carry, key, handle, &stats); err != nil {
			return stats, err
		}
	}

	return stats, nil
}

// classify emits line through handle when its date key equals key.
func (s *Scanner) classify(line, key []byte, handle LineHandler, stats *ScanStats) error {
	if len(line) < dateKeyLen || !bytes.Equal(line[:dateKeyLen], key) {
		return nil
	}

	out := line
	if !utf8.Valid(line) {
		out = bytes.ToValidUTF8(line, []byte("�"))
		stats.LossyLines++
	}

	if err := handle(out); err != nil {
		return err
	}
	stats.Matches++
	return nil
}
