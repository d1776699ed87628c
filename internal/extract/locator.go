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

// probeBlockSize is the read size used when looking for the next line
// terminator during a binary-search probe.
const probeBlockSize = 4096

// Locator binary-searches byte offsets of a date-prefixed log file to
// bound the region containing a target date.
//
// The search is approximate: the file is assumed broadly (not strictly)
// ordered by date key, and the result window is padded with the margin on
// both sides to absorb local disorder. Records disordered by more than one
// margin's worth of bytes can fall outside the window; that is a documented
// limitation, not a defect.
type Locator struct {
	src    source.ByteSource
	size   int64
	margin int64
}

// NewLocator creates a locator over src with the given safety margin.
func NewLocator(src source.ByteSource, margin int64) *Locator {
	return &Locator{
		src:    src,
		size:   src.Size(),
		margin: margin,
	}
}

// Locate returns the window [start, end) that, under the sortedness
// assumption plus margin tolerance, contains every record whose date key
// equals target. An empty file yields (0, 0); the window is always clamped
// to the file bounds.
func (l *Locator) Locate(ctx context.Context, target DateKey) (domain.Window, error) {
	if l.size == 0 {
		return domain.Window{}, nil
	}

	lower, err := l.lowerBound(ctx, target.String(), 0, l.size)
	if err != nil {
		return domain.Window{}, err
	}

	// The second search may start before the first result: lines for the
	// target date can sit slightly before the located offset.
	from := lower - l.margin
	if from < 0 {
		from = 0
	}
	upper, err := l.lowerBound(ctx, target.Next().String(), from, l.size)
	if err != nil {
		return domain.Window{}, err
	}

	start := lower - l.margin
	if start < 0 {
		start = 0
	}
	end := upper + l.margin
	if end > l.size {
		end = l.size
	}
	if end < start {
		end = start
	}

	return domain.Window{Start: start, End: end}, nil
}

// lowerBound finds the approximate first offset at or after which records
// with date keys >= key begin, searching within [left, right].
func (l *Locator) lowerBound(ctx context.Context, key string, left, right int64) (int64, error) {
	for left < right {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		mid := left + (right-left)/2
		probed, ok, err := l.probe(mid)
		if err != nil {
			return 0, err
		}

		// A missing or malformed key sorts as "at or after any target",
		// which shrinks the window from the right.
		if ok && probed < key {
			left = mid + 1
		} else {
			right = mid
		}
	}
	return left, nil
}

// probe reads the date key of the first full line beginning at or after
// mid. It backs up dateKeyLen bytes so a seek landing inside a date token
// cannot be mistaken for a line start, discards everything up to the next
// line terminator, then reads the following line's first 10 bytes.
//
// ok is false when no complete, well-formed key is available there: end of
// data, a line shorter than the key, or invalid UTF-8 in the key bytes.
func (l *Locator) probe(mid int64) (key string, ok bool, err error) {
	pos := mid - dateKeyLen
	if pos < 0 {
		pos = 0
	}

	lineStart, found, err := l.nextLineStart(pos)
	if err != nil || !found {
		return "", false, err
	}

	var buf [dateKeyLen]byte
	n, err := l.src.ReadAt(buf[:], lineStart)
	if n < dateKeyLen {
		if err == nil || errors.Is(err, io.EOF) {
			return "", false, nil
		}
		return "", false, err
	}
	if !utf8.Valid(buf[:]) {
		return "", false, nil
	}
	return string(buf[:]), true, nil
}

// nextLineStart returns the offset just past the first line terminator at
// or after pos. found is false when the rest of the file holds no
// terminator.
func (l *Locator) nextLineStart(pos int64) (offset int64, found bool, err error) {
	buf := make([]byte, probeBlockSize)
	for pos < l.size {
		n, err := l.src.ReadAt(buf, pos)
		if n > 0 {
			if i := bytes.IndexByte(buf[:n], '\n'); i >= 0 {
				return pos + int64(i) + 1, true, nil
			}
			pos += int64(n)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, false, err
		}
		if n == 0 {
			break
		}
	}
	return 0, false, nil
}
