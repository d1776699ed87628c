package extract

import (
	"fmt"
	"time"

	"github.com/SteelMorgan/logslice/internal/domain"
)

const (
	// dateKeyLen is the byte length of the YYYY-MM-DD token prefixing each
	// log line.
	dateKeyLen = 10

	dateKeyLayout = "2006-01-02"
)

// DateKey is a validated calendar date in YYYY-MM-DD form. Its string form
// compares lexicographically in chronological order, which is what the
// binary search over the log file relies on.
type DateKey struct {
	t time.Time
}

// ParseDateKey parses and validates a YYYY-MM-DD date string. Impossible
// dates (2024-02-30, 2023-13-01) are rejected.
func ParseDateKey(s string) (DateKey, error) {
	t, err := time.Parse(dateKeyLayout, s)
	if err != nil {
		return DateKey{}, fmt.Errorf("%w: %q", domain.ErrInvalidDate, s)
	}
	return DateKey{t: t}, nil
}

// Next returns the key for the following calendar day, rolling over month
// and year boundaries.
func (k DateKey) Next() DateKey {
	return DateKey{t: k.t.AddDate(0, 0, 1)}
}

// Time returns the key as a time.Time at midnight UTC.
func (k DateKey) Time() time.Time {
	return k.t
}

// String returns the YYYY-MM-DD form.
func (k DateKey) String() string {
	return k.t.Format(dateKeyLayout)
}
