package sink

import "context"

// LineSink accepts matched log lines in original file order. Ownership of
// each line is transient: the slice is only valid for the duration of the
// WriteLine call.
type LineSink interface {
	// WriteLine appends one matched line (without its terminator).
	WriteLine(ctx context.Context, line []byte) error

	// Flush forces any buffered lines out to the destination.
	Flush(ctx context.Context) error

	// Close flushes and releases the sink.
	Close() error
}
