package sink

import "context"

// MultiSink fans every line out to several sinks in order. The first
// failure aborts the write; later sinks in the chain see nothing for that
// line.
type MultiSink struct {
	sinks []LineSink
}

// NewMultiSink combines sinks into one. A single sink is returned as-is.
func NewMultiSink(sinks ...LineSink) LineSink {
	if len(sinks) == 1 {
		return sinks[0]
	}
	return &MultiSink{sinks: sinks}
}

// WriteLine implements LineSink.
func (m *MultiSink) WriteLine(ctx context.Context, line []byte) error {
	for _, s := range m.sinks {
		if err := s.WriteLine(ctx, line); err != nil {
			return err
		}
	}
	return nil
}

// Flush implements LineSink.
func (m *MultiSink) Flush(ctx context.Context) error {
	for _, s := range m.sinks {
		if err := s.Flush(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink, returning the first error observed.
func (m *MultiSink) Close() error {
	var first error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
