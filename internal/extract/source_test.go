package extract

import "bytes"

// memSource is an in-memory byte source for tests.
type memSource struct {
	*bytes.Reader
}

func newMemSource(data string) memSource {
	return memSource{Reader: bytes.NewReader([]byte(data))}
}

func (memSource) Close() error { return nil }
