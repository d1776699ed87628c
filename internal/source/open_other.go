//go:build !unix

package source

// Open opens path as a seek-based byte source. Memory mapping is only
// used on unix platforms.
func Open(path string) (ByteSource, error) {
	return OpenFile(path)
}
