//go:build !unix

package rowcut

// MappedCursor is unavailable on this platform; see cursor_mmap_unix.go.
// The type still exists so callers can reference it in type signatures,
// but it can never be constructed successfully.
type MappedCursor struct{}

// NewMappedCursor always fails on non-unix platforms. Use NewBufferedCursor.
func NewMappedCursor(path string) (*MappedCursor, error) {
	return nil, &MapError{Path: path, Err: ErrMmapUnsupported}
}

func (c *MappedCursor) Buf() []byte { return nil }
func (c *MappedCursor) Size() int { return 0 }
func (c *MappedCursor) Consume(int) {}
func (c *MappedCursor) Fill() bool { return false }
func (c *MappedCursor) Close() error { return nil }
