package rowcut

import "io"

// Open opens path as a memory-mapped RowParser, the fast path for bulk
// ingestion of files already resident on local disk. On platforms
// without POSIX mmap support it returns an error wrapping
// ErrMmapUnsupported; use OpenReader with an *os.File instead.
func Open(path string, opts ...Option) (*RowParser, error) {
	cursor, err := NewMappedCursor(path)
	if err != nil {
		return nil, err
	}
	return NewRowParser(cursor, NewConfig(opts...)), nil
}

// OpenReader wraps an arbitrary io.Reader in a buffered RowParser. Use
// this for stdin, network streams, or any source Open's mmap path can't
// handle (compressed input, non-regular files, non-POSIX platforms).
func OpenReader(r io.Reader, opts ...Option) *RowParser {
	return NewRowParser(NewBufferedCursor(r), NewConfig(opts...))
}

// ParseBytes parses data in memory, via a buffered cursor over a
// byteReader, and returns every row's decoded cells. It allocates
// proportionally to the input; callers on the hot path should drive a
// RowParser directly with Cells() instead.
func ParseBytes(data []byte, opts ...Option) ([][]string, error) {
	p := OpenReader(&byteReader{data}, opts...)
	var rows [][]string
	for p.ReadRow() {
		rows = append(rows, p.Row().Strings())
	}
	return rows, nil
}

// byteReader is a minimal io.Reader over a byte slice, avoiding a
// bytes.Reader import for this one call site.
type byteReader struct{ data []byte }

func (b *byteReader) Read(p []byte) (int, error) {
	if len(b.data) == 0 {
		return 0, io.EOF
	}
	n := copy(p, b.data)
	b.data = b.data[n:]
	return n, nil
}
