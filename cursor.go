package rowcut

// InputCursor abstracts a growable view of input bytes with a 16-byte
// safety margin past the logically valid tail, so CharClassSpanner can
// always issue a full 16-byte window read without a bounds check.
//
// Safety invariant (contract with RowParser): at all times,
// Buf()[0 .. Size()+15] must be readable without fault. Those extra 15
// bytes need not be zero and must never be interpreted semantically.
//
// A RowParser holds an exclusive borrow of one cursor for its lifetime.
// Callers must not mutate the cursor directly while a parser is in use.
// Advancing the cursor (Consume) or calling Fill invalidates every
// previously returned CellView.
type InputCursor interface {
	// Buf returns a read-only view starting at the cursor's current
	// logical start. Only the first Size() bytes are valid data; bytes
	// past that up to the 16-byte margin are readable but meaningless.
	Buf() []byte

	// Size returns the number of valid bytes starting at Buf().
	Size() int

	// Consume advances the logical start by min(n, Size()).
	Consume(n int)

	// Fill attempts to make more bytes available. It returns true iff,
	// after the call, Size() > 0 and some progress was made relative to
	// the prior call; it returns false on end-of-input or read error.
	Fill() bool

	// Close releases resources held by the cursor (unmaps a file mapping,
	// or simply drops the buffered cursor's backing array).
	Close() error
}
