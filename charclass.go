package rowcut

import (
	"encoding/binary"
	"math/bits"

	"github.com/Doomsbay/rowcut/internal/cpufeature"
)

// spanWindow is the number of bytes CharClassSpanner.Span inspects per call.
// The InputCursor safety margin (see cursor.go) exists so this window can
// always be read without bounds checking past the logical tail.
const spanWindow = 16

const broadcastLo = 0x0101010101010101
const broadcastHi = 0x8080808080808080

// CharClassSpanner finds the first occurrence, within a 16-byte window, of
// any of up to four target bytes. It is the vectorized primitive the row
// parser's bulk-scan states are built on: one instance matches
// {quotechar, escapechar} inside quoted cells, another matches
// {delimiter, '\r', '\n', escapechar} inside unquoted cells.
//
// On capable hardware the scan proceeds two 8-byte words at a time using a
// SWAR (SIMD-within-a-register) broadcast-compare trick — the portable
// equivalent of the "find any of" vector instruction described in the
// design notes, requiring no assembly and no build tags. A 256-entry
// lookup-table scan is kept as the scalar fallback and must return
// identical results; cpufeature reports the detected CPU features so
// callers doing diagnostics (see cmd/rowcut-ingest) can record them.
type CharClassSpanner struct {
	lut       [256]bool
	bcast     [4]uint64 // one broadcast(target) word per configured target, 0 for unused slots
	n         int
	useVector bool
}

// NewCharClassSpanner builds a spanner over targets. Duplicates are
// harmless. A zero byte is never treated as a target even if supplied,
// because Config uses 0 to mean "no such character" (an unset escape byte).
func NewCharClassSpanner(targets ...byte) CharClassSpanner {
	var s CharClassSpanner
	s.useVector = cpufeature.HasWordCompare()
	for _, t := range targets {
		if t == 0 {
			continue
		}
		if s.lut[t] {
			continue // already a target; don't waste a broadcast slot
		}
		s.lut[t] = true
		if s.n < len(s.bcast) {
			s.bcast[s.n] = uint64(t) * broadcastLo
			s.n++
		} else {
			s.useVector = false // more targets than broadcast slots
		}
	}
	return s
}

// Span returns the offset in [0, 16] of the first byte in window equal to
// any target, or 16 if none match. window must have at least 16 readable
// bytes; callers satisfy this via the InputCursor safety margin.
func (s *CharClassSpanner) Span(window []byte) int {
	_ = window[spanWindow-1] // contract check: panics if caller violates the 16-byte guarantee
	if s.useVector {
		return s.spanVector(window)
	}
	return s.spanScalar(window)
}

// spanScalar scans byte-by-byte via the lookup table. Always correct;
// used when the SWAR word trick isn't applicable: on hosts without fast
// word compares, or when NewCharClassSpanner was given more than 4
// distinct targets (the SWAR path holds only 4 broadcast words).
func (s *CharClassSpanner) spanScalar(window []byte) int {
	for i := 0; i < spanWindow; i++ {
		if s.lut[window[i]] {
			return i
		}
	}
	return spanWindow
}

// spanVector scans two 8-byte words using the classic "find the byte equal
// to B" SWAR trick: XOR the word against a broadcast of B, then detect a
// zero byte in the result via the subtract-and-mask idiom. Matches across
// all configured targets are combined with bitwise OR before taking the
// first set bit, so the whole 8-byte lane is tested for "equals any
// target" in one pass.
func (s *CharClassSpanner) spanVector(window []byte) int {
	lo := binary.LittleEndian.Uint64(window[0:8])
	hi := binary.LittleEndian.Uint64(window[8:16])

	if pos, ok := firstMatchInWord(lo, s.bcast[:s.n]); ok {
		return pos
	}
	if pos, ok := firstMatchInWord(hi, s.bcast[:s.n]); ok {
		return 8 + pos
	}
	return spanWindow
}

// firstMatchInWord returns the byte offset (0..7) of the first byte in word
// that equals any of the broadcast target values, or ok=false if none do.
func firstMatchInWord(word uint64, bcasts []uint64) (int, bool) {
	var combined uint64
	for _, b := range bcasts {
		x := word ^ b
		// zeroByteMask: a byte in x is 0x00 iff the corresponding byte of
		// word equals the target broadcast into b.
		combined |= zeroByteMask(x)
	}
	if combined == 0 {
		return 0, false
	}
	// Each matching byte lane has its high bit (bit 7) set in combined;
	// the lane index is the matching byte's position.
	return bits.TrailingZeros64(combined) / 8, true
}

// zeroByteMask implements the well-known branchless "has a zero byte" test.
// The lowest set top bit marks the first 0x00 byte of x exactly; a lane
// above a zero byte can also be flagged by the borrow, so callers use only
// the lowest set bit.
func zeroByteMask(x uint64) uint64 {
	return (x - broadcastLo) &^ x & broadcastHi
}
