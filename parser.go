package rowcut

// parserState enumerates the row-level grammar states from the state
// table: NewlineSkip is the entry state; CellStart begins each cell;
// InQuoted/AfterQuote handle quoted cells; InUnquoted/AfterUnquotedBreak
// handle unquoted cells.
type parserState int

const (
	stateNewlineSkip parserState = iota
	stateCellStart
	stateInQuoted
	stateAfterQuote
	stateInUnquoted
	stateAfterUnquotedBreak
)

// rowStatus is tryParseRow's internal control signal. Only rowOK and
// rowDone ever escape ReadRow to the caller.
type rowStatus int

const (
	rowOK rowStatus = iota
	rowDone
	rowOverflow
	rowUnderrun
)

// RowParser drives one InputCursor through the row-level grammar,
// emitting cells as zero-copy views into the cursor's buffer and
// advancing the cursor by exactly the bytes consumed on every
// successful row. A RowParser holds an exclusive borrow of its cursor
// for its lifetime; callers must not touch the cursor directly.
type RowParser struct {
	cursor InputCursor
	cfg    Config

	quotedSpan   CharClassSpanner // {quote, escape}
	unquotedSpan CharClassSpanner // {delimiter, '\r', '\n', escape}

	row      Row
	eof      bool  // true once the cursor has reported Fill() == false
	consumed int64 // cumulative bytes advanced past the cursor's start
}

// NewRowParser constructs a parser over cursor using cfg. The parser
// takes exclusive ownership of cursor.
func NewRowParser(cursor InputCursor, cfg Config) *RowParser {
	p := &RowParser{
		cursor:       cursor,
		cfg:          cfg,
		quotedSpan:   NewCharClassSpanner(cfg.quote, cfg.escape),
		unquotedSpan: NewCharClassSpanner(cfg.delimiter, '\r', '\n', cfg.escape),
	}
	p.row.grow()
	return p
}

// Row returns the most recently parsed row. Valid until the next
// ReadRow call or any operation on the parser's cursor.
func (p *RowParser) Row() *Row { return &p.row }

// BytesConsumed returns the cumulative number of input bytes advanced
// past the cursor's start across every successful row so far.
func (p *RowParser) BytesConsumed() int64 { return p.consumed }

// advance consumes n bytes from the cursor and tracks them for
// BytesConsumed.
func (p *RowParser) advance(n int) {
	p.cursor.Consume(n)
	p.consumed += int64(n)
}

// Close releases the underlying cursor.
func (p *RowParser) Close() error { return p.cursor.Close() }

// ReadRow parses the next row. It returns false once input is
// exhausted. On overflow it grows the row's cell storage and retries;
// on underrun it fills the cursor and retries. Neither path advances
// the cursor.
func (p *RowParser) ReadRow() bool {
	for {
		p.row.reset()
		switch p.tryParseRow() {
		case rowOK:
			return true
		case rowDone:
			return false
		case rowOverflow:
			p.row.grow()
		case rowUnderrun:
			if !p.eof && !p.cursor.Fill() {
				p.eof = true
			}
		}
	}
}

// tryParseRow attempts to parse exactly one row starting at the
// cursor's current logical start. It mutates the cursor only on
// success, via a single Consume call at the very end. This is the
// literal state table from the grammar: each case below corresponds to
// one row of that table.
func (p *RowParser) tryParseRow() rowStatus {
	buf := p.cursor.Buf()
	size := p.cursor.Size()

	state := stateNewlineSkip
	pos := 0
	cellStart := 0
	escaped := false

	finishCell := func(end int) rowStatus {
		if p.row.count >= p.row.capacity() {
			return rowOverflow
		}
		p.row.push(CellView{
			raw:     buf[cellStart:end],
			escaped: escaped,
			quote:   p.cfg.quote,
			escape:  p.cfg.escape,
		})
		return rowOK
	}

	for {
		switch state {
		case stateNewlineSkip:
			for pos < size && (buf[pos] == '\r' || buf[pos] == '\n') {
				pos++
			}
			if pos == size {
				if !p.eof {
					return rowUnderrun
				}
				return rowDone
			}
			cellStart = pos
			escaped = false
			state = stateCellStart

		case stateCellStart:
			escaped = false
			if pos == size {
				if !p.eof {
					return rowUnderrun
				}
				return rowDone
			}
			switch buf[pos] {
			case '\r', '\n':
				if st := finishCell(pos); st != rowOK {
					return st
				}
				p.advance(consumeTerminator(buf, pos, size))
				return rowOK
			case p.cfg.quote:
				pos++
				cellStart = pos
				state = stateInQuoted
			case p.cfg.delimiter:
				if st := finishCell(pos); st != rowOK {
					return st
				}
				pos++
				cellStart = pos
			default:
				state = stateInUnquoted
			}

		case stateInQuoted:
			if pos+spanWindow > size {
				if !p.eof {
					return rowUnderrun
				}
				k := scalarFind(&p.quotedSpan, buf[pos:size])
				if k < 0 {
					if st := finishCell(size); st != rowOK {
						return st
					}
					if p.cfg.yieldIncompleteRow {
						p.advance(size)
						return rowOK
					}
					return rowDone
				}
				pos += k + 1
				state = stateAfterQuote
				continue
			}
			k := p.quotedSpan.Span(buf[pos : pos+spanWindow])
			if k == spanWindow {
				pos += spanWindow
				continue
			}
			pos += k + 1
			state = stateAfterQuote

		case stateAfterQuote:
			if pos == size {
				if !p.eof {
					return rowUnderrun
				}
				if st := finishCell(pos - 1); st != rowOK {
					return st
				}
				if p.cfg.yieldIncompleteRow {
					p.advance(size)
					return rowOK
				}
				return rowDone
			}
			switch buf[pos] {
			case '\r', '\n':
				if st := finishCell(pos - 1); st != rowOK {
					return st
				}
				p.advance(consumeTerminator(buf, pos, size))
				return rowOK
			case p.cfg.delimiter:
				if st := finishCell(pos - 1); st != rowOK {
					return st
				}
				pos++
				cellStart = pos
				state = stateCellStart
			default:
				escaped = true
				pos++
				state = stateInQuoted
			}

		case stateInUnquoted:
			if pos+spanWindow > size {
				if !p.eof {
					return rowUnderrun
				}
				k := scalarFind(&p.unquotedSpan, buf[pos:size])
				if k < 0 {
					if st := finishCell(size); st != rowOK {
						return st
					}
					if p.cfg.yieldIncompleteRow {
						p.advance(size)
						return rowOK
					}
					return rowDone
				}
				pos += k
				state = stateAfterUnquotedBreak
				continue
			}
			k := p.unquotedSpan.Span(buf[pos : pos+spanWindow])
			if k == spanWindow {
				pos += spanWindow
				continue
			}
			pos += k
			state = stateAfterUnquotedBreak

		case stateAfterUnquotedBreak:
			switch buf[pos] {
			case '\r', '\n':
				if st := finishCell(pos); st != rowOK {
					return st
				}
				p.advance(consumeTerminator(buf, pos, size))
				return rowOK
			case p.cfg.delimiter:
				if st := finishCell(pos); st != rowOK {
					return st
				}
				pos++
				cellStart = pos
				state = stateCellStart
			default: // escapechar: consume it and the literal byte after it
				escaped = true
				pos++
				if pos == size {
					if !p.eof {
						return rowUnderrun
					}
					if st := finishCell(size); st != rowOK {
						return st
					}
					if p.cfg.yieldIncompleteRow {
						p.advance(size)
						return rowOK
					}
					return rowDone
				}
				pos++
				state = stateInUnquoted
			}
		}
	}
}

// consumeTerminator returns how far to advance the cursor past the
// terminator byte at pos: 2 for a CRLF pair observed in full within the
// current window, 1 otherwise. A lone trailing '\r' with its '\n' not
// yet visible is left for the next row's NewlineSkip to absorb, which
// tolerates it unconditionally.
func consumeTerminator(buf []byte, pos, size int) int {
	n := pos + 1
	if buf[pos] == '\r' && n < size && buf[n] == '\n' {
		n++
	}
	return n
}

// scalarFind returns the index of the first byte in window matching one
// of s's targets, or -1. Used only at true end-of-input when fewer than
// spanWindow bytes remain, where scanning a padded vector window would
// risk reading uninitialized margin bytes as if they were data.
func scalarFind(s *CharClassSpanner, window []byte) int {
	for i, b := range window {
		if s.lut[b] {
			return i
		}
	}
	return -1
}
