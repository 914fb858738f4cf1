package rowcut

// StrictRowParser wraps a RowParser with the row-shape policy a bulk
// ingestion caller usually wants on top of the permissive core:
// optional field-count enforcement and comment-line skipping. It never
// changes the underlying grammar from spec.md §4.3 — it only filters
// and validates the rows RowParser already produced.
//
// FieldsPerRecord mirrors the teacher's Reader.FieldsPerRecord:
//   - positive: every record must have exactly that many fields.
//   - zero: the first non-comment record sets the expected count.
//   - negative: no validation.
//
// Comment, if nonzero, marks a row as a comment when its first cell's
// raw bytes begin with that byte; such rows are skipped entirely.
type StrictRowParser struct {
	*RowParser

	FieldsPerRecord int
	Comment         byte

	rowNum int
}

// NewStrictRowParser wraps parser. FieldsPerRecord starts at 0
// (auto-detect); Comment starts unset.
func NewStrictRowParser(parser *RowParser) *StrictRowParser {
	return &StrictRowParser{RowParser: parser}
}

// ReadRow advances to the next non-comment row, validating field count
// per the configured policy. It returns false when input is exhausted.
// A field-count mismatch does not stop iteration: the offending row is
// still current (via Row()) and the mismatch is the returned error.
func (s *StrictRowParser) ReadRow() (bool, error) {
	for {
		if !s.RowParser.ReadRow() {
			return false, nil
		}
		s.rowNum++

		row := s.RowParser.Row()
		if s.Comment != 0 && s.isCommentRow(row) {
			continue
		}

		if err := s.validateFieldCount(row); err != nil {
			return true, err
		}
		return true, nil
	}
}

func (s *StrictRowParser) isCommentRow(row *Row) bool {
	if row.count == 0 {
		return false
	}
	first := row.cells[0].raw
	return len(first) > 0 && first[0] == s.Comment
}

func (s *StrictRowParser) validateFieldCount(row *Row) error {
	switch {
	case s.FieldsPerRecord < 0:
		return nil
	case s.FieldsPerRecord == 0:
		s.FieldsPerRecord = row.count
		return nil
	case row.count != s.FieldsPerRecord:
		return &ParseError{Line: s.rowNum, Column: 1, Err: ErrFieldCount}
	}
	return nil
}
