package rowcut

import "testing"

func cell(raw string, escaped bool, quote, escape byte) CellView {
	return CellView{raw: []byte(raw), escaped: escaped, quote: quote, escape: escape}
}

func TestCellViewStringUnescaped(t *testing.T) {
	v := cell("hello", false, '"', 0)
	if v.String() != "hello" {
		t.Fatalf("String = %q", v.String())
	}
}

func TestCellViewStringCollapsesDoubledQuote(t *testing.T) {
	v := cell(`he said ""hi""`, true, '"', 0)
	want := `he said "hi"`
	if got := v.String(); got != want {
		t.Fatalf("String = %q, want %q", got, want)
	}
}

func TestCellViewStringCollapsesEscapeChar(t *testing.T) {
	v := cell(`a\,b`, true, '"', '\\')
	want := "a,b"
	if got := v.String(); got != want {
		t.Fatalf("String = %q, want %q", got, want)
	}
}

func TestCellViewEqualAndHasPrefix(t *testing.T) {
	v := cell("hello world", false, '"', 0)
	if !v.Equal([]byte("hello world")) {
		t.Fatal("Equal should match identical bytes")
	}
	if v.Equal([]byte("hello")) {
		t.Fatal("Equal should not match a prefix")
	}
	if !v.HasPrefix([]byte("hello")) {
		t.Fatal("HasPrefix should match a real prefix")
	}
	if v.HasPrefix([]byte("world")) {
		t.Fatal("HasPrefix should not match a non-prefix")
	}
	if v.HasPrefix([]byte("hello world and then some")) {
		t.Fatal("HasPrefix should not match something longer than raw")
	}
}

func TestCellViewNumericAccessors(t *testing.T) {
	if got := cell("42", false, '"', 0).Int64(); got != 42 {
		t.Fatalf("Int64 = %d, want 42", got)
	}
	if got := cell("-7", false, '"', 0).Int64(); got != -7 {
		t.Fatalf("Int64 = %d, want -7", got)
	}
	if got := cell("42", false, '"', 0).Uint64(); got != 42 {
		t.Fatalf("Uint64 = %d, want 42", got)
	}
	if got := cell("3.5", false, '"', 0).Float64(); got != 3.5 {
		t.Fatalf("Float64 = %v, want 3.5", got)
	}
	if got := cell("not a number", false, '"', 0).Float64(); got != 0 {
		t.Fatalf("Float64 on garbage = %v, want 0", got)
	}
	if got := cell("not a number", false, '"', 0).Int64(); got != 0 {
		t.Fatalf("Int64 on garbage = %v, want 0", got)
	}
}

func TestCellViewEscapedFlagMatchesDecodedDifference(t *testing.T) {
	// Testable property 3: escaped is true iff the decoded string
	// differs from the raw bytes.
	cases := []struct {
		raw     string
		escaped bool
	}{
		{"plain", false},
		{`has""quote`, true},
	}
	for _, c := range cases {
		v := cell(c.raw, c.escaped, '"', 0)
		differs := v.String() != string(v.Bytes())
		if differs != c.escaped {
			t.Fatalf("raw=%q escaped=%v decoded=%q differs=%v", c.raw, c.escaped, v.String(), differs)
		}
	}
}

func TestRowStringsAndCells(t *testing.T) {
	r := &Row{}
	r.grow()
	r.push(cell("a", false, '"', 0))
	r.push(cell("b", false, '"', 0))

	if r.Len() != 2 {
		t.Fatalf("Len = %d, want 2", r.Len())
	}
	if got := r.Strings(); got[0] != "a" || got[1] != "b" {
		t.Fatalf("Strings = %#v", got)
	}
	if got := r.Cells(); len(got) != 2 {
		t.Fatalf("Cells = %#v", got)
	}

	r.reset()
	if r.Len() != 0 {
		t.Fatalf("Len after reset = %d, want 0", r.Len())
	}
}
