package screening

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Span is a half-open byte range [Start, End) in the original text.
type Span struct {
	Start int
	End   int
}

func (s Span) overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Text holds one document text in the forms the detectors need.
// Original is never modified; Lower is the case-folded copy used for
// pattern comparisons.
type Text struct {
	Original string
	Lower    string

	// folded is lower-cased with diacritics removed; starts maps each of its
	// bytes back to the byte offset of the original rune that produced it.
	folded string
	starts []int
}

// Normalize builds the comparison views of s without touching s itself.
func Normalize(s string) Text {
	var b strings.Builder
	b.Grow(len(s))
	starts := make([]int, 0, len(s)+1)
	for i, r := range s {
		f := foldRune(r)
		b.WriteString(f)
		for k := 0; k < len(f); k++ {
			starts = append(starts, i)
		}
	}
	starts = append(starts, len(s))
	return Text{
		Original: s,
		Lower:    strings.ToLower(s),
		folded:   b.String(),
		starts:   starts,
	}
}

// Fold lower-cases s and strips combining marks, so "Licitação" and
// "LICITACAO" compare equal.
func Fold(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		b.WriteString(foldRune(r))
	}
	return b.String()
}

func foldRune(r rune) string {
	r = unicode.ToLower(r)
	if r < utf8.RuneSelf {
		return string(r)
	}
	var b strings.Builder
	for _, c := range norm.NFD.String(string(r)) {
		if unicode.Is(unicode.Mn, c) {
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

// Folded returns the case- and accent-folded view.
func (t Text) Folded() string { return t.folded }

// Contains reports whether phrase occurs, ignoring case and accents.
func (t Text) Contains(phrase string) bool {
	p := Fold(phrase)
	return p != "" && strings.Contains(t.folded, p)
}

// FindAll returns every non-overlapping occurrence of phrase as spans of
// the original text, ignoring case and accents.
func (t Text) FindAll(phrase string) []Span {
	p := Fold(phrase)
	if p == "" {
		return nil
	}
	var out []Span
	from := 0
	for from <= len(t.folded)-len(p) {
		i := strings.Index(t.folded[from:], p)
		if i < 0 {
			break
		}
		fs := from + i
		fe := fs + len(p)
		out = append(out, Span{Start: t.starts[fs], End: t.starts[fe]})
		from = fe
	}
	return out
}

// First returns the original literal of the first occurrence of phrase.
func (t Text) First(phrase string) (string, bool) {
	spans := t.FindAll(phrase)
	if len(spans) == 0 {
		return "", false
	}
	return t.Original[spans[0].Start:spans[0].End], true
}
