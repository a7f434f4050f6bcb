package screening

import (
	"sort"
	"strings"
)

// Highlighter wraps evidence literals in visible markers.
type Highlighter struct {
	Open  string
	Close string
}

// DefaultHighlighter marks spans with HTML <mark> tags.
var DefaultHighlighter = Highlighter{Open: "<mark>", Close: "</mark>"}

// Highlight marks every case-insensitive occurrence of each literal in
// text. Longer literals win over shorter ones they contain, spans never
// nest, and text that is already marked is left alone, so running it
// twice gives the same output. Engine.Screen uses it for fresh results;
// callers can also re-highlight stored text with different markers.
func (h Highlighter) Highlight(text string, literals []string) string {
	return h.highlight(Normalize(text), literals)
}

func (h Highlighter) highlight(t Text, literals []string) string {
	if h.Open == "" || h.Close == "" {
		h = DefaultHighlighter
	}
	taken := h.markedRegions(t.Original)
	var spans []Span

	for _, lit := range orderLiterals(literals) {
		for _, s := range t.FindAll(lit) {
			if overlapsAny(s, taken) {
				continue
			}
			taken = append(taken, s)
			spans = append(spans, s)
		}
	}
	if len(spans) == 0 {
		return t.Original
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })

	var b strings.Builder
	b.Grow(len(t.Original) + len(spans)*(len(h.Open)+len(h.Close)))
	last := 0
	for _, s := range spans {
		b.WriteString(t.Original[last:s.Start])
		b.WriteString(h.Open)
		b.WriteString(t.Original[s.Start:s.End])
		b.WriteString(h.Close)
		last = s.End
	}
	b.WriteString(t.Original[last:])
	return b.String()
}

// markedRegions returns the spans already covered by markers, tags included.
func (h Highlighter) markedRegions(s string) []Span {
	var out []Span
	from := 0
	for {
		i := strings.Index(s[from:], h.Open)
		if i < 0 {
			break
		}
		start := from + i
		end := start + len(h.Open)
		if j := strings.Index(s[end:], h.Close); j >= 0 {
			end += j + len(h.Close)
		}
		out = append(out, Span{Start: start, End: end})
		from = end
	}
	// stray closing tags
	from = 0
	for {
		i := strings.Index(s[from:], h.Close)
		if i < 0 {
			break
		}
		sp := Span{Start: from + i, End: from + i + len(h.Close)}
		if !overlapsAny(sp, out) {
			out = append(out, sp)
		}
		from = sp.End
	}
	return out
}

// orderLiterals dedupes by folded form and sorts longest first; ties are
// broken lexically so the result does not depend on input order.
func orderLiterals(literals []string) []string {
	seen := map[string]bool{}
	type lit struct{ raw, folded string }
	var ls []lit
	for _, l := range literals {
		f := Fold(l)
		if strings.TrimSpace(f) == "" || seen[f] {
			continue
		}
		seen[f] = true
		ls = append(ls, lit{raw: l, folded: f})
	}
	sort.Slice(ls, func(i, j int) bool {
		if len(ls[i].folded) != len(ls[j].folded) {
			return len(ls[i].folded) > len(ls[j].folded)
		}
		return ls[i].folded < ls[j].folded
	})
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.raw
	}
	return out
}

func overlapsAny(s Span, spans []Span) bool {
	for _, o := range spans {
		if s.overlaps(o) {
			return true
		}
	}
	return false
}
