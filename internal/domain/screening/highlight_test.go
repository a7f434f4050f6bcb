package screening

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHighlightMarksEveryOccurrence(t *testing.T) {
	got := DefaultHighlighter.Highlight("João Silva assinou; JOÃO SILVA recebeu.", []string{"João Silva"})
	assert.Equal(t, "<mark>João Silva</mark> assinou; <mark>JOÃO SILVA</mark> recebeu.", got)
}

func TestHighlightLongestFirstNeverNests(t *testing.T) {
	text := "Por dispensa de licitação; a licitação seguinte."
	got := DefaultHighlighter.Highlight(text, []string{"licitação", "dispensa de licitação"})

	assert.Equal(t, "Por <mark>dispensa de licitação</mark>; a <mark>licitação</mark> seguinte.", got)
	assert.NotContains(t, got, "<mark><mark>")
}

func TestHighlightIsIdempotent(t *testing.T) {
	literals := []string{"Maria Souza", "Souza", "pagamento retroativo", "31/13/2020"}
	text := "Maria Souza autorizou pagamento retroativo em 31/13/2020. Souza confirmou. Maria Souza."

	once := DefaultHighlighter.Highlight(text, literals)
	twice := DefaultHighlighter.Highlight(once, literals)

	assert.Equal(t, once, twice)
	assert.Equal(t,
		"<mark>Maria Souza</mark> autorizou <mark>pagamento retroativo</mark> em <mark>31/13/2020</mark>. <mark>Souza</mark> confirmou. <mark>Maria Souza</mark>.",
		once)
}

func TestHighlightIgnoresAccents(t *testing.T) {
	got := DefaultHighlighter.Highlight("DISPENSA DE LICITACAO n. 4", []string{"dispensa de licitação"})
	assert.Equal(t, "<mark>DISPENSA DE LICITACAO</mark> n. 4", got)
}

func TestHighlightWithoutLiterals(t *testing.T) {
	text := "nada a marcar"
	assert.Equal(t, text, DefaultHighlighter.Highlight(text, nil))
	assert.Equal(t, text, DefaultHighlighter.Highlight(text, []string{"", "   "}))
}

func TestHighlightDoesNotMatchInsideTags(t *testing.T) {
	got := DefaultHighlighter.Highlight("<mark>x</mark> mark", []string{"mark"})
	assert.Equal(t, "<mark>x</mark> <mark>mark</mark>", got)
}

func TestHighlightCustomMarkers(t *testing.T) {
	h := Highlighter{Open: "[[", Close: "]]"}
	assert.Equal(t, "a [[b]] c [[B]]", h.Highlight("a b c B", []string{"b"}))
}
