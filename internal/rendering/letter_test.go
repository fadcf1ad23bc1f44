package rendering

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLetter() Letter {
	return Letter{
		Sender: Sender{
			Name:  "Anna Lindqvist",
			Town:  "Sollentuna",
			Phone: "0700000000",
			Email: "anna@example.com",
		},
		Company: "Cafe Nord",
		Title:   "Barista",
		Body:    "Hej!\n\nJag soker tjansten som Barista hos Cafe Nord.\n\nMed vanlig halsning,\nAnna Lindqvist",
		Date:    time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}
}

func readPDF(t *testing.T, data []byte) (int, string) {
	t.Helper()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var text strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		s, err := page.GetPlainText(nil)
		require.NoError(t, err)
		text.WriteString(s)
	}
	return r.NumPage(), text.String()
}

func TestRenderLetter(t *testing.T) {
	data, err := RenderLetter(testLetter())
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	pages, text := readPDF(t, data)
	assert.Equal(t, 1, pages)
	for _, want := range []string{
		"Anna Lindqvist",
		"Sollentuna",
		"0700000000",
		"anna@example.com",
		"2025-03-10",
		"Cafe Nord",
		"Barista",
	} {
		assert.Contains(t, text, want)
	}
}

func TestRenderLetter_SwedishCharacters(t *testing.T) {
	l := testLetter()
	l.Body = "Jag söker tjänsten och är tillgänglig omgående. Vänliga hälsningar."

	data, err := RenderLetter(l)
	require.NoError(t, err)
	assert.Greater(t, len(data), 500)
}

func TestRenderLetter_BreaksPages(t *testing.T) {
	l := testLetter()
	l.Body = strings.Repeat("Jag har lång erfarenhet av service och kundkontakt i högt tempo.\n", 80)

	data, err := RenderLetter(l)
	require.NoError(t, err)

	pages, _ := readPDF(t, data)
	assert.GreaterOrEqual(t, pages, 2)
}

func TestRenderLetter_DefaultsDate(t *testing.T) {
	l := testLetter()
	l.Date = time.Time{}

	data, err := RenderLetter(l)
	require.NoError(t, err)

	_, text := readPDF(t, data)
	assert.Contains(t, text, time.Now().Format("2006-01-02"))
}

func TestWrapLines(t *testing.T) {
	width := func(s string) float64 { return float64(len(s)) }

	tests := []struct {
		name      string
		paragraph string
		maxWidth  float64
		want      []string
	}{
		{"fits", "en kort rad", 20, []string{"en kort rad"}},
		{"wraps", "ett tva tre fyra", 8, []string{"ett tva", "tre", "fyra"}},
		{"collapses spaces", "  a   b  ", 10, []string{"a b"}},
		{"long word alone", "kort jättelångtord x", 6, []string{"kort", "jättelångtord", "x"}},
		{"empty", "   ", 10, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WrapLines(tt.paragraph, tt.maxWidth, width))
		})
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Personligt_Brev_Anna_Lindqvist.pdf", FileName(" Anna Lindqvist "))
}

func TestError(t *testing.T) {
	cause := errors.New("boom")
	err := &Error{Message: "failed to write letter", Cause: cause}
	assert.Equal(t, "render error: failed to write letter: boom", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "render error: x", (&Error{Message: "x"}).Error())
}
