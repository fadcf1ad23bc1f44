// Package rendering lays out the cover letter as an A4 PDF.
package rendering

import (
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

// Layout constants, in points.
const (
	cm            = 72.0 / 2.54
	Margin        = 2.5 * cm
	BottomLimit   = 3 * cm
	BodyFontSize  = 11
	LineHeight    = 16
	ParagraphSkip = 10
)

// Sender is the candidate block printed in the top right corner.
type Sender struct {
	Name  string
	Town  string
	Phone string
	Email string
}

// Letter is everything printed on the cover letter.
type Letter struct {
	Sender  Sender
	Company string
	Title   string
	Body    string
	Date    time.Time
}

// FileName returns the attachment name for the sender's letter.
func FileName(name string) string {
	return "Personligt_Brev_" + strings.ReplaceAll(strings.TrimSpace(name), " ", "_") + ".pdf"
}

// RenderLetter returns the letter as PDF bytes.
func RenderLetter(l Letter) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteLetter(&buf, l); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteLetter lays out the letter in Swedish business style: sender block
// right-aligned, then date, recipient, subject line and the word-wrapped
// body. A new page starts when the cursor passes the bottom limit.
func WriteLetter(w io.Writer, l Letter) error {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(Margin, Margin, Margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("job-autopilot", true)
	pdf.SetTitle("Ansökan: "+l.Title, true)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageW, pageH := pdf.GetPageSize()
	right := pageW - Margin
	y := Margin

	drawRight := func(s string) {
		s = tr(s)
		pdf.Text(right-pdf.GetStringWidth(s), y, s)
	}
	drawLeft := func(s string) {
		pdf.Text(Margin, y, tr(s))
	}

	pdf.SetFont("Helvetica", "B", 12)
	drawRight(l.Sender.Name)
	y += 16
	pdf.SetFont("Helvetica", "", 10)
	drawRight(l.Sender.Town)
	y += 14
	drawRight(l.Sender.Phone)
	y += 14
	drawRight(l.Sender.Email)
	y += 30

	date := l.Date
	if date.IsZero() {
		date = time.Now()
	}
	drawLeft(date.Format("2006-01-02"))
	y += 30

	pdf.SetFont("Helvetica", "B", 11)
	drawLeft(l.Company)
	y += 40

	pdf.SetFont("Helvetica", "B", 12)
	drawLeft("Ansökan: " + l.Title)
	y += 30

	pdf.SetFont("Helvetica", "", BodyFontSize)
	maxWidth := pageW - 2*Margin
	measure := func(s string) float64 { return pdf.GetStringWidth(tr(s)) }
	newPageIfNeeded := func() {
		if y > pageH-BottomLimit {
			pdf.AddPage()
			pdf.SetFont("Helvetica", "", BodyFontSize)
			y = Margin
		}
	}

	for _, paragraph := range strings.Split(l.Body, "\n") {
		if strings.TrimSpace(paragraph) == "" {
			y += ParagraphSkip
			newPageIfNeeded()
			continue
		}
		for _, line := range WrapLines(paragraph, maxWidth, measure) {
			drawLeft(line)
			y += LineHeight
			newPageIfNeeded()
		}
	}

	if err := pdf.Error(); err != nil {
		return &Error{Message: "failed to lay out letter", Cause: err}
	}
	if err := pdf.Output(w); err != nil {
		return &Error{Message: "failed to write letter", Cause: err}
	}
	return nil
}

// WrapLines splits a paragraph into lines narrower than maxWidth as
// measured by width. A single word wider than maxWidth gets its own line.
func WrapLines(paragraph string, maxWidth float64, width func(string) float64) []string {
	var lines []string
	line := ""
	for _, word := range strings.Fields(paragraph) {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if line == "" || width(candidate) < maxWidth {
			line = candidate
			continue
		}
		lines = append(lines, line)
		line = word
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}
