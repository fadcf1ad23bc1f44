// Package observability formats pipeline results for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jonathan/job-autopilot/internal/db"
	"github.com/jonathan/job-autopilot/internal/ingestion"
	"github.com/jonathan/job-autopilot/internal/mail"
	"github.com/jonathan/job-autopilot/internal/selection"
)

const (
	// boxWidth is the outer width of printed boxes
	boxWidth = 64
	// descriptionRunes caps the description shown for a listing
	descriptionRunes = 300
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Width(18)

	urgentStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("9"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(boxWidth - 2)
)

// Printer writes boxed summaries to out.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, lines ...string) {
	body := titleStyle.Render(title) + "\n\n" + strings.Join(lines, "\n")
	fmt.Fprintln(p.out, boxStyle.Render(body))
}

func field(label, value string) string {
	return labelStyle.Render(label) + value
}

// PriorityLabel is the display name of a priority tag.
func PriorityLabel(priority string) string {
	switch priority {
	case db.PriorityUrgent:
		return urgentStyle.Render("AKUT")
	case db.PriorityStrategic:
		return "Strategisk"
	default:
		return priority
	}
}

// PrintJob outputs a listing.
func (p *Printer) PrintJob(job *db.Job) {
	if job == nil {
		fmt.Fprintln(p.out, "Inga fler jobb just nu. Kör scraping för att hämta nya!") //nolint:errcheck
		return
	}

	lines := []string{
		field("Företag:", job.Company),
		field("Ort:", job.Location),
		field("Prioritet:", PriorityLabel(job.Priority)),
	}
	if d := db.Value(job.Deadline); d != "" {
		lines = append(lines, field("Sista dag:", d))
	}
	if c := db.Value(job.ContactEmail); c != "" {
		lines = append(lines, field("Kontakt:", c))
	}
	lines = append(lines, field("Länk:", job.PublicURL()))
	if w := db.Value(job.WhyPerfect); w != "" {
		lines = append(lines, "", w)
	}
	if job.Description != "" {
		lines = append(lines, "", ingestion.TruncateRunes(job.Description, descriptionRunes))
	}
	p.printBox(job.Title, lines...)
}

// PrintStats outputs the dashboard counters.
func (p *Printer) PrintStats(stats *db.Stats) {
	if stats == nil {
		return
	}
	p.printBox("STATISTIK",
		field("Jobb totalt:", fmt.Sprint(stats.TotalJobs)),
		field("Väntande:", fmt.Sprint(stats.PendingJobs)),
		field("Ansökningar:", fmt.Sprint(stats.TotalApplications)),
		field("Skickade:", fmt.Sprint(stats.SentApplications)),
		field("Intervjuer:", fmt.Sprint(stats.Interviews)),
		field("Deadline idag:", fmt.Sprint(stats.DeadlineToday)),
	)
}

// PrintScrape outputs the outcome of a scrape.
func (p *Printer) PrintScrape(res *ingestion.Result) {
	if res == nil {
		return
	}
	lines := []string{
		field("Sparade:", fmt.Sprint(res.Stored)),
		field("Nya:", fmt.Sprint(res.New)),
		field("Misslyckade:", fmt.Sprint(res.Failed)),
	}
	for _, j := range res.NewUrgent {
		lines = append(lines, fmt.Sprintf("%s %s, %s", PriorityLabel(j.Priority), j.Title, j.Company))
	}
	p.printBox("SCRAPING KLAR", lines...)
}

// PrintEnrich outputs the outcome of a contact enrichment run.
func (p *Printer) PrintEnrich(res *selection.Result) {
	if res == nil {
		return
	}
	p.printBox("KONTAKTER",
		field("Kontrollerade:", fmt.Sprint(res.Checked)),
		field("Hittade:", fmt.Sprint(res.Found)),
	)
}

// PrintLinkCheck outputs the outcome of a link check.
func (p *Printer) PrintLinkCheck(checked, stale int) {
	p.printBox("LÄNKKONTROLL",
		field("Kontrollerade:", fmt.Sprint(checked)),
		field("Inaktuella:", fmt.Sprint(stale)),
	)
}

// PrintDraft outputs the outcome of filing a draft.
func (p *Printer) PrintDraft(res *mail.Result) {
	if res == nil {
		return
	}
	if !res.Success {
		msg := res.Message
		if res.Error != "" {
			msg = res.Error
		}
		p.printBox("UTKAST MISSLYCKADES", msg)
		return
	}
	p.printBox("UTKAST SKAPAT",
		field("Till:", res.ToEmail),
		field("Ämne:", res.Subject),
		field("Message-ID:", res.DraftID),
	)
}

// PrintLetter prints a generated letter as plain text so it can be copied.
func (p *Printer) PrintLetter(job *db.Job, letter string) {
	if job != nil {
		fmt.Fprintln(p.out, titleStyle.Render(fmt.Sprintf("%s, %s", job.Title, job.Company))) //nolint:errcheck
		fmt.Fprintln(p.out)                                                                     //nolint:errcheck
	}
	fmt.Fprintln(p.out, letter) //nolint:errcheck
}
