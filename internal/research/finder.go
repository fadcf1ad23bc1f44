package research

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/jonathan/job-autopilot/internal/fetch"
	"github.com/jonathan/job-autopilot/internal/llm"
	"github.com/jonathan/job-autopilot/internal/prompts"
	"github.com/jonathan/job-autopilot/internal/schemas"
	"github.com/jonathan/job-autopilot/internal/validation"
	rootschemas "github.com/jonathan/job-autopilot/schemas"
)

// Defaults for a contact lookup.
const (
	DefaultMaxPages   = 3
	searchResultCount = 8
	pageTextRunes     = 2000
)

// Searcher runs a web search.
type Searcher interface {
	Search(ctx context.Context, query string, num int) ([]SearchResult, error)
}

// PageFetcher downloads a page with its HTML and main text.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Result, error)
}

type webPages struct {
	opts       *fetch.Options
	useBrowser bool
}

func (w webPages) Fetch(ctx context.Context, url string) (*fetch.Result, error) {
	return fetch.Page(ctx, url, fetch.ContactPageSelectors(), w.opts, w.useBrowser)
}

// NewPageFetcher returns a fetcher that reads contact-page text and, when
// useBrowser is set, renders thin pages in a headless browser.
func NewPageFetcher(opts *fetch.Options, useBrowser bool) PageFetcher {
	if opts == nil {
		opts = fetch.DefaultOptions()
	}
	return webPages{opts: opts, useBrowser: useBrowser}
}

// Finder looks up a recruiting contact for a company. Both the searcher
// and the LLM client are optional; with neither it finds nothing.
type Finder struct {
	search   Searcher
	pages    PageFetcher
	client   llm.Client
	maxPages int
}

// NewFinder creates a finder. search and client may be nil.
func NewFinder(search Searcher, pages PageFetcher, client llm.Client) *Finder {
	if pages == nil {
		pages = NewPageFetcher(nil, false)
	}
	return &Finder{search: search, pages: pages, client: client, maxPages: DefaultMaxPages}
}

// Enabled reports whether the finder has any way to find a contact.
func (f *Finder) Enabled() bool {
	return f.search != nil || f.client != nil
}

// evidence is what was gathered from the company's own pages.
type evidence struct {
	emails []string
	text   []string
}

// FindContact returns the best contact for applying to title at company.
// Addresses found on the company's pages are handed to the LLM as evidence;
// when no LLM is configured or it fails, the most recruiting-like page
// address is used. It returns nil, nil when nothing was found.
func (f *Finder) FindContact(ctx context.Context, company, title string) (*Contact, error) {
	ev := f.gather(ctx, company)
	pageEmail := fetch.PreferRecruitingEmail(ev.emails)

	if f.client == nil {
		if pageEmail == "" {
			return nil, nil
		}
		return &Contact{Email: pageEmail, Source: SourcePage}, nil
	}

	contact, err := f.ask(ctx, company, title, ev)
	if err != nil {
		if pageEmail != "" {
			log.Printf("[contact] LLM lookup for %s failed, using page address: %v", company, err)
			return &Contact{Email: pageEmail, Source: SourcePage}, nil
		}
		return nil, fmt.Errorf("failed to find contact for %s: %w", company, err)
	}
	if contact.Email == "" && pageEmail != "" {
		contact.Email = pageEmail
		contact.Source = SourcePage
	}
	if contact.Email == "" && contact.Name == "" {
		return nil, nil
	}
	return contact, nil
}

// gather searches for the company's contact pages and extracts addresses
// and text from the highest ranked ones. Failures are logged and skipped.
func (f *Finder) gather(ctx context.Context, company string) evidence {
	var ev evidence
	if f.search == nil {
		return ev
	}

	query := prompts.Render(prompts.Research, "search-query", map[string]string{
		"Company": company,
	})
	results, err := f.search.Search(ctx, query, searchResultCount)
	if err != nil {
		log.Printf("[contact] search for %s failed: %v", company, err)
		return ev
	}

	filtered := FilterLinks(results, company)
	seen := make(map[string]bool)
	for i, ranked := range filtered.Kept {
		if i >= f.maxPages {
			break
		}
		page, err := f.pages.Fetch(ctx, ranked.URL)
		if err != nil {
			log.Printf("[contact] failed to fetch %s: %v", ranked.URL, err)
			continue
		}
		for _, e := range fetch.ExtractEmails(page.HTML) {
			if !seen[e] {
				seen[e] = true
				ev.emails = append(ev.emails, e)
			}
		}
		if text := strings.TrimSpace(page.Text); text != "" {
			ev.text = append(ev.text, truncate(text, pageTextRunes))
		}
	}
	log.Printf("[contact] %s: %d pages fetched, %d addresses found", company, min(len(filtered.Kept), f.maxPages), len(ev.emails))
	return ev
}

// contactResponse mirrors the JSON the model returns; fields may be null.
type contactResponse struct {
	Name  *string `json:"contact_name"`
	Email *string `json:"contact_email"`
	Title *string `json:"contact_title"`
}

func (f *Finder) ask(ctx context.Context, company, title string, ev evidence) (*Contact, error) {
	task := prompts.Render(prompts.Research, "find-contact", map[string]string{
		"Company": company,
		"Title":   title,
		"Domain":  CompanyDomain(company),
	})

	var input strings.Builder
	if len(ev.emails) > 0 {
		input.WriteString("E-postadresser på företagets sidor: ")
		input.WriteString(strings.Join(ev.emails, ", "))
		input.WriteString("\n\n")
	}
	if len(ev.text) > 0 {
		input.WriteString(validation.SanitizeExternal(strings.Join(ev.text, "\n\n"), "company pages", company))
	}

	prompt := llm.BuildExtractionPrompt(llm.ContactSchema(task), input.String())
	raw, err := f.client.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, fmt.Errorf("failed to generate contact: %w", err)
	}
	return ParseContact(raw)
}

// ParseContact validates the model's JSON answer and converts it.
func ParseContact(raw string) (*Contact, error) {
	raw = llm.CleanJSONBlock(raw)
	if err := schemas.ValidateJSONString(rootschemas.MustLoad(rootschemas.Contact), raw); err != nil {
		return nil, fmt.Errorf("invalid contact response: %w", err)
	}

	var resp contactResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse contact response: %w", err)
	}
	return &Contact{
		Name:   strings.TrimSpace(deref(resp.Name)),
		Email:  strings.ToLower(strings.TrimSpace(deref(resp.Email))),
		Title:  strings.TrimSpace(deref(resp.Title)),
		Source: SourceLLM,
	}, nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func truncate(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}
