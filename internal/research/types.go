// Package research finds a recruiting contact for a listing's company.
package research

import "strings"

// Contact is a person or mailbox to send an application to.
type Contact struct {
	Name  string `json:"contact_name,omitempty"`
	Email string `json:"contact_email"`
	Title string `json:"contact_title,omitempty"`
	// Source records how the contact was found: "page" or "llm".
	Source string `json:"source,omitempty"`
}

// Contact sources.
const (
	SourcePage = "page"
	SourceLLM  = "llm"
)

// SearchResult is one web search hit.
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// RankedURL is a URL with priority for fetch ordering.
type RankedURL struct {
	URL      string  `json:"url"`
	Priority float64 `json:"priority"` // 0.0-1.0, higher = more likely to list a contact
	Type     string  `json:"type"`     // contact, careers, about, other
}

// SkippedURL is a URL that was filtered out.
type SkippedURL struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// ContactPathPatterns maps URL path fragments to how likely the page is to
// carry a recruiting address.
func ContactPathPatterns() map[string]float64 {
	return map[string]float64{
		"rekrytering": 1.0,
		"kontakt":     0.9,
		"contact":     0.9,
		"lediga-jobb": 0.9,
		"karriar":     0.8,
		"karriär":     0.8,
		"career":      0.8,
		"jobb":        0.8,
		"jobs":        0.8,
		"om-oss":      0.6,
		"about":       0.5,
	}
}

// CompanyDomain guesses the company's bare domain label: the lower-cased
// name with spaces removed.
func CompanyDomain(company string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(company)), " ", "")
}
