package fetch

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

// ignoredEmailSuffixes filters matches that are really asset names or placeholders.
var ignoredEmailSuffixes = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", "@example.com", "@sentry.io"}

// ExtractEmails returns the distinct addresses on a page: mailto: links
// first, in document order, then addresses found in the visible text.
func ExtractEmails(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var out []string
	add := func(addr string) {
		addr = strings.ToLower(strings.Trim(addr, " .,;:<>()[]\"'"))
		if addr == "" || seen[addr] || !emailPattern.MatchString(addr) {
			return
		}
		for _, suffix := range ignoredEmailSuffixes {
			if strings.HasSuffix(addr, suffix) {
				return
			}
		}
		seen[addr] = true
		out = append(out, addr)
	}

	doc.Find(`a[href^="mailto:"], a[href^="MAILTO:"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		addr := href[len("mailto:"):]
		if i := strings.IndexByte(addr, '?'); i >= 0 {
			addr = addr[:i]
		}
		if decoded, err := url.PathUnescape(addr); err == nil {
			addr = decoded
		}
		add(addr)
	})

	doc.Find("script, style").Remove()
	for _, match := range emailPattern.FindAllString(doc.Text(), -1) {
		add(match)
	}
	return out
}

// PreferRecruitingEmail picks the address most likely to reach recruiting,
// falling back to the first one. It returns "" for an empty list.
func PreferRecruitingEmail(emails []string) string {
	for _, hint := range []string{"rekryt", "jobb", "career", "karriar", "hr@", "hr.", "jobs"} {
		for _, e := range emails {
			if strings.Contains(e, hint) {
				return e
			}
		}
	}
	if len(emails) > 0 {
		return emails[0]
	}
	return ""
}
