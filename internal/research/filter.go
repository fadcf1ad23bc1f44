package research

import (
	"net/url"
	"sort"
	"strings"
)

// companyHostBoost is added to pages on a host that looks like the company's own.
const companyHostBoost = 0.3

// FilterLinksResult contains the results of link filtering.
type FilterLinksResult struct {
	Kept    []RankedURL  `json:"kept"`
	Skipped []SkippedURL `json:"skipped"`
}

// FilterLinks drops third-party and duplicate results and ranks the rest by
// how likely they are to list a recruiting address for company.
func FilterLinks(results []SearchResult, company string) *FilterLinksResult {
	out := &FilterLinksResult{}
	seen := make(map[string]bool)
	domain := CompanyDomain(company)

	for _, r := range results {
		link := strings.TrimSpace(r.Link)
		if link == "" || seen[link] {
			continue
		}
		seen[link] = true

		host := extractDomainFromURL(link)
		if host == "" {
			out.Skipped = append(out.Skipped, SkippedURL{URL: link, Reason: "invalid"})
			continue
		}
		if IsThirdParty(link) {
			out.Skipped = append(out.Skipped, SkippedURL{URL: link, Reason: "third-party"})
			continue
		}

		priority, kind := AssignPathPriority(link)
		if domain != "" && strings.Contains(strings.ReplaceAll(host, "-", ""), domain) {
			priority += companyHostBoost
		}
		if priority > 1 {
			priority = 1
		}
		out.Kept = append(out.Kept, RankedURL{URL: link, Priority: priority, Type: kind})
	}

	sort.SliceStable(out.Kept, func(i, j int) bool {
		return out.Kept[i].Priority > out.Kept[j].Priority
	})
	return out
}

// AssignPathPriority scores a URL by its path and names the page type.
func AssignPathPriority(urlStr string) (float64, string) {
	path := strings.ToLower(urlStr)
	if u, err := url.Parse(urlStr); err == nil && u.Host != "" {
		path = strings.ToLower(u.Path)
	}

	patterns := ContactPathPatterns()
	keys := make([]string, 0, len(patterns))
	for k := range patterns {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best, kind := 0.3, "other"
	for _, pattern := range keys {
		if score := patterns[pattern]; strings.Contains(path, pattern) && score > best {
			best = score
			kind = pageType(pattern)
		}
	}
	return best, kind
}

func pageType(pattern string) string {
	switch pattern {
	case "kontakt", "contact", "rekrytering":
		return "contact"
	case "om-oss", "about":
		return "about"
	default:
		return "careers"
	}
}

// IsThirdParty reports whether a URL belongs to a site that lists companies
// rather than one run by the company.
func IsThirdParty(urlStr string) bool {
	thirdPartyDomains := []string{
		"arbetsformedlingen.se",
		"platsbanken",
		"linkedin.com",
		"facebook.com",
		"instagram.com",
		"indeed.com",
		"glassdoor",
		"allabolag.se",
		"hitta.se",
		"eniro.se",
		"ratsit.se",
		"wikipedia.org",
	}

	urlLower := strings.ToLower(urlStr)
	for _, domain := range thirdPartyDomains {
		if strings.Contains(urlLower, domain) {
			return true
		}
	}
	return false
}

// extractDomainFromURL extracts the host from a URL without a leading "www.".
func extractDomainFromURL(urlStr string) string {
	if urlStr == "" {
		return ""
	}
	if !strings.Contains(urlStr, "://") {
		urlStr = "https://" + urlStr
	}
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
}
