package content

import (
	"fmt"
	"strings"

	"github.com/jonathan/job-autopilot/internal/config"
	"github.com/jonathan/job-autopilot/internal/db"
)

// DefaultExperience is used when the profile has no blurb to offer.
const DefaultExperience = "kundservice och försäljning"

// Fit notes used when generation is not configured or fails.
const (
	WhyPerfectNoLLM    = "Matchar din profil och erfarenhet."
	WhyPerfectFallback = "Matchar din bakgrund inom service och kundkontakt."
)

// ExperienceFor returns the profile blurb for a category, falling back to
// the restaurant blurb and then to DefaultExperience.
func ExperienceFor(p *config.Profile, category string) string {
	if exp := strings.TrimSpace(p.Experience[category]); exp != "" {
		return exp
	}
	if exp := strings.TrimSpace(p.Experience[CategoryRestaurant]); exp != "" {
		return exp
	}
	return DefaultExperience
}

// firstExperience returns the first line of a blurb, bullet included.
func firstExperience(blurb string) string {
	line, _, _ := strings.Cut(blurb, "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return DefaultExperience
	}
	return line
}

// breadthSentence opens the experience paragraph of a template letter.
func breadthSentence(p *config.Profile) string {
	if sectors := strings.TrimSpace(p.Sectors); sectors != "" {
		return fmt.Sprintf("Jag har bred erfarenhet från olika branscher - allt från %s.", sectors)
	}
	return "Jag har bred erfarenhet från olika branscher."
}

// residenceSentence names the home town and, when set, the driving licence.
func residenceSentence(p *config.Profile) string {
	if licence := strings.TrimSpace(p.DrivingLicence); licence != "" {
		return fmt.Sprintf("Jag bor i %s, har %s och är flexibel med arbetstider.", p.Town, licence)
	}
	return fmt.Sprintf("Jag bor i %s och är flexibel med arbetstider.", p.Town)
}

// LinkSentence is the fixed second sentence of every pitch.
func LinkSentence(job *db.Job) string {
	return fmt.Sprintf("Jag hittade er annons på Platsbanken (%s) och är intresserad av tjänsten som %s.", job.PublicURL(), job.Title)
}

// TemplateLetter is the cover letter used when no text was generated.
func TemplateLetter(job *db.Job, p *config.Profile) string {
	exp := firstExperience(ExperienceFor(p, DetectCategory(job.Title, job.Description)))
	return fmt.Sprintf(`Hej!

Jag söker tjänsten som %s hos %s.

%s %s

%s Jag kan börja omgående.

Jag ser fram emot att höra från er.

Med vänlig hälsning,
%s
%s
%s`, job.Title, job.Company, breadthSentence(p), exp, residenceSentence(p), p.Name, p.Phone, p.Email)
}

// TemplatePitch is the email body used when no pitch was generated.
func TemplatePitch(job *db.Job, p *config.Profile) string {
	return fmt.Sprintf(`Hej %s!

%s

Jag har tidigare erfarenhet inom service och trivs i miljöer med högt tempo. Jag är flexibel med arbetstider och kan börja omgående.

Se bifogat CV och personligt brev.

Vänliga hälsningar,
%s
%s`, job.Company, LinkSentence(job), p.Name, p.Phone)
}

// FallbackBody is the email body used when a draft is filed without a pitch.
func FallbackBody(p *config.Profile) string {
	return fmt.Sprintf(`Hej!

Jag är intresserad av tjänsten och bifogar mitt CV och personligt brev.

Vänliga hälsningar,
%s
%s`, p.Name, p.Phone)
}

// joinSwedish joins items as "a, b eller c".
func joinSwedish(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " eller " + items[len(items)-1]
}
