package content

import (
	"context"
	"log"
	"strings"

	"github.com/jonathan/job-autopilot/internal/config"
	"github.com/jonathan/job-autopilot/internal/db"
	"github.com/jonathan/job-autopilot/internal/llm"
	"github.com/jonathan/job-autopilot/internal/prompts"
	"github.com/jonathan/job-autopilot/internal/validation"
)

// Description lengths passed into prompts.
const (
	letterDescriptionRunes = 1500
	noteDescriptionRunes   = 1000
)

// Generator writes listing texts for one profile. A nil client means text
// generation is not configured and every call returns its template.
type Generator struct {
	client  llm.Client
	profile *config.Profile
}

// NewGenerator creates a generator. client may be nil.
func NewGenerator(client llm.Client, profile *config.Profile) *Generator {
	return &Generator{client: client, profile: profile}
}

// Enabled reports whether text generation is configured.
func (g *Generator) Enabled() bool {
	return g.client != nil
}

// Category returns the listing's job category.
func (g *Generator) Category(job *db.Job) string {
	return DetectCategory(job.Title, job.Description)
}

// Letter returns a cover letter for the listing. Generation failures are
// logged and answered with TemplateLetter.
func (g *Generator) Letter(ctx context.Context, job *db.Job) string {
	if g.client == nil {
		return TemplateLetter(job, g.profile)
	}

	prompt := prompts.Render(prompts.Letters, "cover-letter", g.promptData(job, letterDescriptionRunes))
	text, ok := g.generate(ctx, "letter", job, prompt, llm.TierAdvanced)
	if !ok {
		return TemplateLetter(job, g.profile)
	}
	return text
}

// Pitch returns the short email body. Its second sentence is LinkSentence.
func (g *Generator) Pitch(ctx context.Context, job *db.Job) string {
	if g.client == nil {
		return TemplatePitch(job, g.profile)
	}

	data := g.promptData(job, 0)
	data["LinkSentence"] = LinkSentence(job)
	data["Merits"] = g.profile.PitchMerits
	if strings.TrimSpace(g.profile.PitchMerits) == "" {
		data["Merits"] = prompts.MustGet(prompts.Letters, "default-merits")
	}

	prompt := prompts.Render(prompts.Letters, "pitch", data)
	text, ok := g.generate(ctx, "pitch", job, prompt, llm.TierStandard)
	if !ok {
		return TemplatePitch(job, g.profile)
	}
	return text
}

// WhyPerfect returns a one-sentence note on why the listing fits the profile.
func (g *Generator) WhyPerfect(ctx context.Context, job *db.Job) string {
	if g.client == nil {
		return WhyPerfectNoLLM
	}

	prompt := prompts.Render(prompts.Letters, "why-perfect", g.promptData(job, noteDescriptionRunes))
	text, ok := g.generate(ctx, "why-perfect", job, prompt, llm.TierLite)
	if !ok {
		return WhyPerfectFallback
	}
	return text
}

func (g *Generator) generate(ctx context.Context, kind string, job *db.Job, prompt string, tier llm.ModelTier) (string, bool) {
	text, err := g.client.GenerateContent(ctx, prompt, tier)
	if err != nil {
		log.Printf("[%s] generation failed for job %s, using template: %v", kind, job.ID, err)
		return "", false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		log.Printf("[%s] empty answer for job %s, using template", kind, job.ID)
		return "", false
	}
	if found := validation.CheckForbiddenTopics(text, g.profile.ForbiddenTopics); len(found) > 0 {
		log.Printf("[%s] answer for job %s mentions %q, using template", kind, job.ID, found[0])
		return "", false
	}
	return text, true
}

func (g *Generator) promptData(job *db.Job, descriptionRunes int) map[string]string {
	p := g.profile
	description := job.Description
	if descriptionRunes > 0 {
		if r := []rune(description); len(r) > descriptionRunes {
			description = string(r[:descriptionRunes])
		}
	}

	forbidden := ""
	if len(p.ForbiddenTopics) > 0 {
		forbidden = prompts.Render(prompts.Letters, "forbidden-rule", map[string]string{
			"Topics": joinSwedish(p.ForbiddenTopics),
		})
	}

	return map[string]string{
		"Title":         job.Title,
		"Company":       job.Company,
		"Location":      job.Location,
		"Description":   description,
		"URL":           job.PublicURL(),
		"Experience":    ExperienceFor(p, g.Category(job)),
		"Biography":     p.Biography,
		"Name":          p.Name,
		"Town":          p.Town,
		"Phone":         p.Phone,
		"Email":         p.Email,
		"ForbiddenRule": forbidden,
	}
}
