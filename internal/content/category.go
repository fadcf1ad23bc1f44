// Package content classifies listings and writes the pitch email, cover
// letter and fit note for them, falling back to fixed templates whenever
// text generation is unavailable.
package content

import "strings"

// Job categories. CategoryGeneral is used when nothing matches.
const (
	CategoryContentModeration = "contentmoderation"
	CategoryRestaurant        = "restaurant"
	CategoryRetail            = "retail"
	CategoryIndustry          = "industry"
	CategoryHealthcare        = "healthcare"
	CategoryTech              = "tech"
	CategoryCustomerService   = "customerservice"
	CategoryReception         = "reception"
	CategoryArt               = "art"
	CategoryGeneral           = "general"
)

type categoryRule struct {
	name     string
	keywords []string
}

// categoryTable is checked in order; the first rule with a matching keyword wins.
var categoryTable = []categoryRule{
	{CategoryContentModeration, []string{"content moderation", "moderator", "innehållsmoderator", "trust & safety", "trust and safety", "community guidelines", "moderation", "content review", "policy"}},
	{CategoryRestaurant, []string{"servitör", "servitris", "restaurang", "kock", "köksbiträde", "café", "kafé", "barista", "pizzeria", "bar", "krog", "steakhouse", "hamburgare", "mat", "servering"}},
	{CategoryRetail, []string{"butik", "kassa", "försäljare", "butikssäljare", "ica", "coop", "willys", "lidl", "säljare", "butiksmedarbetare"}},
	{CategoryIndustry, []string{"industri", "lager", "fabrik", "produktion", "operatör", "montör", "trädgård", "park", "städ", "lokalvård", "fysiskt", "bygg"}},
	{CategoryHealthcare, []string{"vård", "omsorg", "äldreboende", "hemtjänst", "undersköterska", "vårdbiträde", "demens"}},
	{CategoryTech, []string{"it", "tech", "data", "analyst", "digital", "programmering", "utvecklare", "software"}},
	{CategoryCustomerService, []string{"kundtjänst", "customer service", "support", "helpdesk", "kundsupport", "kundservice"}},
	{CategoryReception, []string{"reception", "receptionist", "telefon", "administration", "kontor"}},
	{CategoryArt, []string{"konst", "konstnär", "galleri", "museum", "utställning", "kultur", "vikarie", "konstvikarie", "ateljé"}},
}

// Categories returns the category names in match order, followed by general.
func Categories() []string {
	out := make([]string, 0, len(categoryTable)+1)
	for _, rule := range categoryTable {
		out = append(out, rule.name)
	}
	return append(out, CategoryGeneral)
}

// DetectCategory classifies a listing by plain substring match against the
// lower-cased title and description.
func DetectCategory(title, description string) string {
	text := strings.ToLower(title + " " + description)
	for _, rule := range categoryTable {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.name
			}
		}
	}
	return CategoryGeneral
}
