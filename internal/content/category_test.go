package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectCategory(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		description string
		want        string
	}{
		{"barista", "Barista", "", CategoryRestaurant},
		{"waiter in description", "Extrapersonal", "Vi söker servitriser till helgen", CategoryRestaurant},
		{"retail", "Butiksmedarbetare", "", CategoryRetail},
		{"warehouse", "Lagerarbetare", "", CategoryIndustry},
		{"elder care", "Undersköterska", "", CategoryHealthcare},
		{"helpdesk", "Helpdesk", "", CategoryCustomerService},
		{"receptionist", "Receptionist", "", CategoryReception},
		{"moderator wins over later rules", "Moderator", "Restaurang och kundtjänst", CategoryContentModeration},
		{"restaurant wins over retail", "Kassa", "Café vid torget", CategoryRestaurant},
		{"case insensitive", "BARISTA", "", CategoryRestaurant},
		{"nothing matches", "Lokförare", "", CategoryGeneral},
		{"empty", "", "", CategoryGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectCategory(tt.title, tt.description))
		})
	}
}

func TestDetectCategory_Deterministic(t *testing.T) {
	first := DetectCategory("Servitör", "Restaurang i butik med lager")
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, DetectCategory("Servitör", "Restaurang i butik med lager"))
	}
}

func TestCategories(t *testing.T) {
	assert.Equal(t, []string{
		"contentmoderation", "restaurant", "retail", "industry", "healthcare",
		"tech", "customerservice", "reception", "art", "general",
	}, Categories())
}
