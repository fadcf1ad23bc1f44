package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/job-autopilot/internal/schemas"
	rootschemas "github.com/jonathan/job-autopilot/schemas"
)

// Profile is the candidate the letters are written for. It replaces any
// biography or contact details that would otherwise live in code.
type Profile struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required"`
	Town  string `json:"town" validate:"required"`

	// Biography is the free-text fact sheet embedded in letter prompts.
	Biography string `json:"biography" validate:"required"`
	// Sectors completes "Jag har bred erfarenhet från olika branscher - allt
	// från ..." in template letters.
	Sectors string `json:"sectors,omitempty"`
	// DrivingLicence is named next to the home town in template letters.
	DrivingLicence string `json:"driving_licence,omitempty"`
	// PitchMerits tells the model which merit to name per kind of job.
	PitchMerits string `json:"pitch_merits,omitempty"`

	// Experience maps a job category to its bullet-point blurb.
	Experience map[string]string `json:"experience" validate:"required,min=1,dive,required"`
	// CVFiles maps a job category to the résumé file attached for it.
	CVFiles map[string]string `json:"cv_files,omitempty" validate:"omitempty,dive,required"`

	Keywords        []string `json:"keywords,omitempty" validate:"omitempty,dive,required"`
	Locations       []string `json:"locations,omitempty" validate:"omitempty,dive,required"`
	ForbiddenTopics []string `json:"forbidden_topics,omitempty"`
}

// DefaultKeywords are the search terms used when the profile names none.
func DefaultKeywords() []string {
	return []string{
		"servitör",
		"servitris",
		"trädgård",
		"trädgårdsarbetare",
		"content moderator",
		"moderator svenska",
		"kundtjänst",
		"receptionist",
		"café",
		"barista",
	}
}

// DefaultLocations is the allow-list of place names used for searching and selection.
func DefaultLocations() []string {
	return []string{"Stockholm", "Sollentuna", "Vetlanda", "Nässjö", "Eksjö", "Holsbybrunn", "Småland", "Jönköping"}
}

// LoadProfile reads, schema-checks and validates a profile JSON file.
func LoadProfile(path string) (*Profile, error) {
	if path == "" {
		return nil, fmt.Errorf("profile path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file %s: %w", path, err)
	}

	return ParseProfile(data)
}

// ParseProfile decodes and validates profile JSON.
func ParseProfile(data []byte) (*Profile, error) {
	schema, err := rootschemas.Load(rootschemas.Profile)
	if err != nil {
		return nil, err
	}
	if err := schemas.ValidateJSONString(schema, string(data)); err != nil {
		return nil, fmt.Errorf("profile does not match schema: %w", err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile JSON: %w", err)
	}

	merged := p.MergeWithDefaults()
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// Validate checks that all required profile fields are present.
func (p *Profile) Validate() error {
	if err := validator.New().Struct(p); err != nil {
		return fmt.Errorf("profile error: %w", err)
	}
	return nil
}

// MergeWithDefaults returns a copy with empty search settings filled in.
func (p Profile) MergeWithDefaults() Profile {
	if len(p.Keywords) == 0 {
		p.Keywords = DefaultKeywords()
	}
	if len(p.Locations) == 0 {
		p.Locations = DefaultLocations()
	}
	if p.CVFiles == nil {
		p.CVFiles = map[string]string{}
	}
	return p
}
