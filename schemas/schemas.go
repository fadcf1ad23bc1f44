// Package schemas embeds the JSON Schemas used to validate structured data
// such as the candidate profile and LLM contact lookups.
package schemas

import (
	"embed"
	"fmt"
)

// Schema file names.
const (
	Profile = "profile.schema.json"
	Contact = "contact.schema.json"
)

//go:embed *.schema.json
var files embed.FS

// Load returns the content of an embedded schema file.
func Load(name string) (string, error) {
	data, err := files.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("failed to read schema %s: %w", name, err)
	}
	return string(data), nil
}

// MustLoad is like Load but panics when the schema is missing.
func MustLoad(name string) string {
	s, err := Load(name)
	if err != nil {
		panic(err)
	}
	return s
}
