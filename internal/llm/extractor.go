// Package llm - extractor.go builds prompts that ask for a fixed JSON shape.
package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema defines the JSON object a prompt asks the model for.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "Contact")
	Description string        // Task description placed before the structure
	Fields      []SchemaField // Expected output fields
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint shown to the model
	Description string // Description for the model
	Required    bool   // Whether this field is required
}

// BuildExtractionPrompt constructs the prompt from schema and input text.
// Input may be empty when the description already carries everything.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	sb.WriteString(strings.TrimSpace(schema.Description))
	sb.WriteString("\n\n")

	sb.WriteString("Returnera ENDAST giltig JSON med exakt denna struktur:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "\"string\""
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (obligatorisk)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n")

	if inputText = strings.TrimSpace(inputText); inputText != "" {
		sb.WriteString("\nUnderlag:\n\"\"\"\n")
		sb.WriteString(inputText)
		sb.WriteString("\n\"\"\"\n")
	}

	return sb.String()
}

// ContactSchema returns the schema for a recruiting contact lookup.
// description is the task text, usually a formatted prompt template.
func ContactSchema(description string) ExtractionSchema {
	return ExtractionSchema{
		Name:        "Contact",
		Description: description,
		Fields: []SchemaField{
			{
				Name:        "contact_name",
				Type:        "\"string\" | null",
				Description: "Namn på rekryterare eller chef, null om okänt",
			},
			{
				Name:        "contact_email",
				Type:        "\"string\"",
				Description: "E-postadress för ansökan",
				Required:    true,
			},
			{
				Name:        "contact_title",
				Type:        "\"string\" | null",
				Description: "Titel, t.ex. HR-ansvarig eller restaurangchef",
			},
		},
	}
}
