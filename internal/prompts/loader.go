// Package prompts holds the Swedish LLM prompt templates for letters, pitches
// and contact lookups. Each embedded JSON file maps a prompt key to its text.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Prompt files.
const (
	Letters  = "letters.json"
	Research = "research.json"
)

//go:embed *.json
var promptFiles embed.FS

var placeholderRe = regexp.MustCompile(`\{\{\.(\w+)\}\}`)

var (
	loadOnce sync.Once
	sets     map[string]map[string]string
	loadErr  error
)

// load parses every embedded prompt file on first use.
func load() (map[string]map[string]string, error) {
	loadOnce.Do(func() {
		names, err := fs.Glob(promptFiles, "*.json")
		if err != nil {
			loadErr = fmt.Errorf("failed to list prompt files: %w", err)
			return
		}
		parsed := make(map[string]map[string]string, len(names))
		for _, name := range names {
			data, err := promptFiles.ReadFile(name)
			if err != nil {
				loadErr = fmt.Errorf("failed to read prompt file %s: %w", name, err)
				return
			}
			var set map[string]string
			if err := json.Unmarshal(data, &set); err != nil {
				loadErr = fmt.Errorf("failed to parse prompt file %s: %w", name, err)
				return
			}
			parsed[name] = set
		}
		sets = parsed
	})
	return sets, loadErr
}

// Get returns the prompt stored under key in file.
func Get(file, key string) (string, error) {
	all, err := load()
	if err != nil {
		return "", err
	}
	set, ok := all[file]
	if !ok {
		return "", fmt.Errorf("prompt file %s not found", file)
	}
	prompt, ok := set[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, file)
	}
	return prompt, nil
}

// MustGet is Get for prompts shipped with the binary; a miss panics.
func MustGet(file, key string) string {
	prompt, err := Get(file, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return prompt
}

// Render fills the prompt under key in file from data. Placeholders left
// without a value are logged and kept in the text.
func Render(file, key string, data map[string]string) string {
	prompt := Format(MustGet(file, key), data)
	if missing := Missing(prompt); len(missing) > 0 {
		log.Printf("[prompts] %s/%s rendered without %s", file, key, strings.Join(missing, ", "))
	}
	return prompt
}

// Format replaces {{.Key}} placeholders with values from data. Placeholders
// without a value are left in place.
func Format(template string, data map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(m string) string {
		if v, ok := data[placeholderRe.FindStringSubmatch(m)[1]]; ok {
			return v
		}
		return m
	})
}

// Missing returns the sorted, distinct placeholder names still in prompt.
func Missing(prompt string) []string {
	seen := map[string]bool{}
	var names []string
	for _, m := range placeholderRe.FindAllStringSubmatch(prompt, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	sort.Strings(names)
	return names
}

// Keys returns the prompt keys in file, sorted.
func Keys(file string) ([]string, error) {
	all, err := load()
	if err != nil {
		return nil, err
	}
	set, ok := all[file]
	if !ok {
		return nil, fmt.Errorf("prompt file %s not found", file)
	}
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}
