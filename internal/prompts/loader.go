// Package prompts holds the LLM prompt templates. Each embedded JSON file maps
// a key to a template whose {{.Name}} placeholders are filled at render time.
package prompts

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"slices"
	"strings"
	"sync"
)

//go:embed *.json
var files embed.FS

// SuggestionsFile holds the bullet suggestion prompts.
const SuggestionsFile = "suggestions.json"

var (
	ErrUnknownFile = errors.New("unknown prompt file")
	ErrUnknownKey  = errors.New("unknown prompt key")
	ErrMissingData = errors.New("prompt placeholder has no value")
)

var placeholder = regexp.MustCompile(`\{\{\s*\.(\w+)\s*\}\}`)

// library is every embedded file, parsed on first use
var library = sync.OnceValues(func() (map[string]map[string]string, error) {
	names, err := fs.Glob(files, "*.json")
	if err != nil {
		return nil, err
	}
	lib := make(map[string]map[string]string, len(names))
	for _, name := range names {
		raw, err := files.ReadFile(name)
		if err != nil {
			return nil, err
		}
		var templates map[string]string
		if err := json.Unmarshal(raw, &templates); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		lib[name] = templates
	}
	return lib, nil
})

func file(name string) (map[string]string, error) {
	lib, err := library()
	if err != nil {
		return nil, err
	}
	templates, ok := lib[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFile, name)
	}
	return templates, nil
}

// Get returns the raw template stored under key in the named file.
func Get(name, key string) (string, error) {
	templates, err := file(name)
	if err != nil {
		return "", err
	}
	tmpl, ok := templates[key]
	if !ok {
		return "", fmt.Errorf("%w: %s in %s", ErrUnknownKey, key, name)
	}
	return tmpl, nil
}

// Keys lists the template keys in the named file, sorted.
func Keys(name string) ([]string, error) {
	templates, err := file(name)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(templates))
	for k := range templates {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

// Fields returns the placeholder names in tmpl in order of first use.
func Fields(tmpl string) []string {
	var names []string
	for _, m := range placeholder.FindAllStringSubmatch(tmpl, -1) {
		if !slices.Contains(names, m[1]) {
			names = append(names, m[1])
		}
	}
	return names
}

// Format substitutes data into tmpl. Placeholders without a value are left
// as written.
func Format(tmpl string, data map[string]string) string {
	return placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		if v, ok := data[name]; ok {
			return v
		}
		return m
	})
}

// Render looks up a template and fills it. Every placeholder must have an
// entry in data, even if the value is empty.
func Render(name, key string, data map[string]string) (string, error) {
	tmpl, err := Get(name, key)
	if err != nil {
		return "", err
	}
	var missing []string
	for _, f := range Fields(tmpl) {
		if _, ok := data[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %s.%s needs %s", ErrMissingData, name, key, strings.Join(missing, ", "))
	}
	return Format(tmpl, data), nil
}
