// Package prompts holds the model prompt templates. Each JSON file maps a key to a
// template; the "system" key carries the system instruction for that family.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"regexp"
	"slices"
	"strings"
	"sync"
)

// Prompt files shipped with the binary
const (
	StructuringFile = "structuring.json"
	RewritingFile   = "rewriting.json"
	InterviewFile   = "interview.json"
)

// SystemKey is the key of the system instruction in every prompt file
const SystemKey = "system"

//go:embed *.json
var promptFiles embed.FS

var placeholder = regexp.MustCompile(`{{\.(\w+)}}`)

// library parses every embedded file once
var library = sync.OnceValues(func() (map[string]map[string]string, error) {
	names, err := fs.Glob(promptFiles, "*.json")
	if err != nil {
		return nil, err
	}

	lib := make(map[string]map[string]string, len(names))
	for _, name := range names {
		data, err := promptFiles.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt file %s: %w", name, err)
		}
		var entries map[string]string
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("failed to parse prompt file %s: %w", name, err)
		}
		lib[name] = entries
	}
	return lib, nil
})

// Get returns the raw template stored under key in filename
func Get(filename, key string) (string, error) {
	lib, err := library()
	if err != nil {
		return "", err
	}
	entries, ok := lib[filename]
	if !ok {
		return "", fmt.Errorf("unknown prompt file %s", filename)
	}
	template, ok := entries[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return template, nil
}

// Render fills every {{.Name}} placeholder of a template from data.
// A placeholder without a value is an error; extra data is ignored.
func Render(filename, key string, data map[string]string) (string, error) {
	template, err := Get(filename, key)
	if err != nil {
		return "", err
	}
	if missing := Placeholders(template, data); len(missing) > 0 {
		return "", fmt.Errorf("prompt %s/%s: no value for %s", filename, key, strings.Join(missing, ", "))
	}
	return Format(template, data), nil
}

// System returns the system instruction of a prompt file, or "" when the file has none
func System(filename string) string {
	prompt, err := Get(filename, SystemKey)
	if err != nil {
		return ""
	}
	return prompt
}

// Placeholders lists, in order of first use, the placeholders of template that data does not fill
func Placeholders(template string, data map[string]string) []string {
	var missing []string
	for _, m := range placeholder.FindAllStringSubmatch(template, -1) {
		name := m[1]
		if _, ok := data[name]; ok || slices.Contains(missing, name) {
			continue
		}
		missing = append(missing, name)
	}
	return missing
}

// Format substitutes placeholders in a single pass, so values are never re-expanded
func Format(template string, data map[string]string) string {
	pairs := make([]string, 0, len(data)*2)
	for key, value := range data {
		pairs = append(pairs, "{{."+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
