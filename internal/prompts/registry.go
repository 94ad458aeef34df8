// Package prompts provides the prompt template store for the HR workflows.
// Default templates are stored as JSON and embedded at compile time; an
// override file can replace individual entries at startup.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed *.json
var promptFiles embed.FS

// DefaultFile is the embedded file holding the built-in templates.
const DefaultFile = "hr.json"

// Template keys, one per workflow stage.
const (
	KeyJDGenerate      = "jd-generate"
	KeyJDFocusPoints   = "jd-focus-points"
	KeyJDToJSON        = "jd-to-json"
	KeyGradeResume     = "grade-resume"
	KeyJDPolish        = "jd-polish"
	KeyJDExtractFields = "jd-extract-fields"
)

// jsonInputKeys are the templates whose placeholders sit inside JSON string
// literals. Their values are escaped on render, so candidate text stays data.
var jsonInputKeys = map[string]bool{
	KeyJDToJSON:        true,
	KeyGradeResume:     true,
	KeyJDExtractFields: true,
}

// JSONInput reports whether the template stored under key renders its
// bindings JSON-escaped.
func JSONInput(key string) bool {
	return jsonInputKeys[key]
}

// Registry is an immutable set of prompt templates keyed by name.
// It is safe for concurrent use.
type Registry struct {
	templates map[string]string
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultErr      error
)

// New creates a registry from the given templates. The map is copied.
func New(templates map[string]string) *Registry {
	copied := make(map[string]string, len(templates))
	for k, v := range templates {
		copied[k] = v
	}
	return &Registry{templates: copied}
}

// Default returns the registry built from the embedded templates.
// It panics if the embedded file is unreadable, which only happens on a broken build.
func Default() *Registry {
	defaultOnce.Do(func() {
		var templates map[string]string
		templates, defaultErr = readEmbedded(DefaultFile)
		if defaultErr == nil {
			defaultRegistry = New(templates)
		}
	})
	if defaultErr != nil {
		panic(fmt.Sprintf("failed to load embedded prompts: %v", defaultErr))
	}
	return defaultRegistry
}

// Load reads an override file (.json, .yaml or .yml) and merges it over the
// embedded defaults. An empty path returns the defaults.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", path, err)
	}

	var overrides map[string]string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &overrides)
	default:
		err = json.Unmarshal(data, &overrides)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", path, err)
	}

	return Default().Merge(overrides)
}

// Merge returns a new registry in which the given templates replace the
// existing entries. Keys the registry does not already know are rejected.
func (r *Registry) Merge(overrides map[string]string) (*Registry, error) {
	merged := New(r.templates)
	for key, tmpl := range overrides {
		if _, ok := r.templates[key]; !ok {
			return nil, fmt.Errorf("unknown prompt key %q", key)
		}
		if strings.TrimSpace(tmpl) == "" {
			return nil, fmt.Errorf("prompt %q is empty", key)
		}
		merged.templates[key] = tmpl
	}
	return merged, nil
}

// Get retrieves a template by key.
func (r *Registry) Get(key string) (string, error) {
	tmpl, ok := r.templates[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found", key)
	}
	return tmpl, nil
}

// MustGet retrieves a template by key, panicking if it is missing.
func (r *Registry) MustGet(key string) string {
	tmpl, err := r.Get(key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return tmpl
}

// Keys returns the registered keys in sorted order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.templates))
	for key := range r.templates {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func readEmbedded(filename string) (map[string]string, error) {
	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}

	var templates map[string]string
	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}
	return templates, nil
}

// Render renders the template stored under key. Templates for which
// JSONInput is true go through RenderJSONSafe, the others through Render.
// Overrides of those keys must keep their placeholders inside JSON strings.
func (r *Registry) Render(key string, bindings map[string]string) (string, error) {
	tmpl, err := r.Get(key)
	if err != nil {
		return "", err
	}
	if JSONInput(key) {
		return RenderJSONSafe(tmpl, bindings), nil
	}
	return Render(tmpl, bindings), nil
}
