// Package schema defines the extraction schema for job postings: which
// fields the analysis stage asks the model for, which are required, and how
// extracted records are validated before they are persisted.
package schema

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Field is one extraction target.
type Field struct {
	ID       string `yaml:"id"`
	Label    string `yaml:"label"`
	Hint     string `yaml:"hint,omitempty"`
	Required bool   `yaml:"required,omitempty"`
	List     bool   `yaml:"list,omitempty"`
}

// Schema is the parsed extraction schema.
type Schema struct {
	Name   string  `yaml:"name"`
	Fields []Field `yaml:"fields"`
}

// Load parses a schema YAML file. An empty path loads the embedded default.
func Load(path string) (*Schema, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	if len(s.Fields) == 0 {
		return nil, fmt.Errorf("schema %s declares no fields", path)
	}
	return &s, nil
}

// GeneratePromptParts returns the extraction prompt split into a stable
// system part (cacheable by providers with prompt caching) and the per-job
// user part.
func (s *Schema) GeneratePromptParts(url, jobText string) (system, user string) {
	var sb strings.Builder
	sb.WriteString("Extract job posting info. Return ONLY valid JSON with these exact keys:\n")
	for _, f := range s.Fields {
		hint := f.Hint
		if hint == "" {
			hint = f.Label
		}
		switch {
		case f.List:
			fmt.Fprintf(&sb, "- %s: JSON array of strings; %s\n", f.ID, hint)
		case f.Required:
			fmt.Fprintf(&sb, "- %s: %s\n", f.ID, hint)
		default:
			fmt.Fprintf(&sb, "- %s: %s or null if not found\n", f.ID, hint)
		}
	}
	user = fmt.Sprintf("Job URL: %s\n\nJob posting:\n%s", url, jobText)
	return sb.String(), user
}

// GeneratePrompt returns the extraction prompt as a single string, for
// clients without a system/user split.
func (s *Schema) GeneratePrompt(url, jobText string) string {
	system, user := s.GeneratePromptParts(url, jobText)
	return system + "\n" + user
}

// ValidateRecord checks an extracted record against the schema: required
// fields must be present and non-empty, list fields must be arrays.
func (s *Schema) ValidateRecord(data map[string]any) error {
	for _, f := range s.Fields {
		val, ok := data[f.ID]
		if !ok || val == nil {
			if f.Required {
				return fmt.Errorf("missing required field %q", f.ID)
			}
			continue
		}
		if f.List {
			switch val.(type) {
			case []any, []string:
			default:
				return fmt.Errorf("field %q must be a list", f.ID)
			}
			continue
		}
		if str, isStr := val.(string); isStr && f.Required && strings.TrimSpace(str) == "" {
			return fmt.Errorf("required field %q is empty", f.ID)
		}
	}
	return nil
}

// Title derives a display title from an extracted record.
func (s *Schema) Title(data map[string]any) string {
	title, _ := data["title"].(string)
	company, _ := data["company"].(string)
	switch {
	case title != "" && company != "":
		return fmt.Sprintf("%s @ %s", title, company)
	case title != "":
		return title
	case company != "":
		return company
	default:
		return "Job Application"
	}
}
