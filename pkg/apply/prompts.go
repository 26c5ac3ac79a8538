package apply

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Prompt templates for the generation stages. They take the extracted
// analysis plus whatever source material is available; sections for missing
// material are omitted rather than left blank.

var tailorTmpl = template.Must(template.New("tailor").Parse(`You are tailoring a CV for a specific job posting.

## Job
Company: {{.Company}}
Title: {{.Title}}
{{- if .Skills}}
Skills wanted: {{.Skills}}
{{- end}}
{{- if .Requirements}}
Requirements: {{.Requirements}}
{{- end}}
{{- if .Summary}}
Summary: {{.Summary}}
{{- end}}

## Current CV
{{.CV}}
{{- if .History}}

## Career history
{{.History}}
{{- end}}

Rewrite the CV in Markdown, emphasizing experience relevant to this job.
Keep every claim truthful to the source material. Return only the CV.`))

var letterTmpl = template.Must(template.New("letter").Parse(`Write a one-page cover letter for this job.

## Job
Company: {{.Company}}
Title: {{.Title}}
{{- if .Summary}}
Summary: {{.Summary}}
{{- end}}
{{- if .Requirements}}
Requirements: {{.Requirements}}
{{- end}}
{{- if .Resume}}

## Tailored CV
{{.Resume}}
{{- end}}

Ground the letter in the job details{{if .Resume}} and the CV{{end}}.
Professional but not stiff. Return only the letter in Markdown.`))

type promptData struct {
	Company      string
	Title        string
	Skills       string
	Requirements string
	Summary      string
	CV           string
	History      string
	Resume       string
}

func promptDataFrom(analysis map[string]any) promptData {
	return promptData{
		Company:      field(analysis, "company"),
		Title:        field(analysis, "title"),
		Summary:      field(analysis, "summary"),
		Skills:       joinList(analysis["skills"]),
		Requirements: joinList(analysis["requirements"]),
	}
}

func tailorPrompt(analysis map[string]any, cv, history string) (string, error) {
	data := promptDataFrom(analysis)
	data.CV = cv
	data.History = history
	return renderPrompt(tailorTmpl, data)
}

func letterPrompt(analysis map[string]any, resume string) (string, error) {
	data := promptDataFrom(analysis)
	data.Resume = resume
	return renderPrompt(letterTmpl, data)
}

func renderPrompt(tmpl *template.Template, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute %s template: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

func joinList(val any) string {
	switch items := val.(type) {
	case []string:
		return strings.Join(items, ", ")
	case []any:
		parts := make([]string, 0, len(items))
		for _, it := range items {
			if s, ok := it.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}
