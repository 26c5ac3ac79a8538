package schema

// Default returns the built-in extraction schema used when the project does
// not ship its own.
func Default() *Schema {
	return &Schema{
		Name: "Job posting",
		Fields: []Field{
			{ID: "company", Label: "Company name", Required: true},
			{ID: "title", Label: "Job title", Required: true},
			{ID: "location", Label: "Location", Hint: "city and country, or Remote"},
			{ID: "employment_type", Label: "Employment type", Hint: "full-time, part-time, contract"},
			{ID: "skills", Label: "Skills", Hint: "technical skills named in the posting", List: true},
			{ID: "requirements", Label: "Requirements", Hint: "must-have qualifications", List: true},
			{ID: "salary", Label: "Salary range"},
			{ID: "deadline", Label: "Application deadline", Hint: "YYYY-MM-DD"},
			{ID: "summary", Label: "Summary", Hint: "two or three sentences describing the role", Required: true},
		},
	}
}

// DefaultYAML renders the default schema for `jobpilot init`.
func DefaultYAML() []byte {
	return []byte(`name: Job posting
fields:
  - id: company
    label: Company name
    required: true
  - id: title
    label: Job title
    required: true
  - id: location
    label: Location
    hint: city and country, or Remote
  - id: employment_type
    label: Employment type
    hint: full-time, part-time, contract
  - id: skills
    label: Skills
    hint: technical skills named in the posting
    list: true
  - id: requirements
    label: Requirements
    hint: must-have qualifications
    list: true
  - id: salary
    label: Salary range
  - id: deadline
    label: Application deadline
    hint: YYYY-MM-DD
  - id: summary
    label: Summary
    hint: two or three sentences describing the role
    required: true
`)
}
