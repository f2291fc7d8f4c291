// Package report renders build and test results as a single HTML page with
// collapsible sections.
//
// A report is described by a Definition (YAML or JSON). Every section gets a
// clickable header wired to toggleElement('<id>') and a body element carrying
// that id, so the helper script embedded in the page can show and hide it.
package report

// Status represents the outcome shown for a section.
type Status string

// Status values.
const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
	StatusInfo    Status = "info"
)

// Definition describes a report.
type Definition struct {
	Title    string    `yaml:"title" json:"title"`
	Build    string    `yaml:"build,omitempty" json:"build,omitempty"`
	Sections []Section `yaml:"sections" json:"sections"`
}

// Section is one collapsible block of the report.
type Section struct {
	ID       string   `yaml:"id" json:"id"`                                 // Element id, used by toggleElement
	Title    string   `yaml:"title" json:"title"`                           // Header text
	Status   Status   `yaml:"status,omitempty" json:"status,omitempty"`     // Defaults to info
	Summary  string   `yaml:"summary,omitempty" json:"summary,omitempty"`   // One-line summary under the header
	Lines    []string `yaml:"lines,omitempty" json:"lines,omitempty"`       // e.g. failing tests, compiler errors
	Body     string   `yaml:"body,omitempty" json:"body,omitempty"`         // Preformatted text
	Duration *int64   `yaml:"duration,omitempty" json:"duration,omitempty"` // milliseconds
	// Collapsed overrides the default initial state. Failed and info
	// sections start expanded, the rest start collapsed.
	Collapsed *bool `yaml:"collapsed,omitempty" json:"collapsed,omitempty"`
}

// StatusOrDefault returns the section status, defaulting to info.
func (s Section) StatusOrDefault() Status {
	if s.Status == "" {
		return StatusInfo
	}
	return s.Status
}

// IsCollapsed reports whether the section starts hidden.
func (s Section) IsCollapsed() bool {
	if s.Collapsed != nil {
		return *s.Collapsed
	}
	switch s.StatusOrDefault() {
	case StatusPassed, StatusSkipped:
		return true
	default:
		return false
	}
}

// Summary contains aggregated section counts.
type Summary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// Summarize counts sections by status. Info sections only count toward Total.
func (d *Definition) Summarize() Summary {
	var s Summary
	for _, sec := range d.Sections {
		s.Total++
		switch sec.StatusOrDefault() {
		case StatusPassed:
			s.Passed++
		case StatusFailed:
			s.Failed++
		case StatusSkipped:
			s.Skipped++
		}
	}
	return s
}
