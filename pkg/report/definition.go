package report

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/reportsections/pkg/visibility"
)

// LoadDefinition reads a report definition. JSON files are accepted as well,
// since JSON is valid YAML.
func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided definition file
	if err != nil {
		return nil, err
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse definition %s: %w", path, err)
	}

	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("invalid definition %s: %w", path, err)
	}

	return &def, nil
}

// Validate checks that every section has a unique, non-empty id and a known status.
func (d *Definition) Validate() error {
	seen := make(map[string]int, len(d.Sections))
	for i, sec := range d.Sections {
		if err := visibility.ElementID(sec.ID).Validate(); err != nil {
			return fmt.Errorf("section %d: %w", i, err)
		}
		if prev, ok := seen[sec.ID]; ok {
			return fmt.Errorf("section %d: duplicate id %q (also section %d)", i, sec.ID, prev)
		}
		seen[sec.ID] = i

		switch sec.StatusOrDefault() {
		case StatusPassed, StatusFailed, StatusSkipped, StatusInfo:
		default:
			return fmt.Errorf("section %q: unknown status %q", sec.ID, sec.Status)
		}
	}
	return nil
}
