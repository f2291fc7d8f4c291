package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/devicelab-dev/reportsections/pkg/dom"
	"github.com/devicelab-dev/reportsections/pkg/visibility"
)

// IndexVersion is the index schema version.
const IndexVersion = "1.0.0"

// Index is the machine-readable companion of a rendered report. It records
// which sections exist and whether each one starts visible.
type Index struct {
	Version     string       `json:"version"`
	Title       string       `json:"title"`
	Build       string       `json:"build,omitempty"`
	GeneratedAt time.Time    `json:"generatedAt"`
	Summary     Summary      `json:"summary"`
	Sections    []IndexEntry `json:"sections"`
}

// IndexEntry describes one section of the rendered page.
type IndexEntry struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Status  Status `json:"status"`
	Visible bool   `json:"visible"`
}

// BuildIndex reads the current visibility of every section from doc.
func BuildIndex(def *Definition, doc *dom.Document, title string) *Index {
	if title == "" {
		title = def.Title
	}
	if title == "" {
		title = "Build Report"
	}
	idx := &Index{
		Version:     IndexVersion,
		Title:       title,
		Build:       def.Build,
		GeneratedAt: time.Now(),
		Summary:     def.Summarize(),
		Sections:    make([]IndexEntry, 0, len(def.Sections)),
	}

	tg := visibility.New(doc.ByID())
	for _, sec := range def.Sections {
		idx.Sections = append(idx.Sections, IndexEntry{
			ID:      sec.ID,
			Title:   sec.Title,
			Status:  sec.StatusOrDefault(),
			Visible: tg.IsVisible(visibility.ElementID(sec.ID)),
		})
	}
	return idx
}

// WriteIndex writes idx as indented JSON.
func WriteIndex(path string, idx *Index) error {
	return atomicWriteJSON(path, idx)
}

// ReadIndex loads an index written by WriteIndex.
func ReadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parse index %s: %w", path, err)
	}
	return &idx, nil
}

// atomicWriteJSON writes through a temp file and rename so readers never
// see a partial file.
func atomicWriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
