package dom

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/devicelab-dev/reportsections/pkg/visibility"
)

const testPage = `<!DOCTYPE html>
<html>
<head><title>Build 1234</title>
<script>function toggleElement(id) {}</script>
<script src="external.js"></script>
</head>
<body>
<h2 onclick="toggleElement('summary')">Summary</h2>
<div id="summary" data-section="true">ok</div>
<div id="errorsPanel" data-section="true" style="display: none; color: red">3 errors</div>
<div id="plain">no section</div>
<a name="anchorOnly">anchor</a>
<div id="it's" data-section="true">quoted</div>
<layer id="oldLayer" display="none">layer body</layer>
<ilayer name="inlineLayer">inline layer</ilayer>
<div id="shared">first</div>
<p name="shared">second</p>
</body>
</html>`

func parseTestPage(t *testing.T) *Document {
	t.Helper()
	doc, err := ParseString(testPage)
	if err != nil {
		t.Fatalf("ParseString() error: %v", err)
	}
	return doc
}

func TestByID(t *testing.T) {
	doc := parseTestPage(t)
	tg := visibility.New(doc.ByID())

	tests := []struct {
		id       visibility.ElementID
		expected bool
	}{
		{"summary", true},
		{"errorsPanel", false},
		{"plain", true},
		{"it's", true},
		{"anchorOnly", false}, // name is not an id
		{"doesNotExist", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			if got := tg.IsVisible(tt.id); got != tt.expected {
				t.Errorf("IsVisible(%q) = %v, want %v", tt.id, got, tt.expected)
			}
		})
	}

	if _, err := tg.State("anchorOnly"); err == nil {
		t.Error("expected not found for name-only element")
	}
}

func TestByID_HideShowRoundTrip(t *testing.T) {
	doc := parseTestPage(t)
	tg := visibility.New(doc.ByID())

	tg.Hide("summary")
	out := doc.String()
	if !strings.Contains(out, `<div id="summary" data-section="true" style="display: none">`) {
		t.Errorf("hidden summary not rendered:\n%s", out)
	}

	tg.Show("errorsPanel")
	out = doc.String()
	if !strings.Contains(out, `<div id="errorsPanel" data-section="true" style="color: red">`) {
		t.Errorf("errorsPanel should keep its other declarations:\n%s", out)
	}

	tg.Show("summary")
	out = doc.String()
	if !strings.Contains(out, `<div id="summary" data-section="true">`) {
		t.Errorf("style attribute should be removed when empty:\n%s", out)
	}
}

func TestDisplayKeywordCase(t *testing.T) {
	doc, err := ParseString(`<html><body>
<div id="q" style="DISPLAY: NONE; color: red">upper</div>
<layer name="old" display="None">layer</layer>
</body></html>`)
	if err != nil {
		t.Fatalf("ParseString() error: %v", err)
	}

	tg := visibility.New(doc.ByID())
	if tg.IsVisible("q") {
		t.Error("DISPLAY: NONE should be hidden")
	}

	// The first toggle must make it visible.
	tg.Toggle("q")
	if !tg.IsVisible("q") {
		t.Error("toggle should show the element")
	}
	if !strings.Contains(doc.String(), `<div id="q" style="color: red">`) {
		t.Errorf("display should be cleared:\n%s", doc.String())
	}

	if visibility.New(doc.Layers()).IsVisible("old") {
		t.Error(`layer with display="None" should be hidden`)
	}
}

func TestByID_ToggleTwice(t *testing.T) {
	doc := parseTestPage(t)
	tg := visibility.New(doc.ByID())
	before := doc.String()

	for _, id := range doc.Sections() {
		tg.Toggle(visibility.ElementID(id))
		tg.Toggle(visibility.ElementID(id))
	}

	for _, id := range []visibility.ElementID{"summary", "it's"} {
		if !tg.IsVisible(id) {
			t.Errorf("%s should be visible after two toggles", id)
		}
	}
	if tg.IsVisible("errorsPanel") {
		t.Error("errorsPanel should be hidden after two toggles")
	}
	// Formatting may be normalised, but nothing else should change.
	if !strings.Contains(before, "<title>Build 1234</title>") || !strings.Contains(doc.String(), "<title>Build 1234</title>") {
		t.Error("document head lost")
	}
}

func TestLayers(t *testing.T) {
	doc := parseTestPage(t)
	tg := visibility.New(doc.Layers())

	if tg.IsVisible("oldLayer") {
		t.Error("expected oldLayer to be hidden")
	}
	if !tg.IsVisible("inlineLayer") {
		t.Error("expected inlineLayer to be visible")
	}
	if _, err := tg.State("summary"); err == nil {
		t.Error("Layers should not resolve plain divs")
	}

	tg.Show("oldLayer")
	if strings.Contains(doc.String(), `display="none"`) {
		t.Error("display attribute should be removed by Show")
	}
	tg.Hide("inlineLayer")
	if !strings.Contains(doc.String(), `<ilayer name="inlineLayer" display="none">`) {
		t.Errorf("display attribute not set on ilayer:\n%s", doc.String())
	}
}

func TestAll(t *testing.T) {
	doc := parseTestPage(t)
	r := doc.All()

	if _, ok := r.Resolve("anchorOnly"); !ok {
		t.Error("All should resolve by name")
	}

	tg := visibility.New(r)
	tg.Hide("shared")
	out := doc.String()
	if !strings.Contains(out, `<div id="shared" style="display: none">first</div>`) {
		t.Errorf("first match in document order should be hidden:\n%s", out)
	}
	if !strings.Contains(out, `<p name="shared">second</p>`) {
		t.Errorf("second match should be untouched:\n%s", out)
	}
}

func TestLegacy_PrefersLayers(t *testing.T) {
	doc, err := ParseString(`<html><body>
<div id="panel" style="display: none">div</div>
<layer name="panel">layer</layer>
</body></html>`)
	if err != nil {
		t.Fatalf("ParseString() error: %v", err)
	}

	legacy := visibility.New(doc.Resolver(true))
	standard := visibility.New(doc.Resolver(false))

	if !legacy.IsVisible("panel") {
		t.Error("legacy lookup should find the layer first")
	}
	if standard.IsVisible("panel") {
		t.Error("standard lookup should find the hidden div")
	}
}

func TestSections(t *testing.T) {
	doc := parseTestPage(t)

	want := []string{"summary", "errorsPanel", "it's"}
	if diff := cmp.Diff(want, doc.Sections()); diff != "" {
		t.Errorf("Sections() mismatch (-want +got):\n%s", diff)
	}
}

func TestInlineScripts(t *testing.T) {
	doc := parseTestPage(t)

	scripts := doc.InlineScripts()
	if len(scripts) != 1 {
		t.Fatalf("expected 1 inline script, got %d", len(scripts))
	}
	if !strings.Contains(scripts[0], "function toggleElement") {
		t.Errorf("unexpected script: %q", scripts[0])
	}
}

func TestWriteFileAndParseFile(t *testing.T) {
	doc := parseTestPage(t)
	visibility.New(doc.ByID()).Hide("plain")

	path := filepath.Join(t.TempDir(), "report.html")
	if err := doc.WriteFile(path); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	reread, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error: %v", err)
	}
	if visibility.New(reread.ByID()).IsVisible("plain") {
		t.Error("hidden state lost after write and re-read")
	}
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "missing.html"))
	if !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestXPathLiteral(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"panel", "'panel'"},
		{"it's", `"it's"`},
		{`a'b"c`, `concat('a', "'", 'b"c')`},
	}

	for _, tt := range tests {
		if got := xpathLiteral(tt.input); got != tt.expected {
			t.Errorf("xpathLiteral(%q) = %s, want %s", tt.input, got, tt.expected)
		}
	}
}
