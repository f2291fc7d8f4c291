package jsbridge

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/devicelab-dev/reportsections/pkg/dom"
	"github.com/devicelab-dev/reportsections/pkg/visibility"
)

const page = `<html><body>
<h2 onclick="toggleElement('panel1')">Panel</h2>
<div id="panel1" data-section="true">body</div>
<div id="errorsPanel" data-section="true" style="display: none">errors</div>
<layer name="legacyLayer" display="none">layer</layer>
<p name="named">named only</p>
</body></html>`

func newBound(t *testing.T, opts BindOptions) (*Engine, *dom.Document) {
	t.Helper()

	doc, err := dom.ParseString(page)
	if err != nil {
		t.Fatalf("parse page: %v", err)
	}

	engine := New()
	t.Cleanup(engine.Close)

	engine.BindDocument(doc, opts)
	if err := engine.LoadHelpers(); err != nil {
		t.Fatalf("LoadHelpers() error: %v", err)
	}
	return engine, doc
}

func TestNew(t *testing.T) {
	engine := New()
	defer engine.Close()

	if engine == nil {
		t.Fatal("expected engine to be created")
	}
	if engine.runtime == nil {
		t.Fatal("expected runtime to be initialized")
	}
}

func TestEval(t *testing.T) {
	engine := New()
	defer engine.Close()

	tests := []struct {
		name     string
		script   string
		expected interface{}
	}{
		{"simple number", "1 + 2", int64(3)},
		{"string concat", "'hello' + ' ' + 'world'", "hello world"},
		{"boolean", "true && false", false},
		{"object property", "({name: 'test'}).name", "test"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := engine.Eval(tt.script)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("expected %v (%T), got %v (%T)", tt.expected, tt.expected, result, result)
			}
		})
	}
}

func TestConsoleLog(t *testing.T) {
	engine := New()
	defer engine.Close()

	// Just make sure it doesn't panic
	err := engine.RunScript(`
		console.log("test message");
		console.error("error message");
		console.warn("warning message");
	`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClose(t *testing.T) {
	engine := New()
	engine.Close()
	engine.Close()

	if _, err := engine.Eval("1"); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed from Eval, got %v", err)
	}
	if err := engine.RunScript("1"); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed from RunScript, got %v", err)
	}
	if err := engine.Toggle("x"); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed from Toggle, got %v", err)
	}
}

func TestScriptIsVisible(t *testing.T) {
	engine, _ := newBound(t, BindOptions{})

	tests := []struct {
		id       string
		expected bool
	}{
		{"panel1", true},
		{"errorsPanel", false},
		{"doesNotExist", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := engine.IsVisible(tt.id)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("isVisible(%q) = %v, want %v", tt.id, got, tt.expected)
			}
		})
	}
}

func TestScriptHideShowWritesDocument(t *testing.T) {
	engine, doc := newBound(t, BindOptions{})
	tg := visibility.New(doc.ByID())

	if err := engine.Hide("panel1"); err != nil {
		t.Fatalf("Hide() error: %v", err)
	}
	if tg.IsVisible("panel1") {
		t.Error("document should see panel1 hidden after script hide")
	}

	if err := engine.Show("errorsPanel"); err != nil {
		t.Fatalf("Show() error: %v", err)
	}
	if !tg.IsVisible("errorsPanel") {
		t.Error("document should see errorsPanel shown after script show")
	}
	if !strings.Contains(doc.String(), `<div id="errorsPanel" data-section="true">errors</div>`) {
		t.Errorf("errorsPanel style should be cleared:\n%s", doc.String())
	}
}

func TestScriptToggleTwice(t *testing.T) {
	engine, _ := newBound(t, BindOptions{})

	for _, id := range []string{"panel1", "errorsPanel"} {
		before, _ := engine.IsVisible(id)
		if err := engine.Toggle(id); err != nil {
			t.Fatalf("Toggle() error: %v", err)
		}
		mid, _ := engine.IsVisible(id)
		if mid == before {
			t.Errorf("%s: single toggle did not invert visibility", id)
		}
		if err := engine.Toggle(id); err != nil {
			t.Fatalf("Toggle() error: %v", err)
		}
		after, _ := engine.IsVisible(id)
		if after != before {
			t.Errorf("%s: visibility after two toggles = %v, want %v", id, after, before)
		}
	}
}

func TestScriptMissingElementNoOp(t *testing.T) {
	engine, doc := newBound(t, BindOptions{})
	before := doc.String()

	for _, fn := range []func(string) error{engine.Show, engine.Hide, engine.Toggle} {
		if err := fn("doesNotExist"); err != nil {
			t.Errorf("expected no error for missing element, got %v", err)
		}
	}
	if doc.String() != before {
		t.Error("document changed by operations on a missing element")
	}
}

func TestScriptLegacySurfaces(t *testing.T) {
	engine, doc := newBound(t, BindOptions{Legacy: true})

	visible, err := engine.IsVisible("legacyLayer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if visible {
		t.Error("legacyLayer should be hidden through document.layers")
	}

	if err := engine.Toggle("legacyLayer"); err != nil {
		t.Fatalf("Toggle() error: %v", err)
	}
	if strings.Contains(doc.String(), `display="none"`) {
		t.Errorf("layer display attribute should be removed:\n%s", doc.String())
	}

	// document.all resolves by name as well as id.
	if err := engine.Hide("named"); err != nil {
		t.Fatalf("Hide() error: %v", err)
	}
	if !strings.Contains(doc.String(), `<p name="named" style="display: none">`) {
		t.Errorf("named element should be hidden via document.all:\n%s", doc.String())
	}

	has, err := engine.Eval(`'panel1' in document.all`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if has != true {
		t.Errorf("expected panel1 in document.all, got %v", has)
	}
}

func TestStandardBindingHasNoLegacySurfaces(t *testing.T) {
	engine, _ := newBound(t, BindOptions{})

	result, err := engine.Eval(`typeof document.layers + ',' + typeof document.all`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "undefined,undefined" {
		t.Errorf("got %q", result)
	}

	// name-only elements are not reachable through getElementById.
	visible, err := engine.IsVisible("named")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if visible {
		t.Error("name-only element should not resolve without document.all")
	}
}

func TestReplay(t *testing.T) {
	engine, doc := newBound(t, BindOptions{})
	tg := visibility.New(doc.ByID())

	results, err := engine.Replay([]string{
		"toggleElement('panel1')",
		"toggleElement('errorsPanel')",
		"hide('errorsPanel')",
		"isVisible('panel1')",
		"isVisible('errorsPanel') || isVisible('named')",
	})
	if err != nil {
		t.Fatalf("Replay() error: %v", err)
	}

	want := []interface{}{nil, nil, nil, false, false}
	if diff := cmp.Diff(want, results); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}

	if tg.IsVisible("panel1") {
		t.Error("panel1 should be hidden")
	}
	if tg.IsVisible("errorsPanel") {
		t.Error("errorsPanel should be hidden")
	}
}

func TestReplay_StopsAtError(t *testing.T) {
	engine, doc := newBound(t, BindOptions{})

	results, err := engine.Replay([]string{
		"hide('panel1')",
		"notAFunction('panel1')",
		"show('panel1')",
	})
	if err == nil {
		t.Fatal("expected error for undefined function")
	}
	if len(results) != 1 {
		t.Errorf("expected results of the handlers before the failure, got %v", results)
	}
	if !strings.Contains(err.Error(), "handler 1") {
		t.Errorf("error should name the failing handler: %v", err)
	}
	if visibility.New(doc.ByID()).IsVisible("panel1") {
		t.Error("handlers after the failure should not run")
	}
}

func TestCallUndefinedFunction(t *testing.T) {
	engine := New()
	defer engine.Close()

	if err := engine.Toggle("panel1"); err == nil {
		t.Error("expected error when helpers are not loaded")
	}
}

func TestDisplayAssignNullClears(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{"null", "document.getElementById('errorsPanel').style.display = null"},
		{"undefined", "document.getElementById('errorsPanel').style.display = undefined"},
		{"empty", "document.getElementById('errorsPanel').style.display = ''"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, doc := newBound(t, BindOptions{})

			if err := engine.RunScript(tt.script); err != nil {
				t.Fatalf("RunScript() error: %v", err)
			}
			s, ok := doc.ByID().Resolve("errorsPanel")
			if !ok {
				t.Fatal("errorsPanel not found")
			}
			if got := s.Display(); got != "" {
				t.Errorf("display = %q, want empty", got)
			}
			if strings.Contains(doc.String(), "null") {
				t.Errorf("null written into the document:\n%s", doc.String())
			}
		})
	}
}

func TestLoadMissingHelpers(t *testing.T) {
	engine := New()
	defer engine.Close()

	if err := engine.RunScript(`function hide(id) { return 'own'; }`); err != nil {
		t.Fatalf("RunScript() error: %v", err)
	}

	loaded, err := engine.LoadMissingHelpers()
	if err != nil {
		t.Fatalf("LoadMissingHelpers() error: %v", err)
	}
	if diff := cmp.Diff([]string{"toggleElement", "show", "isVisible"}, loaded); diff != "" {
		t.Errorf("loaded mismatch (-want +got):\n%s", diff)
	}

	got, err := engine.Eval("hide('x')")
	if err != nil {
		t.Fatalf("Eval() error: %v", err)
	}
	if got != "own" {
		t.Errorf("page hide() was replaced, got %v", got)
	}

	loaded, err = engine.LoadMissingHelpers()
	if err != nil {
		t.Fatalf("LoadMissingHelpers() error: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("expected nothing to load the second time, got %v", loaded)
	}
}
