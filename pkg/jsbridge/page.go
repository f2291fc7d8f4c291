package jsbridge

import (
	"fmt"
	"strings"

	"github.com/devicelab-dev/reportsections/pkg/dom"
	"github.com/devicelab-dev/reportsections/pkg/logger"
)

// ForDocument returns an engine bound to doc with the page's own inline
// scripts loaded. Helpers the scripts leave undefined, for example because
// the page loads them through <script src>, come from the embedded script.
func ForDocument(doc *dom.Document, opts BindOptions) (*Engine, error) {
	e := New()
	e.BindDocument(doc, opts)

	for i, src := range doc.InlineScripts() {
		if err := e.RunScript(src); err != nil {
			// Report scripts may touch browser APIs that are not bound here.
			logger.Warn("page script %d failed: %v", i, err)
		}
	}

	loaded, err := e.LoadMissingHelpers()
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("load helpers: %w", err)
	}
	if len(loaded) > 0 {
		logger.Debug("page does not define %s, using embedded helpers", strings.Join(loaded, ", "))
	}
	return e, nil
}
