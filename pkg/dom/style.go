package dom

import (
	"strings"

	"github.com/gorilla/css/scanner"
)

// Declaration is one property of an inline style attribute.
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

func (d Declaration) String() string {
	if d.Important {
		return d.Property + ": " + d.Value + " !important"
	}
	return d.Property + ": " + d.Value
}

// ParseStyle splits an inline style attribute into declarations, preserving
// order. Declarations without a colon or property name are dropped, as is a
// trailing declaration the tokenizer rejects.
func ParseStyle(style string) []Declaration {
	var (
		decls   []Declaration
		name    strings.Builder
		value   strings.Builder
		inValue bool
	)

	flush := func() {
		prop := strings.ToLower(strings.TrimSpace(name.String()))
		val := strings.TrimSpace(value.String())
		if prop != "" && inValue {
			val, important := splitImportant(val)
			decls = append(decls, Declaration{Property: prop, Value: val, Important: important})
		}
		name.Reset()
		value.Reset()
		inValue = false
	}

	s := scanner.New(style)
	for {
		tok := s.Next()
		switch tok.Type {
		case scanner.TokenEOF:
			flush()
			return decls
		case scanner.TokenError:
			return decls
		case scanner.TokenComment:
			continue
		case scanner.TokenChar:
			if tok.Value == ";" {
				flush()
				continue
			}
			if tok.Value == ":" && !inValue {
				inValue = true
				continue
			}
		}
		if inValue {
			value.WriteString(tok.Value)
		} else {
			name.WriteString(tok.Value)
		}
	}
}

// FormatStyle joins declarations back into an inline style attribute.
func FormatStyle(decls []Declaration) string {
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d.String()
	}
	return strings.Join(parts, "; ")
}

func splitImportant(val string) (string, bool) {
	i := strings.LastIndex(val, "!")
	if i < 0 {
		return val, false
	}
	if strings.ToLower(strings.TrimSpace(val[i+1:])) != "important" {
		return val, false
	}
	return strings.TrimSpace(val[:i]), true
}

// styleProperty returns the effective value of prop. A later declaration
// wins unless an earlier one is !important.
func styleProperty(decls []Declaration, prop string) string {
	var (
		val       string
		important bool
	)
	for _, d := range decls {
		if d.Property != prop {
			continue
		}
		if important && !d.Important {
			continue
		}
		val = d.Value
		important = d.Important
	}
	return val
}

// displayValue returns the effective display of an inline style. Display
// takes keywords, which CSS matches case-insensitively.
func displayValue(style string) string {
	return keyword(styleProperty(ParseStyle(style), "display"))
}

func keyword(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// setStyleProperty sets prop to val, or removes it when val is empty.
// Any !important priority on prop is cleared.
func setStyleProperty(decls []Declaration, prop, val string) []Declaration {
	out := make([]Declaration, 0, len(decls)+1)
	replaced := false
	for _, d := range decls {
		if d.Property != prop {
			out = append(out, d)
			continue
		}
		if val != "" && !replaced {
			out = append(out, Declaration{Property: prop, Value: val})
			replaced = true
		}
	}
	if val != "" && !replaced {
		out = append(out, Declaration{Property: prop, Value: val})
	}
	return out
}
