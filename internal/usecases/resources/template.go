package resources

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/yosida95/uritemplate/v3"

	"github.com/FreePeak/acceptance-mcp-server/internal/domain"
)

// placeholder is what one {name} captures: a non-empty run up to the next
// '/' or ','. Captures are kept exactly as they appear in the URI.
const placeholder = `([^/,]+)`

// Template is a parsed URI template such as "greeting://{name}". Literal text
// must match exactly and every placeholder must capture a non-empty value.
// Only simple {name} expressions are supported.
type Template struct {
	raw      string
	names    []string
	literals []string
	pattern  *regexp.Regexp
}

// ParseTemplate parses a URI template.
func ParseTemplate(raw string) (*Template, error) {
	if _, err := uritemplate.New(raw); err != nil {
		return nil, errors.Wrapf(err, "invalid URI template %q", raw)
	}

	literals, names, err := splitTemplate(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid URI template %q", raw)
	}

	var expr strings.Builder
	expr.WriteString("^")
	for i, literal := range literals {
		if i > 0 {
			expr.WriteString(placeholder)
		}
		expr.WriteString(regexp.QuoteMeta(literal))
	}
	expr.WriteString("$")

	return &Template{
		raw:      raw,
		names:    names,
		literals: literals,
		pattern:  regexp.MustCompile(expr.String()),
	}, nil
}

// splitTemplate returns the literal runs around each expression, so
// len(literals) == len(names)+1.
func splitTemplate(raw string) (literals, names []string, err error) {
	seen := make(map[string]struct{})
	rest := raw
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			literals = append(literals, rest)
			return literals, names, nil
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return nil, nil, errors.New("unterminated expression")
		}
		name := rest[open+1 : open+end]
		if !isSimpleName(name) {
			return nil, nil, errors.Errorf("unsupported expression {%s}", name)
		}
		if _, dup := seen[name]; dup {
			return nil, nil, errors.Errorf("variable %s declared twice", name)
		}
		seen[name] = struct{}{}

		literals = append(literals, rest[:open])
		names = append(names, name)
		rest = rest[open+end+1:]
	}
}

func isSimpleName(name string) bool {
	if name == "" {
		return false
	}
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		default:
			return false
		}
	}
	return true
}

// String returns the template text as registered.
func (t *Template) String() string {
	return t.raw
}

// Names returns the variable names in declaration order.
func (t *Template) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Listable reports whether the template can be enumerated without a concrete
// URI. Templates served here never are.
func (t *Template) Listable() bool {
	return false
}

// Match destructures uri against the template. Captured values are not
// percent-decoded.
func (t *Template) Match(uri string) (domain.ResolvedURI, bool) {
	groups := t.pattern.FindStringSubmatch(uri)
	if groups == nil {
		return domain.ResolvedURI{}, false
	}

	resolved := domain.ResolvedURI{
		URI:    uri,
		Names:  t.Names(),
		Values: make(map[string]string, len(t.names)),
	}
	for i, name := range t.names {
		resolved.Values[name] = groups[i+1]
	}
	return resolved, true
}

// Expand substitutes variables back into the template verbatim, so that
// expanding the values captured by Match reproduces the matched URI.
func (t *Template) Expand(vars map[string]string) (string, error) {
	var out strings.Builder
	for i, name := range t.names {
		value, ok := vars[name]
		if !ok || value == "" {
			return "", errors.Errorf("expanding URI template %q: missing value for %s", t.raw, name)
		}
		out.WriteString(t.literals[i])
		out.WriteString(value)
	}
	out.WriteString(t.literals[len(t.names)])
	return out.String(), nil
}
