// Package xpath parses the structural paths that locate a mapped attribute
// inside an XML document, e.g. "ex:media/ex:photo", "photo/@type" or
// "caption/text()".
package xpath

import (
	"errors"
	"fmt"
	"strings"
)

// SchemaType is an XML Schema built-in type local name.
type SchemaType string

const (
	SchemaBase64Binary SchemaType = "base64Binary"
	SchemaHexBinary    SchemaType = "hexBinary"
	SchemaString       SchemaType = "string"
	SchemaBoolean      SchemaType = "boolean"
	SchemaInt          SchemaType = "int"
	SchemaLong         SchemaType = "long"
	SchemaDouble       SchemaType = "double"
	SchemaDateTime     SchemaType = "dateTime"
	SchemaDate         SchemaType = "date"
	SchemaTime         SchemaType = "time"
)

const textNode = "text()"

// Fragment is one step of a path.
type Fragment struct {
	Prefix       string
	LocalName    string
	NamespaceURI string
	Attribute    bool
	Text         bool
}

// QualifiedName returns prefix:local, or local when there is no prefix.
func (f Fragment) QualifiedName() string {
	if f.Prefix == "" {
		return f.LocalName
	}

	return f.Prefix + ":" + f.LocalName
}

// Matches reports whether the fragment names the given namespace and local name.
func (f Fragment) Matches(namespaceURI, localName string) bool {
	return f.LocalName == localName && f.NamespaceURI == namespaceURI
}

// String returns the fragment in path syntax.
func (f Fragment) String() string {
	switch {
	case f.Text:
		return textNode
	case f.Attribute:
		return "@" + f.QualifiedName()
	default:
		return f.QualifiedName()
	}
}

// Field is a parsed path plus the schema type of the value it holds.
type Field struct {
	Fragments  []Fragment
	SchemaType SchemaType
}

// ParseField parses path, resolving prefixes through nr. Unprefixed element
// steps take the default namespace of nr; unprefixed attributes have none.
func ParseField(path string, nr *NamespaceResolver) (*Field, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("empty path")
	}

	steps := strings.Split(path, "/")
	frags := make([]Fragment, 0, len(steps))

	for i, step := range steps {
		last := i == len(steps)-1

		if step == "" {
			return nil, fmt.Errorf("invalid path %q: empty step", path)
		}

		if step == textNode {
			if !last {
				return nil, fmt.Errorf("invalid path %q: text() must be the last step", path)
			}

			frags = append(frags, Fragment{Text: true})

			continue
		}

		frag := Fragment{}
		if strings.HasPrefix(step, "@") {
			if !last {
				return nil, fmt.Errorf("invalid path %q: attribute must be the last step", path)
			}

			frag.Attribute = true
			step = step[1:]
		}

		prefix, local, ok := strings.Cut(step, ":")
		if !ok {
			prefix, local = "", step
		}

		if !isValidName(local) || (prefix != "" && !isValidName(prefix)) {
			return nil, fmt.Errorf("invalid path %q: invalid name %q", path, step)
		}

		frag.Prefix = prefix
		frag.LocalName = local

		switch {
		case prefix != "":
			uri, found := nr.Resolve(prefix)
			if !found {
				return nil, fmt.Errorf("invalid path %q: undeclared prefix %q", path, prefix)
			}

			frag.NamespaceURI = uri
		case !frag.Attribute:
			frag.NamespaceURI, _ = nr.Resolve("")
		}

		frags = append(frags, frag)
	}

	return &Field{Fragments: frags}, nil
}

// String returns the path in its textual form.
func (f *Field) String() string {
	parts := make([]string, len(f.Fragments))
	for i, frag := range f.Fragments {
		parts[i] = frag.String()
	}

	return strings.Join(parts, "/")
}

// LastFragment returns the final step of the path.
func (f *Field) LastFragment() Fragment {
	return f.Fragments[len(f.Fragments)-1]
}

// IsAttribute reports whether the value lives in an attribute.
func (f *Field) IsAttribute() bool {
	return f.LastFragment().Attribute
}

// ElementFragments returns the element steps, dropping a trailing attribute
// or text() step. The last element returned is the owning element.
func (f *Field) ElementFragments() []Fragment {
	out := make([]Fragment, 0, len(f.Fragments))
	for _, frag := range f.Fragments {
		if frag.Attribute || frag.Text {
			continue
		}

		out = append(out, frag)
	}

	return out
}

func isValidName(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		switch {
		case r == '_' || isLetter(r):
		case i > 0 && (isDigit(r) || r == '-' || r == '.'):
		default:
			return false
		}
	}

	return true
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
