package mapping

import (
	"reflect"
	"sort"
)

// BindingFile represents the root of a YAML binding definition file.
// This is the authoritative, human-reviewed mapping configuration.
type BindingFile struct {
	// Version of the binding schema (for future compatibility).
	Version string `yaml:"version,omitempty"`

	// DefaultNamespace applies to unprefixed element steps.
	DefaultNamespace string `yaml:"default_namespace,omitempty"`

	// Namespaces maps prefixes to URIs. They are declared on every root element.
	Namespaces map[string]string `yaml:"namespaces,omitempty"`

	// Classes lists the bound Go types.
	Classes []ClassBinding `yaml:"classes"`
}

// ClassBinding binds one Go struct type to a document element.
type ClassBinding struct {
	// Type is the registered type name (e.g., "model.Document").
	Type string `yaml:"type"`

	// Root is the qualified name of the document element.
	Root string `yaml:"root"`

	// Mappings are the attribute bindings in document order.
	Mappings []AttributeBinding `yaml:"mappings"`
}

// AttributeBinding binds one struct field to a path in the document.
type AttributeBinding struct {
	// Attribute is the Go field name.
	Attribute string `yaml:"attribute"`

	// Kind selects the mapping node; inferred from the field type when empty.
	Kind Kind `yaml:"kind,omitempty"`

	// XPath locates the value, e.g. "ex:photo", "photo/@type", "caption/text()".
	XPath string `yaml:"xpath"`

	// Classification overrides the declared classification
	// (bytes, boxed-bytes, data-handler, string, ...).
	Classification string `yaml:"classification,omitempty"`

	// SchemaType is the XML Schema type of the text (base64Binary, hexBinary, dateTime, ...).
	SchemaType string `yaml:"schema_type,omitempty"`

	// SwaRef stores binary content as a SOAP attachment.
	SwaRef bool `yaml:"swaref,omitempty"`

	// Inline forces base64 text even when the marshaller can optimize with MTOM.
	Inline bool `yaml:"inline,omitempty"`

	// ReadOnly attributes are never written.
	ReadOnly bool `yaml:"read_only,omitempty"`

	// MimeType is a fixed MIME type for binary content.
	MimeType string `yaml:"mime_type,omitempty"`

	// MimeTypeAttribute names a string field of the same object holding the
	// MIME type, for per-object MIME types.
	MimeTypeAttribute string `yaml:"mime_type_attribute,omitempty"`

	// Converter names a registered converter.
	Converter string `yaml:"converter,omitempty"`

	// NullValue is the lexical value assigned when the document omits the attribute.
	NullValue *string `yaml:"null_value,omitempty"`
}

// Types maps binding type names to Go struct types.
type Types map[string]reflect.Type

// Add registers the type of sample under name. sample may be a value or a pointer.
func (t Types) Add(name string, sample any) Types {
	rt := reflect.TypeOf(sample)
	for rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}

	t[name] = rt

	return t
}

// Names returns the registered names, sorted.
func (t Types) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
