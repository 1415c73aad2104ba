package mapping

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// TagName is the struct tag key read by FromStruct.
const TagName = "oxm"

// RootField is the name of the struct field whose tag names the root element.
const RootField = "XMLName"

var ErrNoRoot = errors.New("struct has no tagged " + RootField + " field")

// Tag is a parsed `oxm` struct tag:
//
//	Photo []byte `oxm:"ex:photo,swaref,mime=image/png"`
//
// The first element is the path; a tag of "-" skips the field.
type Tag struct {
	XPath             string
	Kind              Kind
	SwaRef            bool
	Inline            bool
	ReadOnly          bool
	MimeType          string
	MimeTypeAttribute string
	SchemaType        string
	Classification    string
	Converter         string
	NullValue         *string
	Skip              bool
}

// ParseTag parses the value of an `oxm` struct tag.
func ParseTag(tag string) (Tag, error) {
	if tag == "-" {
		return Tag{Skip: true}, nil
	}

	parts := strings.Split(tag, ",")
	t := Tag{XPath: strings.TrimSpace(parts[0])}

	for _, opt := range parts[1:] {
		key, value, hasValue := strings.Cut(strings.TrimSpace(opt), "=")

		switch key {
		case "":
		case "binary":
			t.Kind = KindBinary
		case "list":
			t.Kind = KindBinaryCollection
		case "direct":
			t.Kind = KindDirect
		case "swaref":
			t.SwaRef = true
		case "inline":
			t.Inline = true
		case "readonly":
			t.ReadOnly = true
		case "mime":
			t.MimeType = value
		case "mimeattr":
			t.MimeTypeAttribute = value
		case "schema":
			t.SchemaType = value
		case "class":
			t.Classification = value
		case "converter":
			t.Converter = value
		case "null":
			if !hasValue {
				return Tag{}, fmt.Errorf("tag %q: null needs a value", tag)
			}

			v := value
			t.NullValue = &v
		default:
			return Tag{}, fmt.Errorf("tag %q: unknown option %q", tag, key)
		}
	}

	return t, nil
}

// Binding converts the tag into an attribute binding for the named field.
// Without a path the field name is used as the element name.
func (t Tag) Binding(attribute string) AttributeBinding {
	path := t.XPath
	if path == "" {
		path = attribute
	}

	return AttributeBinding{
		Attribute:         attribute,
		Kind:              t.Kind,
		XPath:             path,
		Classification:    t.Classification,
		SchemaType:        t.SchemaType,
		SwaRef:            t.SwaRef,
		Inline:            t.Inline,
		ReadOnly:          t.ReadOnly,
		MimeType:          t.MimeType,
		MimeTypeAttribute: t.MimeTypeAttribute,
		Converter:         t.Converter,
		NullValue:         t.NullValue,
	}
}

// FromStruct derives a class binding from the `oxm` tags of sample's type.
// Only tagged fields are mapped.
func FromStruct(name string, sample any) (ClassBinding, error) {
	rt := reflect.TypeOf(sample)
	for rt != nil && rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}

	if rt == nil || rt.Kind() != reflect.Struct {
		return ClassBinding{}, fmt.Errorf("%s: %w", name, ErrNotStruct)
	}

	cb := ClassBinding{Type: name}

	for i := range rt.NumField() {
		sf := rt.Field(i)

		raw, ok := sf.Tag.Lookup(TagName)
		if !ok || !sf.IsExported() {
			continue
		}

		if sf.Name == RootField {
			cb.Root = raw
			continue
		}

		tag, err := ParseTag(raw)
		if err != nil {
			return ClassBinding{}, fmt.Errorf("%s.%s: %w", name, sf.Name, err)
		}

		if tag.Skip {
			continue
		}

		cb.Mappings = append(cb.Mappings, tag.Binding(sf.Name))
	}

	if cb.Root == "" {
		return ClassBinding{}, fmt.Errorf("%s: %w", name, ErrNoRoot)
	}

	return cb, nil
}
