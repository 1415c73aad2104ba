package mapping

import (
	"fmt"
	"sort"

	"oxmapper/attachment"
	"oxmapper/conversion"
)

// Session is what converters may use from the owning binding context.
type Session interface {
	Conversions() *conversion.Registry
}

// MarshalerInfo exposes the active marshaller to XML-aware converters.
type MarshalerInfo interface {
	AttachmentMarshaller() attachment.Marshaller
	MediaType() string
}

// UnmarshalerInfo exposes the active unmarshaller to XML-aware converters.
type UnmarshalerInfo interface {
	AttachmentUnmarshaller() attachment.Unmarshaller
	MediaType() string
}

// Converter transforms attribute values between their object form and the
// data form written to a document.
type Converter interface {
	ToDataValue(objectValue any, s Session) (any, error)
	ToObjectValue(dataValue any, s Session) (any, error)
}

// XMLConverter is a Converter that also wants to see the marshaller or
// unmarshaller in use. Its XML variants are preferred when present.
type XMLConverter interface {
	Converter
	ToDataValueXML(objectValue any, s Session, m MarshalerInfo) (any, error)
	ToObjectValueXML(dataValue any, s Session, u UnmarshalerInfo) (any, error)
}

// ConverterFunc adapts two plain functions into a Converter.
type ConverterFunc struct {
	ToData   func(objectValue any) (any, error)
	ToObject func(dataValue any) (any, error)
}

// ToDataValue implements Converter.
func (f ConverterFunc) ToDataValue(v any, _ Session) (any, error) {
	if f.ToData == nil {
		return v, nil
	}

	return f.ToData(v)
}

// ToObjectValue implements Converter.
func (f ConverterFunc) ToObjectValue(v any, _ Session) (any, error) {
	if f.ToObject == nil {
		return v, nil
	}

	return f.ToObject(v)
}

// boundConverter has the converter variant picked once, when the converter
// is attached to a descriptor.
type boundConverter struct {
	conv     Converter
	toData   func(v any, s Session, m MarshalerInfo) (any, error)
	toObject func(v any, s Session, u UnmarshalerInfo) (any, error)
}

func bindConverter(c Converter) *boundConverter {
	if c == nil {
		return nil
	}

	if xc, ok := c.(XMLConverter); ok {
		return &boundConverter{conv: c, toData: xc.ToDataValueXML, toObject: xc.ToObjectValueXML}
	}

	return &boundConverter{
		conv: c,
		toData: func(v any, s Session, _ MarshalerInfo) (any, error) {
			return c.ToDataValue(v, s)
		},
		toObject: func(v any, s Session, _ UnmarshalerInfo) (any, error) {
			return c.ToObjectValue(v, s)
		},
	}
}

// Converters is a named set of converters referenced from binding files.
type Converters map[string]Converter

// Names returns the registered converter names, sorted.
func (c Converters) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Get returns the named converter.
func (c Converters) Get(name string) (Converter, error) {
	conv, ok := c[name]
	if !ok {
		return nil, fmt.Errorf("converter %q not registered", name)
	}

	return conv, nil
}
