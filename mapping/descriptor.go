package mapping

import (
	"fmt"
	"reflect"

	"oxmapper/classification"
	"oxmapper/xpath"
)

// Kind selects the node that handles a mapped attribute.
type Kind string

const (
	// KindBinary maps a single binary value.
	KindBinary Kind = "binary"
	// KindBinaryCollection maps a slice of binary values to repeated elements.
	KindBinaryCollection Kind = "binary-list"
	// KindDirect maps a simple value to element text or an attribute.
	KindDirect Kind = "direct"
)

// IsValid returns true if the kind is recognized. The empty kind is valid
// and means "infer from the Go field type".
func (k Kind) IsValid() bool {
	return k == "" || k == KindBinary || k == KindBinaryCollection || k == KindDirect
}

// MimeTypePolicy yields the MIME type of a binary attribute.
type MimeTypePolicy interface {
	MimeType(owner any) string
}

// FixedMimeType is the same MIME type for every object.
type FixedMimeType string

// MimeType implements MimeTypePolicy.
func (m FixedMimeType) MimeType(any) string {
	return string(m)
}

// MimeTypeFunc computes the MIME type from the owning object.
type MimeTypeFunc func(owner any) string

// MimeType implements MimeTypePolicy.
func (f MimeTypeFunc) MimeType(owner any) string {
	return f(owner)
}

// Descriptor is the resolved metadata of one mapped attribute. Descriptors
// are built once per Project and shared by every marshal and unmarshal
// call; apart from SetConverter they must not be modified once the Project
// is in use.
type Descriptor struct {
	// Attribute is the Go field name.
	Attribute string
	// Kind selects the node implementation.
	Kind Kind
	// Classification is the declared runtime type of the value (of each
	// element for collections).
	Classification classification.Kind
	// Field is the XML path of the value.
	Field *xpath.Field

	// SwaRef stores the value as a SOAP attachment referenced by content id.
	SwaRef bool
	// InlineBinaryData forces base64 text even when MTOM is available.
	InlineBinaryData bool
	// ReadOnly attributes are read from documents but never written.
	ReadOnly bool
	// MimeType is the MIME type policy, nil when unset.
	MimeType MimeTypePolicy
	// NullValue is assigned when a document never mentions the attribute.
	NullValue any

	accessor      Accessor
	converter     *boundConverter
	converterName string
}

// NewDescriptor creates a descriptor for an attribute accessed through acc.
func NewDescriptor(attribute string, kind Kind, acc Accessor, field *xpath.Field) *Descriptor {
	return &Descriptor{
		Attribute: attribute,
		Kind:      kind,
		Field:     field,
		accessor:  acc,
	}
}

// Accessor returns the attribute accessor.
func (d *Descriptor) Accessor() Accessor {
	return d.accessor
}

// AttributeValue reads the attribute from obj.
func (d *Descriptor) AttributeValue(obj any) (any, error) {
	v, err := d.accessor.Get(obj)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", d.Attribute, err)
	}

	return v, nil
}

// SetAttributeValue writes the attribute on obj.
func (d *Descriptor) SetAttributeValue(obj any, value any) error {
	if err := d.accessor.Set(obj, value); err != nil {
		return fmt.Errorf("writing %s: %w", d.Attribute, err)
	}

	return nil
}

// AddAttributeValue appends one element to a collection attribute.
func (d *Descriptor) AddAttributeValue(obj any, element any) error {
	ca, ok := d.accessor.(CollectionAccessor)
	if !ok {
		return fmt.Errorf("writing %s: %w", d.Attribute, ErrNotCollection)
	}

	if err := ca.Append(obj, element); err != nil {
		return fmt.Errorf("writing %s: %w", d.Attribute, err)
	}

	return nil
}

// MimeTypeFor resolves the MIME type policy for owner, "" when unset.
func (d *Descriptor) MimeTypeFor(owner any) string {
	if d.MimeType == nil {
		return ""
	}

	return d.MimeType.MimeType(owner)
}

// SchemaType returns the schema type of the field.
func (d *Descriptor) SchemaType() xpath.SchemaType {
	if d.Field == nil {
		return ""
	}

	return d.Field.SchemaType
}

// SetConverter attaches or replaces the converter. The converter variant is
// chosen here rather than on every call.
func (d *Descriptor) SetConverter(c Converter) {
	d.converter = bindConverter(c)
}

// Converter returns the attached converter, or nil.
func (d *Descriptor) Converter() Converter {
	if d.converter == nil {
		return nil
	}

	return d.converter.conv
}

// ConverterName returns the binding-file name of the converter, if any.
func (d *Descriptor) ConverterName() string {
	return d.converterName
}

// ToDataValue applies the converter in the marshal direction.
func (d *Descriptor) ToDataValue(v any, s Session, m MarshalerInfo) (any, error) {
	if d.converter == nil {
		return v, nil
	}

	out, err := d.converter.toData(v, s, m)
	if err != nil {
		return nil, fmt.Errorf("converting %s: %w", d.Attribute, err)
	}

	return out, nil
}

// ToObjectValue applies the converter in the unmarshal direction.
func (d *Descriptor) ToObjectValue(v any, s Session, u UnmarshalerInfo) (any, error) {
	if d.converter == nil {
		return v, nil
	}

	out, err := d.converter.toObject(v, s, u)
	if err != nil {
		return nil, fmt.Errorf("converting %s: %w", d.Attribute, err)
	}

	return out, nil
}

// ClassDescriptor groups the attribute descriptors of one Go struct type.
type ClassDescriptor struct {
	// Name is the binding name, e.g. "model.Document".
	Name string
	// Type is the struct type (not a pointer).
	Type reflect.Type
	// Root is the document element for the class.
	Root xpath.Fragment
	// Namespaces are declared on the root element.
	Namespaces *xpath.NamespaceResolver
	// Mappings are in document order.
	Mappings []*Descriptor
}

// NewInstance returns a pointer to a new zero value of the class.
func (c *ClassDescriptor) NewInstance() any {
	return reflect.New(c.Type).Interface()
}

// Mapping returns the descriptor for attribute, or nil.
func (c *ClassDescriptor) Mapping(attribute string) *Descriptor {
	for _, d := range c.Mappings {
		if d.Attribute == attribute {
			return d
		}
	}

	return nil
}

// Project is the set of class descriptors of a binding context.
type Project struct {
	Classes []*ClassDescriptor

	byType map[reflect.Type]*ClassDescriptor
	byRoot map[rootKey]*ClassDescriptor
}

type rootKey struct {
	namespaceURI string
	localName    string
}

// NewProject indexes classes by Go type and root element.
func NewProject(classes ...*ClassDescriptor) (*Project, error) {
	p := &Project{
		byType: make(map[reflect.Type]*ClassDescriptor, len(classes)),
		byRoot: make(map[rootKey]*ClassDescriptor, len(classes)),
	}

	for _, c := range classes {
		if _, dup := p.byType[c.Type]; dup {
			return nil, fmt.Errorf("class %s bound twice", c.Name)
		}

		key := rootKey{c.Root.NamespaceURI, c.Root.LocalName}
		if other, dup := p.byRoot[key]; dup {
			return nil, fmt.Errorf("classes %s and %s share root element %s", other.Name, c.Name, c.Root.QualifiedName())
		}

		p.byType[c.Type] = c
		p.byRoot[key] = c
		p.Classes = append(p.Classes, c)
	}

	return p, nil
}

// ForType returns the class descriptor of t, accepting pointer types.
func (p *Project) ForType(t reflect.Type) (*ClassDescriptor, bool) {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	c, ok := p.byType[t]

	return c, ok
}

// ForRoot returns the class descriptor bound to a document element.
func (p *Project) ForRoot(namespaceURI, localName string) (*ClassDescriptor, bool) {
	c, ok := p.byRoot[rootKey{namespaceURI, localName}]

	return c, ok
}
