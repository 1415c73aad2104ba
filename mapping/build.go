package mapping

import (
	"errors"
	"fmt"
	"reflect"

	"oxmapper/classification"
	"oxmapper/conversion"
	"oxmapper/xpath"
)

// Build validates bf and resolves it into a Project. The returned error
// carries every validation error when the file is invalid.
func Build(bf *BindingFile, types Types, converters Converters) (*Project, error) {
	diags := Validate(bf, types, converters)
	if err := diags.Error(); err != nil {
		return nil, fmt.Errorf("invalid bindings: %w", err)
	}

	nr := newResolver(bf)
	reg := conversion.NewRegistry()
	classes := make([]*ClassDescriptor, 0, len(bf.Classes))

	for i := range bf.Classes {
		cd, err := buildClass(&bf.Classes[i], types[bf.Classes[i].Type], nr, reg, converters)
		if err != nil {
			return nil, err
		}

		classes = append(classes, cd)
	}

	return NewProject(classes...)
}

func buildClass(
	cb *ClassBinding,
	rt reflect.Type,
	nr *xpath.NamespaceResolver,
	reg *conversion.Registry,
	converters Converters,
) (*ClassDescriptor, error) {
	root, err := parseRoot(cb.Root, nr)
	if err != nil {
		return nil, fmt.Errorf("class %s: %w", cb.Type, err)
	}

	cd := &ClassDescriptor{
		Name:       cb.Type,
		Type:       rt,
		Root:       root,
		Namespaces: nr,
		Mappings:   make([]*Descriptor, 0, len(cb.Mappings)),
	}

	for i := range cb.Mappings {
		d, err := buildDescriptor(&cb.Mappings[i], rt, nr, reg, converters)
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", cb.Type, err)
		}

		cd.Mappings = append(cd.Mappings, d)
	}

	return cd, nil
}

func buildDescriptor(
	ab *AttributeBinding,
	rt reflect.Type,
	nr *xpath.NamespaceResolver,
	reg *conversion.Registry,
	converters Converters,
) (*Descriptor, error) {
	r, err := resolveAttribute(rt, ab)
	if err != nil {
		return nil, err
	}

	field, err := xpath.ParseField(ab.XPath, nr)
	if err != nil {
		return nil, fmt.Errorf("attribute %s: %w", ab.Attribute, err)
	}

	field.SchemaType = schemaTypeFor(ab, r.classification)

	acc, err := NewFieldAccessor(rt, ab.Attribute)
	if err != nil {
		return nil, err
	}

	d := NewDescriptor(ab.Attribute, r.kind, acc, field)
	d.Classification = r.classification
	d.SwaRef = ab.SwaRef
	d.InlineBinaryData = ab.Inline
	d.ReadOnly = ab.ReadOnly

	switch {
	case ab.MimeType != "":
		d.MimeType = FixedMimeType(ab.MimeType)
	case ab.MimeTypeAttribute != "":
		mimeAcc, err := NewFieldAccessor(rt, ab.MimeTypeAttribute)
		if err != nil {
			return nil, err
		}

		d.MimeType = mimeTypeFromField(mimeAcc)
	}

	if ab.Converter != "" {
		conv, err := converters.Get(ab.Converter)
		if err != nil {
			return nil, err
		}

		d.SetConverter(conv)
		d.converterName = ab.Converter
	}

	if ab.NullValue != nil {
		if d.NullValue, err = nullValue(reg, ab, r); err != nil {
			return nil, fmt.Errorf("attribute %s: %w", ab.Attribute, err)
		}
	}

	return d, nil
}

// mimeTypeFromField reads the MIME type from a string field of the owner.
func mimeTypeFromField(acc *FieldAccessor) MimeTypeFunc {
	return func(owner any) string {
		v, err := acc.Get(owner)
		if err != nil {
			return ""
		}

		s, _ := v.(string)

		return s
	}
}

func schemaTypeFor(ab *AttributeBinding, k classification.Kind) xpath.SchemaType {
	if ab.SchemaType != "" {
		return xpath.SchemaType(ab.SchemaType)
	}

	switch {
	case k.IsBinary():
		return xpath.SchemaBase64Binary
	case k == classification.KindTime:
		return xpath.SchemaDateTime
	default:
		return ""
	}
}

var errNullOnCollection = errors.New("null_value is not supported on collection mappings")

// nullValue parses the lexical null value of ab into a value assignable to
// the attribute. With a converter attached the text is kept as is and goes
// through the converter at unmarshal time.
func nullValue(reg *conversion.Registry, ab *AttributeBinding, r resolved) (any, error) {
	if r.kind == KindBinaryCollection {
		return nil, errNullOnCollection
	}

	if ab.Converter != "" {
		return *ab.NullValue, nil
	}

	v, err := reg.FromSchemaText(*ab.NullValue, schemaTypeFor(ab, r.classification), r.classification)
	if err != nil {
		return nil, err
	}

	return reg.ConvertTo(v, r.field.Type)
}
