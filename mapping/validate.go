package mapping

import (
	"fmt"
	"reflect"

	"oxmapper/classification"
	"oxmapper/conversion"
	"oxmapper/internal/diagnostic"
	"oxmapper/xpath"
)

// Validate checks a binding file against the registered Go types and
// converters. It collects every problem instead of stopping at the first.
func Validate(bf *BindingFile, types Types, converters Converters) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if bf == nil {
		res.AddError("binding_is_nil", "binding file is nil", "", "")
		return res
	}

	nr := newResolver(bf)
	roots := map[string]string{}
	seenTypes := map[string]struct{}{}

	for i := range bf.Classes {
		cb := &bf.Classes[i]

		rt, ok := types[cb.Type]
		if !ok {
			res.AddError("unknown_type", fmt.Sprintf("type %q is not registered", cb.Type), cb.Type, "")
			continue
		}

		if _, dup := seenTypes[cb.Type]; dup {
			res.AddError("duplicate_type", fmt.Sprintf("type %q bound twice", cb.Type), cb.Type, "")
			continue
		}

		seenTypes[cb.Type] = struct{}{}

		root, err := parseRoot(cb.Root, nr)
		if err != nil {
			res.AddError("invalid_root", err.Error(), cb.Type, "")
		} else {
			key := root.NamespaceURI + " " + root.LocalName
			if other, dup := roots[key]; dup {
				res.AddError("duplicate_root", fmt.Sprintf("root %q already bound to %s", cb.Root, other), cb.Type, "")
			}

			roots[key] = cb.Type
		}

		validateClass(res, cb, rt, nr, converters)
	}

	return res
}

func validateClass(
	res *diagnostic.Diagnostics,
	cb *ClassBinding,
	rt reflect.Type,
	nr *xpath.NamespaceResolver,
	converters Converters,
) {
	seen := map[string]struct{}{}

	for i := range cb.Mappings {
		ab := &cb.Mappings[i]

		if _, dup := seen[ab.Attribute]; dup {
			res.AddError("duplicate_attribute", fmt.Sprintf("attribute %q mapped twice", ab.Attribute), cb.Type, ab.Attribute)
			continue
		}

		seen[ab.Attribute] = struct{}{}

		if !ab.Kind.IsValid() {
			res.AddError("invalid_kind", fmt.Sprintf("unknown mapping kind %q", ab.Kind), cb.Type, ab.Attribute)
			continue
		}

		r, err := resolveAttribute(rt, ab)
		if err != nil {
			res.AddError("unknown_attribute", err.Error(), cb.Type, ab.Attribute)
			continue
		}

		field, err := xpath.ParseField(ab.XPath, nr)
		if err != nil {
			res.AddError("invalid_xpath", err.Error(), cb.Type, ab.Attribute)
			continue
		}

		validateAttribute(res, cb.Type, ab, r, field, rt, converters)
	}
}

func validateAttribute(
	res *diagnostic.Diagnostics,
	class string,
	ab *AttributeBinding,
	r resolved,
	field *xpath.Field,
	rt reflect.Type,
	converters Converters,
) {
	binary := r.kind == KindBinary || r.kind == KindBinaryCollection

	if binary && !r.classification.IsBinary() && ab.Converter == "" && r.classification != classification.KindAny {
		res.AddError("not_binary",
			fmt.Sprintf("field type %v cannot hold binary data", r.field.Type), class, ab.Attribute)
	}

	if ab.SwaRef && ab.Inline {
		res.AddError("swaref_inline_conflict", "swaref and inline are mutually exclusive", class, ab.Attribute)
	}

	if !binary && (ab.SwaRef || ab.Inline || ab.MimeType != "" || ab.MimeTypeAttribute != "") {
		res.AddWarning("binary_options_ignored",
			fmt.Sprintf("binary options have no effect on a %s mapping", r.kind), class, ab.Attribute)
	}

	if binary && field.IsAttribute() && !ab.SwaRef && !ab.Inline {
		res.AddInfo("attribute_inline",
			"binary data in an attribute is always written inline", class, ab.Attribute)
	}

	if ab.MimeType != "" && ab.MimeTypeAttribute != "" {
		res.AddError("mime_type_conflict", "mime_type and mime_type_attribute are mutually exclusive", class, ab.Attribute)
	}

	if ab.MimeTypeAttribute != "" {
		sf, ok := rt.FieldByName(ab.MimeTypeAttribute)
		if !ok || !sf.IsExported() || sf.Type.Kind() != reflect.String {
			res.AddError("invalid_mime_type_attribute",
				fmt.Sprintf("%q is not an exported string field", ab.MimeTypeAttribute), class, ab.Attribute)
		}
	}

	if ab.SchemaType != "" && !knownSchemaType(xpath.SchemaType(ab.SchemaType)) {
		res.AddError("unknown_schema_type", fmt.Sprintf("unknown schema type %q", ab.SchemaType), class, ab.Attribute)
	}

	if ab.Converter != "" {
		if _, ok := converters[ab.Converter]; !ok {
			res.AddError("unknown_converter", fmt.Sprintf("converter %q is not registered", ab.Converter), class, ab.Attribute)
		}
	}

	if ab.NullValue != nil && ab.Converter == "" {
		if _, err := nullValue(conversion.NewRegistry(), ab, r); err != nil {
			res.AddError("invalid_null_value", err.Error(), class, ab.Attribute)
		}
	}
}

func knownSchemaType(st xpath.SchemaType) bool {
	switch st {
	case xpath.SchemaBase64Binary, xpath.SchemaHexBinary, xpath.SchemaString, xpath.SchemaBoolean,
		xpath.SchemaInt, xpath.SchemaLong, xpath.SchemaDouble, xpath.SchemaDateTime, xpath.SchemaDate,
		xpath.SchemaTime:
		return true
	default:
		return false
	}
}
