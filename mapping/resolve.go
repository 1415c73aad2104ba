package mapping

import (
	"fmt"
	"reflect"

	"oxmapper/classification"
	"oxmapper/xpath"
)

// resolved is what can be derived about an attribute binding from the Go type
// alone, shared by Validate and Build.
type resolved struct {
	field          reflect.StructField
	kind           Kind
	classification classification.Kind
}

// resolveAttribute looks up ab.Attribute on rt and settles the mapping kind
// and the classification of the value (of each element for collections).
func resolveAttribute(rt reflect.Type, ab *AttributeBinding) (resolved, error) {
	sf, ok := rt.FieldByName(ab.Attribute)
	if !ok {
		return resolved{}, fmt.Errorf("%s.%s: %w", rt.Name(), ab.Attribute, ErrUnknownField)
	}

	if !sf.IsExported() {
		return resolved{}, fmt.Errorf("%s.%s: %w", rt.Name(), ab.Attribute, ErrUnexportedField)
	}

	res := resolved{field: sf, kind: ab.Kind}
	if res.kind == "" {
		res.kind = inferKind(sf.Type)
	}

	elem := sf.Type
	if res.kind == KindBinaryCollection {
		if sf.Type.Kind() != reflect.Slice {
			return resolved{}, fmt.Errorf("%s.%s: %w", rt.Name(), ab.Attribute, ErrNotCollection)
		}

		elem = sf.Type.Elem()
	}

	res.classification = classification.FromReflectType(elem)

	if ab.Classification != "" {
		k, err := classification.Parse(ab.Classification)
		if err != nil {
			return resolved{}, err
		}

		res.classification = k
	}

	return res, nil
}

// inferKind picks the mapping kind for an unannotated field type.
func inferKind(t reflect.Type) Kind {
	if classification.FromReflectType(t).IsBinary() {
		return KindBinary
	}

	if t.Kind() == reflect.Slice && classification.FromReflectType(t.Elem()).IsBinary() {
		return KindBinaryCollection
	}

	return KindDirect
}

// newResolver builds the namespace resolver declared by a binding file.
func newResolver(bf *BindingFile) *xpath.NamespaceResolver {
	nr := xpath.NewNamespaceResolver()
	for prefix, uri := range bf.Namespaces {
		nr.Put(prefix, uri)
	}

	if bf.DefaultNamespace != "" {
		nr.Put("", bf.DefaultNamespace)
	}

	return nr
}

// parseRoot parses the root element name of a class binding.
func parseRoot(root string, nr *xpath.NamespaceResolver) (xpath.Fragment, error) {
	f, err := xpath.ParseField(root, nr)
	if err != nil {
		return xpath.Fragment{}, err
	}

	if len(f.Fragments) != 1 || f.IsAttribute() || f.LastFragment().Text {
		return xpath.Fragment{}, fmt.Errorf("root %q must be a single element name", root)
	}

	return f.Fragments[0], nil
}
