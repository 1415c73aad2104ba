package store

import (
	"fmt"
	"reflect"

	"oxmapper/mapping"
)

// Types registers the catalog types under their binding names.
func Types() mapping.Types {
	return mapping.Types{}.
		Add("store.Product", Product{}).
		Add("store.Order", Order{})
}

// Bindings derives the catalog binding file from the struct tags.
func Bindings() (*mapping.BindingFile, error) {
	types := Types()

	bf := &mapping.BindingFile{Version: "1", Namespaces: Namespaces}

	for _, name := range types.Names() {
		cb, err := mapping.FromStruct(name, reflect.New(types[name]).Interface())
		if err != nil {
			return nil, fmt.Errorf("failed to derive bindings: %w", err)
		}

		bf.Classes = append(bf.Classes, cb)
	}

	return bf, nil
}
