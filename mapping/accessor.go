package mapping

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrNotStruct       = errors.New("object is not a struct or pointer to struct")
	ErrNotAddressable  = errors.New("object must be a non-nil pointer to struct to be written")
	ErrNotCollection   = errors.New("attribute is not a slice")
	ErrUnknownField    = errors.New("unknown struct field")
	ErrUnexportedField = errors.New("struct field is not exported")
)

// Accessor reads and writes one attribute of a domain object.
type Accessor interface {
	Get(obj any) (any, error)
	Set(obj any, value any) error
}

// CollectionAccessor is an Accessor over a slice attribute that can also
// append single elements.
type CollectionAccessor interface {
	Accessor
	Append(obj any, element any) error
}

// FieldAccessor accesses an exported struct field by reflection.
type FieldAccessor struct {
	name  string
	index []int
	typ   reflect.Type
}

// NewFieldAccessor resolves field name on struct type t.
func NewFieldAccessor(t reflect.Type, name string) (*FieldAccessor, error) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%v: %w", t, ErrNotStruct)
	}

	sf, ok := t.FieldByName(name)
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", t.Name(), name, ErrUnknownField)
	}

	if !sf.IsExported() {
		return nil, fmt.Errorf("%s.%s: %w", t.Name(), name, ErrUnexportedField)
	}

	return &FieldAccessor{name: name, index: sf.Index, typ: sf.Type}, nil
}

// Name returns the field name.
func (a *FieldAccessor) Name() string {
	return a.name
}

// Type returns the field type.
func (a *FieldAccessor) Type() reflect.Type {
	return a.typ
}

// Get returns the field value. Nil pointers, slices, maps and interfaces are
// returned as an untyped nil so callers can test for absence with == nil.
func (a *FieldAccessor) Get(obj any) (any, error) {
	v, err := structValue(obj)
	if err != nil {
		return nil, err
	}

	fv := v.FieldByIndex(a.index)
	if isNilValue(fv) {
		return nil, nil
	}

	return fv.Interface(), nil
}

// Set assigns value to the field; nil resets it to the zero value.
func (a *FieldAccessor) Set(obj any, value any) error {
	fv, err := a.settable(obj)
	if err != nil {
		return err
	}

	if value == nil {
		fv.Set(reflect.Zero(a.typ))
		return nil
	}

	rv, err := assignable(reflect.ValueOf(value), a.typ)
	if err != nil {
		return fmt.Errorf("field %s: %w", a.name, err)
	}

	fv.Set(rv)

	return nil
}

// Append adds element to a slice field.
func (a *FieldAccessor) Append(obj any, element any) error {
	if a.typ.Kind() != reflect.Slice {
		return fmt.Errorf("field %s: %w", a.name, ErrNotCollection)
	}

	fv, err := a.settable(obj)
	if err != nil {
		return err
	}

	var ev reflect.Value
	if element == nil {
		ev = reflect.Zero(a.typ.Elem())
	} else {
		ev, err = assignable(reflect.ValueOf(element), a.typ.Elem())
		if err != nil {
			return fmt.Errorf("field %s: %w", a.name, err)
		}
	}

	fv.Set(reflect.Append(fv, ev))

	return nil
}

func (a *FieldAccessor) settable(obj any) (reflect.Value, error) {
	rv := reflect.ValueOf(obj)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return reflect.Value{}, ErrNotAddressable
	}

	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, ErrNotStruct
	}

	return rv.FieldByIndex(a.index), nil
}

func structValue(obj any) (reflect.Value, error) {
	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return reflect.Value{}, ErrNotStruct
		}

		rv = rv.Elem()
	}

	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, ErrNotStruct
	}

	return rv, nil
}

func assignable(v reflect.Value, target reflect.Type) (reflect.Value, error) {
	switch {
	case v.Type().AssignableTo(target):
		return v, nil
	case v.Type().ConvertibleTo(target) && v.Kind() == target.Kind():
		return v.Convert(target), nil
	default:
		return reflect.Value{}, fmt.Errorf("cannot assign %v to %v", v.Type(), target)
	}
}

func isNilValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}
