package conversion

import (
	"fmt"
	"reflect"

	"oxmapper/classification"
)

// ConversionError reports that a value has no coercion path to the
// requested classification, or that the rule for it failed.
type ConversionError struct {
	From   reflect.Type
	To     classification.Kind
	Target reflect.Type // set when converting to a concrete Go type
	Err    error
}

func (e *ConversionError) Error() string {
	to := e.To.String()
	if e.Target != nil {
		to = e.Target.String()
	}

	if e.Err != nil {
		return fmt.Sprintf("cannot convert %v to %s: %v", e.From, to, e.Err)
	}

	return fmt.Sprintf("no conversion from %v to %s", e.From, to)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}
