// Package classification names the declared runtime types a mapped
// attribute can have. Conversion rules and binary encoding decisions are
// keyed by these kinds rather than by raw reflect types.
package classification

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"oxmapper/attachment"
)

//go:generate go tool stringer -type=Kind -output=kind_string.go

type Kind int

const (
	_ Kind = iota // zero value is the invalid kind

	KindBytes       // []byte
	KindBoxedBytes  // *[]byte: nil-able box around a byte slice
	KindDataHandler // *attachment.DataHandler
	KindString
	KindBool
	KindInt
	KindInt64
	KindFloat64
	KindTime
	KindAny // no declared classification, values pass through untouched

	// KindTotal is the number of kinds defined.
	KindTotal = int(iota)
)

var (
	bytesType       = reflect.TypeOf([]byte(nil))
	boxedBytesType  = reflect.TypeOf((*[]byte)(nil))
	dataHandlerType = reflect.TypeOf((*attachment.DataHandler)(nil))
	timeType        = reflect.TypeOf(time.Time{})
)

// IsBinary reports whether values of this kind carry raw bytes.
func (k Kind) IsBinary() bool {
	switch k {
	default:
		return false
	case KindBytes, KindBoxedBytes, KindDataHandler:
		return true
	}
}

// GoType returns the canonical Go type for the kind, or nil for KindAny and invalid kinds.
func (k Kind) GoType() reflect.Type {
	switch k {
	default:
		return nil
	case KindBytes:
		return bytesType
	case KindBoxedBytes:
		return boxedBytesType
	case KindDataHandler:
		return dataHandlerType
	case KindString:
		return reflect.TypeOf("")
	case KindBool:
		return reflect.TypeOf(false)
	case KindInt:
		return reflect.TypeOf(int(0))
	case KindInt64:
		return reflect.TypeOf(int64(0))
	case KindFloat64:
		return reflect.TypeOf(float64(0))
	case KindTime:
		return timeType
	}
}

// Name returns the lower-case name used in binding files.
func (k Kind) Name() string {
	return names[k]
}

var names = map[Kind]string{
	KindBytes:       "bytes",
	KindBoxedBytes:  "boxed-bytes",
	KindDataHandler: "data-handler",
	KindString:      "string",
	KindBool:        "bool",
	KindInt:         "int",
	KindInt64:       "int64",
	KindFloat64:     "float64",
	KindTime:        "time",
	KindAny:         "any",
}

// Parse resolves a binding-file name into a Kind.
func Parse(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range names {
		if n == name {
			return k, nil
		}
	}

	return 0, fmt.Errorf("unknown classification %q", name)
}

// FromReflectType returns the kind matching rtype exactly, or 0.
func FromReflectType(rtype reflect.Type) Kind {
	if rtype == nil {
		return 0
	}

	switch rtype {
	case bytesType:
		return KindBytes
	case boxedBytesType:
		return KindBoxedBytes
	case dataHandlerType:
		return KindDataHandler
	case timeType:
		return KindTime
	case reflect.TypeOf(int(0)):
		return KindInt
	case reflect.TypeOf(int64(0)):
		return KindInt64
	case reflect.TypeOf(float64(0)):
		return KindFloat64
	}

	switch rtype.Kind() {
	default:
		return 0
	case reflect.String:
		return KindString
	case reflect.Bool:
		return KindBool
	case reflect.Interface:
		return KindAny
	case reflect.Slice:
		if rtype.Elem().Kind() == reflect.Uint8 {
			return KindBytes
		}

		return 0
	}
}

// Of returns the kind of a runtime value, or 0 if nil or unclassified.
func Of(value any) Kind {
	if value == nil {
		return 0
	}

	return FromReflectType(reflect.TypeOf(value))
}
