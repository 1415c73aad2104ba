// Package conversion holds the coercion rules between runtime values and
// declared classifications, and between values and their XML Schema text.
//
// A Registry is built once per binding context and passed explicitly to
// everything that converts values; there is no process-wide default.
package conversion

import (
	"encoding/base64"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"oxmapper/attachment"
	"oxmapper/classification"
)

// Rule converts a value already known to have the rule's source type.
type Rule func(value any) (any, error)

type ruleKey struct {
	from reflect.Type
	to   classification.Kind
}

// Registry is a set of conversion rules. It is safe for concurrent use;
// Register is expected to happen before the registry is shared.
type Registry struct {
	mu    sync.RWMutex
	rules map[ruleKey]Rule
}

// NewRegistry returns a registry with the default rules installed.
func NewRegistry() *Registry {
	r := &Registry{rules: make(map[ruleKey]Rule)}
	r.registerDefaults()

	return r
}

// Register installs or replaces the rule converting from into to.
func (r *Registry) Register(from reflect.Type, to classification.Kind, rule Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules[ruleKey{from: from, to: to}] = rule
}

// Has reports whether a rule exists for the pair.
func (r *Registry) Has(from reflect.Type, to classification.Kind) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.rules[ruleKey{from: from, to: to}]

	return ok
}

// Convert coerces value to the target classification. Values that already
// match are returned as is, and so is nil.
func (r *Registry) Convert(value any, to classification.Kind) (any, error) {
	if value == nil || to == classification.KindAny {
		return value, nil
	}

	from := reflect.TypeOf(value)
	if target := to.GoType(); target != nil && from == target {
		return value, nil
	}

	r.mu.RLock()
	rule, ok := r.rules[ruleKey{from: from, to: to}]
	r.mu.RUnlock()

	if !ok {
		return r.convertKind(value, from, to)
	}

	out, err := rule(value)
	if err != nil {
		return nil, &ConversionError{From: from, To: to, Err: err}
	}

	return out, nil
}

// convertKind handles named types whose underlying type has a rule, e.g. a
// `type Photo []byte` attribute.
func (r *Registry) convertKind(value any, from reflect.Type, to classification.Kind) (any, error) {
	k := classification.FromReflectType(from)
	if k == 0 || k.GoType() == nil || !from.ConvertibleTo(k.GoType()) {
		return nil, &ConversionError{From: from, To: to}
	}

	base := reflect.ValueOf(value).Convert(k.GoType()).Interface()
	if k == to {
		return base, nil
	}

	r.mu.RLock()
	rule, ok := r.rules[ruleKey{from: k.GoType(), to: to}]
	r.mu.RUnlock()

	if !ok {
		return nil, &ConversionError{From: from, To: to}
	}

	out, err := rule(base)
	if err != nil {
		return nil, &ConversionError{From: from, To: to, Err: err}
	}

	return out, nil
}

// ConvertTo coerces value to an arbitrary Go type. Named types are reached
// through the classification of their underlying type.
func (r *Registry) ConvertTo(value any, target reflect.Type) (any, error) {
	if value == nil {
		return reflect.Zero(target).Interface(), nil
	}

	from := reflect.TypeOf(value)
	if from == target {
		return value, nil
	}

	k := classification.FromReflectType(target)
	if k == 0 {
		return nil, &ConversionError{From: from, To: k, Target: target}
	}

	out, err := r.Convert(value, k)
	if err != nil {
		return nil, err
	}

	v := reflect.ValueOf(out)
	if v.Type() != target {
		if !v.Type().ConvertibleTo(target) {
			return nil, &ConversionError{From: from, To: k, Target: target}
		}

		v = v.Convert(target)
	}

	return v.Interface(), nil
}

// SchemaBase64ToBytes decodes base64Binary text. Whitespace is ignored.
func (r *Registry) SchemaBase64ToBytes(text string) ([]byte, error) {
	clean := strings.Map(func(c rune) rune {
		switch c {
		case ' ', '\t', '\r', '\n':
			return -1
		}

		return c
	}, text)

	out, err := base64.StdEncoding.DecodeString(clean)
	if err != nil {
		return nil, &ConversionError{From: reflect.TypeOf(text), To: classification.KindBytes, Err: err}
	}

	return out, nil
}

func (r *Registry) registerDefaults() {
	bytesT := classification.KindBytes.GoType()
	boxedT := classification.KindBoxedBytes.GoType()
	handlerT := classification.KindDataHandler.GoType()
	stringT := classification.KindString.GoType()

	r.rules[ruleKey{bytesT, classification.KindString}] = func(v any) (any, error) {
		return base64.StdEncoding.EncodeToString(v.([]byte)), nil
	}
	r.rules[ruleKey{stringT, classification.KindBytes}] = func(v any) (any, error) {
		return r.SchemaBase64ToBytes(v.(string))
	}
	r.rules[ruleKey{bytesT, classification.KindBoxedBytes}] = func(v any) (any, error) {
		b := v.([]byte)
		return &b, nil
	}
	r.rules[ruleKey{boxedT, classification.KindBytes}] = func(v any) (any, error) {
		b := v.(*[]byte)
		if b == nil {
			return []byte(nil), nil
		}

		return *b, nil
	}
	r.rules[ruleKey{bytesT, classification.KindDataHandler}] = func(v any) (any, error) {
		return attachment.NewDataHandler(v.([]byte), ""), nil
	}
	r.rules[ruleKey{boxedT, classification.KindDataHandler}] = func(v any) (any, error) {
		b := v.(*[]byte)
		if b == nil {
			return (*attachment.DataHandler)(nil), nil
		}

		return attachment.NewDataHandler(*b, ""), nil
	}
	r.rules[ruleKey{handlerT, classification.KindBytes}] = func(v any) (any, error) {
		return v.(*attachment.DataHandler).Bytes()
	}
	r.rules[ruleKey{handlerT, classification.KindBoxedBytes}] = func(v any) (any, error) {
		b, err := v.(*attachment.DataHandler).Bytes()
		if err != nil {
			return nil, err
		}

		return &b, nil
	}
	r.rules[ruleKey{classification.KindTime.GoType(), classification.KindString}] = func(v any) (any, error) {
		return v.(time.Time).Format(time.RFC3339Nano), nil
	}
	r.rules[ruleKey{stringT, classification.KindTime}] = func(v any) (any, error) {
		return time.Parse(time.RFC3339Nano, strings.TrimSpace(v.(string)))
	}
	r.rules[ruleKey{stringT, classification.KindInt}] = func(v any) (any, error) {
		return parseInt(v.(string))
	}
	r.rules[ruleKey{stringT, classification.KindInt64}] = func(v any) (any, error) {
		return parseInt64(v.(string))
	}
	r.rules[ruleKey{stringT, classification.KindFloat64}] = func(v any) (any, error) {
		return parseFloat(v.(string))
	}
	r.rules[ruleKey{stringT, classification.KindBool}] = func(v any) (any, error) {
		return parseBool(v.(string))
	}
	r.rules[ruleKey{classification.KindInt.GoType(), classification.KindString}] = func(v any) (any, error) {
		return fmt.Sprint(v), nil
	}
	r.rules[ruleKey{classification.KindInt64.GoType(), classification.KindString}] = func(v any) (any, error) {
		return fmt.Sprint(v), nil
	}
	r.rules[ruleKey{classification.KindBool.GoType(), classification.KindString}] = func(v any) (any, error) {
		return fmt.Sprint(v), nil
	}
	r.rules[ruleKey{classification.KindInt.GoType(), classification.KindInt64}] = func(v any) (any, error) {
		return int64(v.(int)), nil
	}
	r.rules[ruleKey{classification.KindInt64.GoType(), classification.KindInt}] = func(v any) (any, error) {
		return int(v.(int64)), nil
	}
}
