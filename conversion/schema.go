package conversion

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"oxmapper/classification"
	"oxmapper/xpath"
)

// Layouts for the temporal schema types. dateTime keeps fractional seconds
// when present so nanosecond precision survives a round trip.
const (
	layoutDateTime = "2006-01-02T15:04:05.999999999Z07:00"
	layoutDate     = "2006-01-02"
	layoutTime     = "15:04:05.999999999"
)

// ToSchemaText renders value as lexical text for schemaType. An empty schema
// type picks the natural one for the value. nil renders as "".
func (r *Registry) ToSchemaText(value any, schemaType xpath.SchemaType) (string, error) {
	if value == nil {
		return "", nil
	}

	if schemaType == "" {
		schemaType = defaultSchemaType(value)
	}

	switch schemaType {
	case xpath.SchemaBase64Binary, xpath.SchemaHexBinary:
		raw, err := r.Convert(value, classification.KindBytes)
		if err != nil {
			return "", err
		}

		b, _ := raw.([]byte)
		if schemaType == xpath.SchemaHexBinary {
			return strings.ToUpper(hex.EncodeToString(b)), nil
		}

		return base64.StdEncoding.EncodeToString(b), nil

	case xpath.SchemaDateTime, xpath.SchemaDate, xpath.SchemaTime:
		t, ok := value.(time.Time)
		if !ok {
			return "", &ConversionError{From: reflect.TypeOf(value), To: classification.KindTime}
		}

		return t.Format(layoutFor(schemaType)), nil

	case xpath.SchemaDouble:
		f, ok := value.(float64)
		if !ok {
			return "", &ConversionError{From: reflect.TypeOf(value), To: classification.KindFloat64}
		}

		return strconv.FormatFloat(f, 'G', -1, 64), nil

	default:
		out, err := r.Convert(value, classification.KindString)
		if err != nil {
			return "", err
		}

		s, _ := out.(string)

		return s, nil
	}
}

// FromSchemaText parses lexical text of schemaType into the given classification.
func (r *Registry) FromSchemaText(text string, schemaType xpath.SchemaType, to classification.Kind) (any, error) {
	switch schemaType {
	case xpath.SchemaBase64Binary:
		b, err := r.SchemaBase64ToBytes(text)
		if err != nil {
			return nil, err
		}

		return r.Convert(b, to)

	case xpath.SchemaHexBinary:
		b, err := hex.DecodeString(strings.TrimSpace(text))
		if err != nil {
			return nil, &ConversionError{From: reflect.TypeOf(text), To: to, Err: err}
		}

		return r.Convert(b, to)

	case xpath.SchemaDateTime, xpath.SchemaDate, xpath.SchemaTime:
		t, err := time.Parse(layoutFor(schemaType), strings.TrimSpace(text))
		if err != nil {
			return nil, &ConversionError{From: reflect.TypeOf(text), To: to, Err: err}
		}

		return r.Convert(t, to)

	default:
		if to == classification.KindBytes && schemaType == "" {
			return r.SchemaBase64ToBytes(text)
		}

		return r.Convert(text, to)
	}
}

func defaultSchemaType(value any) xpath.SchemaType {
	switch classification.Of(value) {
	case classification.KindBytes, classification.KindBoxedBytes, classification.KindDataHandler:
		return xpath.SchemaBase64Binary
	case classification.KindTime:
		return xpath.SchemaDateTime
	case classification.KindFloat64:
		return xpath.SchemaDouble
	default:
		return xpath.SchemaString
	}
}

func layoutFor(schemaType xpath.SchemaType) string {
	switch schemaType {
	case xpath.SchemaDate:
		return layoutDate
	case xpath.SchemaTime:
		return layoutTime
	default:
		return layoutDateTime
	}
}

func parseInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("parsing int: %w", err)
	}

	return n, nil
}

func parseInt64(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing long: %w", err)
	}

	return n, nil
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing double: %w", err)
	}

	return f, nil
}

// parseBool accepts the xs:boolean lexical space: true, false, 1, 0.
func parseBool(s string) (bool, error) {
	switch strings.TrimSpace(s) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("parsing boolean: invalid value %q", s)
	}
}
