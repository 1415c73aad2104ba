// Package binarydata decides how a binary attribute value is physically
// represented and extracts its bytes and MIME type.
package binarydata

import (
	"fmt"
	"reflect"

	"github.com/gabriel-vasile/mimetype"

	"oxmapper/attachment"
	"oxmapper/classification"
	"oxmapper/conversion"
)

// EncodedData is the per-call result of reading a binary value.
type EncodedData struct {
	Data     []byte
	MimeType string
}

// UnsupportedBinaryTypeError is returned for values that cannot be read as bytes.
type UnsupportedBinaryTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedBinaryTypeError) Error() string {
	return fmt.Sprintf("unsupported binary value type %v", e.Type)
}

// Helper reads and wraps binary values.
type Helper struct {
	conversions *conversion.Registry
	detect      bool
}

// Option configures a Helper.
type Option func(*Helper)

// WithMimeDetection sniffs the content to pick a MIME type when the mapping
// and the value do not provide one.
func WithMimeDetection() Option {
	return func(h *Helper) { h.detect = true }
}

// New creates a helper converting through reg.
func New(reg *conversion.Registry, opts ...Option) *Helper {
	h := &Helper{conversions: reg}
	for _, opt := range opts {
		opt(h)
	}

	return h
}

// BytesForBinaryValue returns the bytes of value and its MIME type. mimeType
// is the mapping's resolved policy; when set it overrides what the value
// reports about itself.
func (h *Helper) BytesForBinaryValue(value any, mimeType string) (EncodedData, error) {
	switch v := value.(type) {
	case []byte:
		return EncodedData{Data: v, MimeType: h.mimeTypeFor(v, mimeType)}, nil

	case *[]byte:
		var data []byte
		if v != nil {
			data = *v
		}

		return EncodedData{Data: data, MimeType: h.mimeTypeFor(data, mimeType)}, nil

	case *attachment.DataHandler:
		data, err := v.Bytes()
		if err != nil {
			return EncodedData{}, err
		}

		if mimeType == "" {
			mimeType = v.ContentType()
		}

		return EncodedData{Data: data, MimeType: mimeType}, nil
	}

	// named byte slice types, e.g. `type Photo []byte`
	if rv := reflect.ValueOf(value); rv.IsValid() && rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
		data := rv.Bytes()
		return EncodedData{Data: data, MimeType: h.mimeTypeFor(data, mimeType)}, nil
	}

	return EncodedData{}, &UnsupportedBinaryTypeError{Type: reflect.TypeOf(value)}
}

// ConvertObject coerces value to kind. Data handler targets wrap in-memory
// bytes without copying them.
func (h *Helper) ConvertObject(value any, kind classification.Kind) (any, error) {
	if kind == classification.KindDataHandler {
		switch v := value.(type) {
		case *attachment.DataHandler:
			return v, nil
		case []byte:
			return attachment.NewDataHandler(v, ""), nil
		}
	}

	return h.conversions.Convert(value, kind)
}

// DataHandlerFor returns value as a data handler when kind declares one.
func DataHandlerFor(value any, kind classification.Kind) (*attachment.DataHandler, bool) {
	if kind != classification.KindDataHandler {
		return nil, false
	}

	dh, ok := value.(*attachment.DataHandler)

	return dh, ok && dh != nil
}

func (h *Helper) mimeTypeFor(data []byte, mimeType string) string {
	if mimeType != "" {
		return mimeType
	}

	if h.detect && len(data) > 0 {
		return mimetype.Detect(data).String()
	}

	return attachment.DefaultContentType
}
