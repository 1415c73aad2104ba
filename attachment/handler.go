package attachment

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// DefaultContentType is used when neither the caller nor the content says otherwise.
const DefaultContentType = "application/octet-stream"

var ErrNilHandler = errors.New("nil data handler")

// DataHandler is an opaque handle over binary content. It is the Go form of
// the "attachment handle" classification: content is read through Open and
// carries its own content type.
type DataHandler struct {
	name        string
	contentType string

	// data is set for in-memory handlers; open is used otherwise.
	data []byte
	open func() (io.ReadCloser, error)
}

// NewDataHandler wraps in-memory bytes. The slice is not copied.
func NewDataHandler(data []byte, contentType string) *DataHandler {
	if contentType == "" {
		contentType = DefaultContentType
	}

	return &DataHandler{data: data, contentType: contentType}
}

// NewDataHandlerFunc creates a handler whose content is produced lazily by open.
func NewDataHandlerFunc(name, contentType string, open func() (io.ReadCloser, error)) *DataHandler {
	if contentType == "" {
		contentType = DefaultContentType
	}

	return &DataHandler{name: name, contentType: contentType, open: open}
}

// Name returns the optional name of the underlying source.
func (h *DataHandler) Name() string {
	return h.name
}

// ContentType returns the MIME type of the content.
func (h *DataHandler) ContentType() string {
	return h.contentType
}

// InMemory reports whether the handler wraps a byte slice.
func (h *DataHandler) InMemory() bool {
	return h.open == nil
}

// Open returns a reader over the content.
func (h *DataHandler) Open() (io.ReadCloser, error) {
	if h == nil {
		return nil, ErrNilHandler
	}

	if h.open == nil {
		return io.NopCloser(bytes.NewReader(h.data)), nil
	}

	return h.open()
}

// Bytes returns the content. In-memory handlers return their slice without copying.
func (h *DataHandler) Bytes() ([]byte, error) {
	if h == nil {
		return nil, ErrNilHandler
	}

	if h.open == nil {
		return h.data, nil
	}

	rc, err := h.open()
	if err != nil {
		return nil, fmt.Errorf("opening data handler %q: %w", h.name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading data handler %q: %w", h.name, err)
	}

	return data, nil
}
