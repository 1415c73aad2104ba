package oxm

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrUnknownClass = errors.New("no class bound to this type")
	ErrUnknownRoot  = errors.New("no class bound to this root element")
	ErrNoRoot       = errors.New("document has no root element")
)

// DecodeError reports document content that cannot be turned back into an
// attribute value: malformed base64 text, an unknown attachment content id,
// or lexical text that does not parse as the declared type.
type DecodeError struct {
	Attribute string
	Element   string
	Err       error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s in <%s>: %v", e.Attribute, e.Element, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Severity of a validation event.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
	SeverityFatal
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// ValidationEvent is a problem found while reading a document.
type ValidationEvent struct {
	Severity Severity
	Message  string
	// Element is the qualified name of the element being read, if any.
	Element string
	// Err is the underlying cause, if any.
	Err error
}

// ValidationEventHandler decides whether unmarshalling continues after an
// event. Fatal events abort regardless of the answer.
type ValidationEventHandler interface {
	HandleEvent(ev ValidationEvent) bool
}

// ValidationEventHandlerFunc adapts a function to ValidationEventHandler.
type ValidationEventHandlerFunc func(ev ValidationEvent) bool

// HandleEvent implements ValidationEventHandler.
func (f ValidationEventHandlerFunc) HandleEvent(ev ValidationEvent) bool {
	return f(ev)
}

// IgnoreErrors returns a handler that continues past warnings and up to n
// error events, then aborts. The count spans every call made through the
// unmarshaller the handler is installed on.
func IgnoreErrors(n int) ValidationEventHandler {
	return &errorBudget{limit: n}
}

type errorBudget struct {
	mu    sync.Mutex
	limit int
	seen  int
}

func (b *errorBudget) HandleEvent(ev ValidationEvent) bool {
	switch ev.Severity {
	case SeverityWarning:
		return true
	case SeverityError:
		b.mu.Lock()
		defer b.mu.Unlock()

		b.seen++

		return b.seen <= b.limit
	default:
		return false
	}
}

// ValidationError aborts an unmarshal call on an event the handler did not
// accept.
type ValidationError struct {
	Event ValidationEvent
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Event.Severity, e.Event.Message)
	if e.Event.Element != "" {
		msg = fmt.Sprintf("%s (element <%s>)", msg, e.Event.Element)
	}

	return msg
}

func (e *ValidationError) Unwrap() error {
	return e.Event.Err
}
