package oxm

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/sirupsen/logrus"

	"oxmapper/attachment"
	"oxmapper/internal/logging/logfields"
)

// Unmarshaller reads documents into objects of a Context. Its configuration
// is fixed at creation, so one Unmarshaller may run concurrent calls.
type Unmarshaller struct {
	ctx         *Context
	attachments attachment.Unmarshaller
	handler     ValidationEventHandler
}

// UnmarshallerOption configures an Unmarshaller.
type UnmarshallerOption func(*Unmarshaller)

// WithAttachmentUnmarshaller resolves swaRef and xop:Include content ids
// through au. Without one, such values are left unset.
func WithAttachmentUnmarshaller(au attachment.Unmarshaller) UnmarshallerOption {
	return func(u *Unmarshaller) { u.attachments = au }
}

// WithEventHandler decides which validation events abort unmarshalling.
// Without a handler warnings are ignored and the first error aborts.
func WithEventHandler(h ValidationEventHandler) UnmarshallerOption {
	return func(u *Unmarshaller) { u.handler = h }
}

// NewUnmarshaller creates an unmarshaller bound to c.
func (c *Context) NewUnmarshaller(opts ...UnmarshallerOption) *Unmarshaller {
	u := &Unmarshaller{ctx: c}
	for _, opt := range opts {
		opt(u)
	}

	return u
}

// AttachmentUnmarshaller implements mapping.UnmarshalerInfo.
func (u *Unmarshaller) AttachmentUnmarshaller() attachment.Unmarshaller {
	return u.attachments
}

// MediaType implements mapping.UnmarshalerInfo.
func (u *Unmarshaller) MediaType() string {
	return MediaTypeXML
}

// IsXOPPackage reports whether documents may carry xop:Include references.
func (u *Unmarshaller) IsXOPPackage() bool {
	return u.attachments != nil && u.attachments.IsXOPPackage()
}

// Unmarshal reads one document and returns a pointer to a new object of the
// class bound to its root element.
func (u *Unmarshaller) Unmarshal(r io.Reader) (any, error) {
	return u.run(r, nil)
}

// UnmarshalInto reads one document into v, a non-nil pointer to a bound
// struct whose root element the document must have.
func (u *Unmarshaller) UnmarshalInto(r io.Reader, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("unmarshal into %T: target must be a non-nil pointer", v)
	}

	_, err := u.run(r, v)

	return err
}

func (u *Unmarshaller) run(r io.Reader, into any) (any, error) {
	u.ctx.metrics.UnmarshalCalls.Inc(1)

	obj, err := u.unmarshal(r, into)
	if err != nil {
		u.ctx.metrics.UnmarshalErrors.Inc(1)
		return nil, err
	}

	return obj, nil
}

func (u *Unmarshaller) unmarshal(r io.Reader, into any) (any, error) {
	dec := xml.NewDecoder(r)

	var rec *UnmarshalRecord

	for rec == nil || !rec.done() {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, u.report(ValidationEvent{Severity: SeverityFatal, Message: err.Error(), Err: err})
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if rec == nil {
				rec, err = u.startRoot(t, into)
			} else {
				err = rec.top().startElement(rec, t)
			}
		case xml.CharData:
			if rec != nil {
				rec.top().characters(rec, t)
			}
		case xml.EndElement:
			if rec != nil {
				err = rec.top().endElement(rec, t)
			}
		}

		if err != nil {
			return nil, err
		}
	}

	if rec == nil {
		return nil, ErrNoRoot
	}

	if !rec.done() {
		return nil, u.report(ValidationEvent{
			Severity: SeverityFatal,
			Message:  "document ended inside an element",
			Err:      io.ErrUnexpectedEOF,
		})
	}

	if err := rec.finish(); err != nil {
		return nil, err
	}

	return rec.object, nil
}

func (u *Unmarshaller) startRoot(se xml.StartElement, into any) (*UnmarshalRecord, error) {
	cd, ok := u.ctx.project.ForRoot(se.Name.Space, se.Name.Local)
	if !ok {
		return nil, fmt.Errorf("root {%s}%s: %w", se.Name.Space, se.Name.Local, ErrUnknownRoot)
	}

	obj := into
	if obj == nil {
		obj = cd.NewInstance()
	} else if want, ok := u.ctx.project.ForType(reflect.TypeOf(into)); !ok || want != cd {
		return nil, fmt.Errorf("root {%s}%s is bound to %s, not %T", se.Name.Space, se.Name.Local, cd.Name, into)
	}

	u.ctx.log.WithFields(logrus.Fields{
		logfields.Class:   cd.Name,
		logfields.Element: se.Name.Local,
	}).Debug("Unmarshalling object")

	rec := newUnmarshalRecord(u, cd, obj)

	return rec, rec.startAttributes(rec.path[0], se.Attr)
}

// report hands ev to the event handler and returns the error that aborts
// the call, or nil to continue. Fatal events always abort.
func (u *Unmarshaller) report(ev ValidationEvent) error {
	u.ctx.metrics.UnmarshalEvents.Inc(1)

	u.ctx.log.WithFields(logrus.Fields{
		logfields.Severity: ev.Severity,
		logfields.Element:  ev.Element,
	}).WithError(ev.Err).Debug(ev.Message)

	cont := ev.Severity == SeverityWarning
	if u.handler != nil {
		cont = u.handler.HandleEvent(ev)
	}

	if cont && ev.Severity != SeverityFatal {
		return nil
	}

	return &ValidationError{Event: ev}
}
