package oxm

import (
	"fmt"
	"io"
	"reflect"

	"github.com/sirupsen/logrus"

	"oxmapper/attachment"
	"oxmapper/internal/logging/logfields"
	"oxmapper/xpath"
)

// Media types understood by Marshaller.
const (
	MediaTypeXML  = "application/xml"
	MediaTypeJSON = "application/json"
)

// Marshaller writes objects of a Context as documents. Its configuration is
// fixed at creation, so one Marshaller may run concurrent Marshal calls.
type Marshaller struct {
	ctx         *Context
	attachments attachment.Marshaller
	mediaType   string
	formatted   bool
	fragment    bool
}

// MarshallerOption configures a Marshaller.
type MarshallerOption func(*Marshaller)

// WithAttachmentMarshaller enables swaRef and, when am is an XOP package,
// MTOM output.
func WithAttachmentMarshaller(am attachment.Marshaller) MarshallerOption {
	return func(m *Marshaller) { m.attachments = am }
}

// WithMediaType selects XML (default) or JSON output.
func WithMediaType(mediaType string) MarshallerOption {
	return func(m *Marshaller) { m.mediaType = mediaType }
}

// WithFormattedOutput indents the output.
func WithFormattedOutput() MarshallerOption {
	return func(m *Marshaller) { m.formatted = true }
}

// WithFragment omits the XML declaration.
func WithFragment() MarshallerOption {
	return func(m *Marshaller) { m.fragment = true }
}

// NewMarshaller creates a marshaller bound to c.
func (c *Context) NewMarshaller(opts ...MarshallerOption) *Marshaller {
	m := &Marshaller{ctx: c, mediaType: MediaTypeXML}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// AttachmentMarshaller implements mapping.MarshalerInfo. It is nil when no
// attachment marshaller is configured.
func (m *Marshaller) AttachmentMarshaller() attachment.Marshaller {
	return m.attachments
}

// MediaType implements mapping.MarshalerInfo.
func (m *Marshaller) MediaType() string {
	return m.mediaType
}

// Context returns the owning binding context.
func (m *Marshaller) Context() *Context {
	return m.ctx
}

// IsXOPPackage reports whether binary content may be written as xop:Include
// references. JSON output never is.
func (m *Marshaller) IsXOPPackage() bool {
	return m.attachments != nil && m.mediaType == MediaTypeXML && m.attachments.IsXOPPackage()
}

type documentRecord interface {
	MarshalRecord
	StartDocument()
	EndDocument()
}

// Marshal writes obj, which must be a bound struct or a pointer to one.
// On error the output written to w is incomplete and must be discarded.
func (m *Marshaller) Marshal(w io.Writer, obj any) error {
	m.ctx.metrics.MarshalCalls.Inc(1)

	if err := m.marshal(w, obj); err != nil {
		m.ctx.metrics.MarshalErrors.Inc(1)
		return err
	}

	return nil
}

func (m *Marshaller) marshal(w io.Writer, obj any) error {
	cd, ok := m.ctx.project.ForType(reflect.TypeOf(obj))
	if !ok {
		return fmt.Errorf("marshal %T: %w", obj, ErrUnknownClass)
	}

	var rec documentRecord
	switch m.mediaType {
	case MediaTypeJSON:
		rec = NewJSONRecord(w, m)
	case MediaTypeXML:
		xr := NewXMLRecord(w, m)
		if !m.fragment {
			xr.StartDocument()
		}

		rec = xr
	default:
		return fmt.Errorf("unsupported media type %q", m.mediaType)
	}

	m.ctx.log.WithFields(logrus.Fields{
		logfields.Class:   cd.Name,
		logfields.Element: cd.Root.QualifiedName(),
	}).Debug("Marshalling object")

	nr := cd.Namespaces
	tree := m.ctx.trees[cd]

	rec.OpenStartElement(cd.Root, nr)
	writeNamespaceDeclarations(rec, nr)

	if err := m.marshalAttributes(tree, rec, obj, nr); err != nil {
		return err
	}

	if err := m.marshalChildren(tree, rec, obj, nr); err != nil {
		return err
	}

	rec.EndElement(cd.Root, nr)
	rec.EndDocument()

	return rec.Err()
}

func writeNamespaceDeclarations(rec MarshalRecord, nr *xpath.NamespaceResolver) {
	for _, prefix := range nr.Prefixes() {
		uri, _ := nr.Resolve(prefix)
		if prefix == "" {
			rec.Attribute(xpath.XMLNSNamespaceURI, "xmlns", "xmlns", uri)
			continue
		}

		rec.Attribute(xpath.XMLNSNamespaceURI, prefix, "xmlns:"+prefix, uri)
	}
}

func (m *Marshaller) marshalChildren(t *treeNode, rec MarshalRecord, obj any, nr *xpath.NamespaceResolver) error {
	for _, child := range t.children {
		if err := m.marshalNode(child, rec, obj, nr); err != nil {
			return err
		}
	}

	return nil
}

func (m *Marshaller) marshalAttributes(t *treeNode, rec MarshalRecord, obj any, nr *xpath.NamespaceResolver) error {
	for _, attr := range t.attributes {
		if _, err := attr.value.Marshal(attr.frag, rec, obj, m.ctx, nr, ObjectMarshalContext{}); err != nil {
			return err
		}
	}

	return nil
}

func (m *Marshaller) marshalNode(t *treeNode, rec MarshalRecord, obj any, nr *xpath.NamespaceResolver) error {
	if t.value == nil {
		rec.AddGroupingElement(t.frag)

		if err := m.marshalAttributes(t, rec, obj, nr); err != nil {
			return err
		}

		if err := m.marshalChildren(t, rec, obj, nr); err != nil {
			return err
		}

		rec.RemoveGroupingElement(nr)

		return nil
	}

	if len(t.attributes) == 0 {
		_, err := t.value.Marshal(t.frag, rec, obj, m.ctx, nr, ObjectMarshalContext{})
		return err
	}

	inj := &attributeInjector{
		MarshalRecord: rec,
		write:         func() error { return m.marshalAttributes(t, rec, obj, nr) },
	}

	if _, err := t.value.Marshal(t.frag, inj, obj, m.ctx, nr, ObjectMarshalContext{}); err != nil {
		return err
	}

	if inj.done {
		return inj.err
	}

	// the value wrote nothing; the attributes still get their element
	rec.AddGroupingElement(t.frag)

	if err := m.marshalAttributes(t, rec, obj, nr); err != nil {
		return err
	}

	rec.RemoveGroupingElement(nr)

	return nil
}
