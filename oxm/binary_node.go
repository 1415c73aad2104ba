package oxm

import (
	"encoding/xml"
	"fmt"
	"reflect"
	"strings"

	"github.com/sirupsen/logrus"

	"oxmapper/attachment"
	"oxmapper/binarydata"
	"oxmapper/classification"
	"oxmapper/internal/logging/logfields"
	"oxmapper/mapping"
	"oxmapper/xpath"
)

// strategy is how one binary value is written.
type strategy int

const (
	strategyInline strategy = iota
	strategySwaRef
	strategyMTOM
)

func (s strategy) String() string {
	switch s {
	case strategySwaRef:
		return "swaref"
	case strategyMTOM:
		return "mtom"
	default:
		return "inline"
	}
}

// selectStrategy picks exactly one strategy: swaRef when the mapping asks
// for it and the marshaller handles attachments, else XOP when the
// marshaller writes an XOP package and inlining is not forced, else inline.
// Attributes cannot hold an xop:Include.
func selectStrategy(d *mapping.Descriptor, m *Marshaller, attribute bool) strategy {
	switch {
	case d.SwaRef && m.AttachmentMarshaller() != nil:
		return strategySwaRef
	case !attribute && !d.InlineBinaryData && m.IsXOPPackage():
		return strategyMTOM
	default:
		return strategyInline
	}
}

// BinaryDataNode maps a binary attribute to element content or to an XML
// attribute.
type BinaryDataNode struct {
	desc       *mapping.Descriptor
	collection bool
}

// NewBinaryDataNode creates the node for d.
func NewBinaryDataNode(d *mapping.Descriptor) *BinaryDataNode {
	return &BinaryDataNode{desc: d}
}

// Descriptor implements NodeValue.
func (n *BinaryDataNode) Descriptor() *mapping.Descriptor {
	return n.desc
}

// Marshal implements NodeValue. An absent value still writes an empty
// element and reports true; an absent attribute value writes nothing.
func (n *BinaryDataNode) Marshal(
	frag xpath.Fragment,
	rec MarshalRecord,
	obj any,
	s mapping.Session,
	nr *xpath.NamespaceResolver,
	mc MarshalContext,
) (bool, error) {
	if n.desc.ReadOnly {
		return false, nil
	}

	value, err := mc.AttributeValue(obj, n.desc)
	if err != nil {
		return false, err
	}

	value, err = n.desc.ToDataValue(value, s, rec.Marshaller())
	if err != nil {
		return false, err
	}

	if isAbsent(value) {
		value = nil
	}

	if frag.Attribute {
		return n.marshalAttribute(frag, rec, obj, value, nr)
	}

	rec.OpenStartGroupingElements(nr)
	rec.OpenStartElement(frag, nr)

	if value == nil {
		rec.CloseStartElement()
		rec.EndElement(frag, nr)

		return true, nil
	}

	m := rec.Marshaller()
	strat := selectStrategy(n.desc, m, false)

	switch strat {
	case strategySwaRef:
		err = n.writeSwaRef(frag, rec, obj, value, nr)
	case strategyMTOM:
		err = n.writeXOPInclude(frag, rec, obj, value, nr)
	default:
		err = n.writeInline(rec, obj, value)
	}

	if err != nil {
		return false, err
	}

	rec.EndElement(frag, nr)
	n.count(m, strat)

	return true, nil
}

func (n *BinaryDataNode) marshalAttribute(
	frag xpath.Fragment,
	rec MarshalRecord,
	owner, value any,
	nr *xpath.NamespaceResolver,
) (bool, error) {
	if value == nil {
		return false, nil
	}

	m := rec.Marshaller()
	strat := selectStrategy(n.desc, m, true)

	var text string
	var err error

	if strat == strategySwaRef {
		text, err = n.addSwaRef(m, owner, value)
	} else {
		text, err = n.schemaText(m, owner, value)
	}

	if err != nil {
		return false, err
	}

	rec.OpenStartGroupingElements(nr)
	rec.Attribute(frag.NamespaceURI, frag.LocalName, qualifiedName(frag, nr), text)
	n.count(m, strat)

	return true, nil
}

func (n *BinaryDataNode) writeSwaRef(
	frag xpath.Fragment,
	rec MarshalRecord,
	owner, value any,
	_ *xpath.NamespaceResolver,
) error {
	cid, err := n.addSwaRef(rec.Marshaller(), owner, value)
	if err != nil {
		return err
	}

	rec.CloseStartElement()
	rec.Characters(cid)

	n.logger(rec.Marshaller()).WithFields(logrus.Fields{
		logfields.Element:   frag.QualifiedName(),
		logfields.ContentID: cid,
	}).Debug("Wrote swaRef attachment")

	return nil
}

func (n *BinaryDataNode) addSwaRef(m *Marshaller, owner, value any) (string, error) {
	am := m.AttachmentMarshaller()

	if dh, ok := binarydata.DataHandlerFor(value, classification.Of(value)); ok {
		return am.AddSwaRefAttachment(dh)
	}

	data, err := m.ctx.binary.BytesForBinaryValue(value, n.desc.MimeTypeFor(owner))
	if err != nil {
		return "", err
	}

	return am.AddSwaRefBytes(data.Data)
}

// writeXOPInclude registers the value as an MTOM part and writes an
// xop:Include referencing it. When nr has no prefix for the XOP namespace
// the declaration goes on the Include element itself, through a resolver
// that lives only for this call.
func (n *BinaryDataNode) writeXOPInclude(
	frag xpath.Fragment,
	rec MarshalRecord,
	owner, value any,
	nr *xpath.NamespaceResolver,
) error {
	m := rec.Marshaller()
	am := m.AttachmentMarshaller()

	var cid string
	var err error

	if dh, ok := binarydata.DataHandlerFor(value, classification.Of(value)); ok {
		cid, err = am.AddMtomDataHandler(dh, frag.LocalName, frag.NamespaceURI)
	} else {
		var data binarydata.EncodedData

		data, err = m.ctx.binary.BytesForBinaryValue(value, n.desc.MimeTypeFor(owner))
		if err == nil {
			cid, err = am.AddMtomAttachment(data.Data, data.MimeType, frag.LocalName, frag.NamespaceURI)
		}
	}

	if err != nil {
		return err
	}

	prefix, declared := nr.ResolveNamespaceURI(attachment.XOPNamespaceURI)

	includeNR := nr
	if !declared {
		prefix = attachment.XOPPrefix
		includeNR = xpath.NewNamespaceResolver()
		includeNR.Put(prefix, attachment.XOPNamespaceURI)
	}

	include := xpath.Fragment{
		Prefix:       prefix,
		LocalName:    attachment.XOPInclude,
		NamespaceURI: attachment.XOPNamespaceURI,
	}

	rec.OpenStartElement(include, includeNR)
	rec.Attribute("", "href", "href", cid)

	if !declared {
		rec.Attribute(xpath.XMLNSNamespaceURI, prefix, "xmlns:"+prefix, attachment.XOPNamespaceURI)
	}

	rec.CloseStartElement()
	rec.EndElement(include, includeNR)

	n.logger(m).WithFields(logrus.Fields{
		logfields.Element:   frag.QualifiedName(),
		logfields.ContentID: cid,
	}).Debug("Wrote MTOM attachment")

	return nil
}

func (n *BinaryDataNode) writeInline(rec MarshalRecord, owner, value any) error {
	text, err := n.schemaText(rec.Marshaller(), owner, value)
	if err != nil {
		return err
	}

	rec.CloseStartElement()
	rec.Characters(text)

	return nil
}

// schemaText renders value as base64 (or hex) text. Byte slices convert
// directly; anything else has its bytes extracted first.
func (n *BinaryDataNode) schemaText(m *Marshaller, owner, value any) (string, error) {
	conv := m.ctx.conversions
	if isByteSlice(value) {
		return conv.ToSchemaText(value, n.schemaType())
	}

	data, err := m.ctx.binary.BytesForBinaryValue(value, n.desc.MimeTypeFor(owner))
	if err != nil {
		return "", err
	}

	return conv.ToSchemaText(data.Data, n.schemaType())
}

func (n *BinaryDataNode) schemaType() xpath.SchemaType {
	if st := n.desc.SchemaType(); st != "" {
		return st
	}

	return xpath.SchemaBase64Binary
}

func (n *BinaryDataNode) count(m *Marshaller, s strategy) {
	switch s {
	case strategySwaRef:
		m.ctx.metrics.MarshalSwaRef.Inc(1)
	case strategyMTOM:
		m.ctx.metrics.MarshalMTOM.Inc(1)
	default:
		m.ctx.metrics.MarshalInline.Inc(1)
	}
}

func (n *BinaryDataNode) logger(m *Marshaller) logrus.FieldLogger {
	return m.ctx.log.WithField(logfields.Attribute, n.desc.Attribute)
}

// StartElement implements NodeValue.
func (n *BinaryDataNode) StartElement(frag xpath.Fragment, rec *UnmarshalRecord, attrs []xml.Attr) error {
	rec.removeNullCapable(n.desc)

	if frag.Attribute {
		raw, ok := findAttr(attrs, frag)
		if !ok {
			return nil
		}

		rec.setPhase(n.desc, PhaseDone)

		return n.assignText(frag, rec, raw)
	}

	if !n.desc.InlineBinaryData && !n.desc.SwaRef && rec.unmarshaller.IsXOPPackage() {
		rec.pushHandler(newAttachmentHandler(n, frag))
		rec.setPhase(n.desc, PhaseDelegatedToAttachmentHandler)

		return nil
	}

	rec.resetText()
	rec.setPhase(n.desc, PhaseBufferingText)

	return nil
}

// EndElement implements NodeValue.
func (n *BinaryDataNode) EndElement(frag xpath.Fragment, rec *UnmarshalRecord) error {
	if rec.phase(n.desc) == PhaseDelegatedToAttachmentHandler {
		// the attachment handler has assigned the value already
		rec.resetText()
		rec.setPhase(n.desc, PhaseDone)

		return nil
	}

	text := rec.text()
	rec.resetText()
	rec.setPhase(n.desc, PhaseDone)

	return n.assignText(frag, rec, text)
}

// ApplyNullValue implements NullCapableValue.
func (n *BinaryDataNode) ApplyNullValue(rec *UnmarshalRecord) error {
	return applyNullValue(n.desc, rec)
}

func (n *BinaryDataNode) assignText(frag xpath.Fragment, rec *UnmarshalRecord, text string) error {
	value, ok, err := n.resolveText(rec, text)
	if err != nil {
		return rec.decodeError(n.desc, frag, err)
	}

	if !ok {
		return nil
	}

	return n.assign(rec, value)
}

// resolveText turns element or attribute text into bytes or a data handler.
// ok is false when there is nothing to assign.
func (n *BinaryDataNode) resolveText(rec *UnmarshalRecord, text string) (value any, ok bool, err error) {
	text = strings.TrimSpace(text)

	if n.desc.SwaRef {
		return n.resolveAttachment(rec, text)
	}

	if text == "" {
		return nil, false, nil
	}

	b, err := rec.ctx.conversions.FromSchemaText(text, n.schemaType(), classification.KindBytes)
	if err != nil {
		return nil, false, err
	}

	return b, true, nil
}

// resolveAttachment looks a content id up in the attachment unmarshaller.
// Without one the value is left unset.
func (n *BinaryDataNode) resolveAttachment(rec *UnmarshalRecord, cid string) (any, bool, error) {
	am := rec.unmarshaller.AttachmentUnmarshaller()
	if am == nil {
		rec.logger().WithFields(logrus.Fields{
			logfields.Attribute: n.desc.Attribute,
			logfields.ContentID: cid,
		}).Debug("No attachment unmarshaller, leaving value unset")

		return nil, false, nil
	}

	if cid == "" {
		return nil, false, nil
	}

	if n.desc.Classification == classification.KindDataHandler {
		dh, err := am.AttachmentAsDataHandler(cid)
		if err != nil {
			return nil, false, err
		}

		return dh, true, nil
	}

	b, err := am.AttachmentAsBytes(cid)
	if err != nil {
		return nil, false, err
	}

	return b, true, nil
}

// assign converts value to the attribute's classification and stores it.
func (n *BinaryDataNode) assign(rec *UnmarshalRecord, value any) error {
	v, err := n.desc.ToObjectValue(value, rec.ctx, rec.unmarshaller)
	if err != nil {
		return err
	}

	if n.desc.Classification != 0 {
		if v, err = rec.ctx.binary.ConvertObject(v, n.desc.Classification); err != nil {
			return fmt.Errorf("%s: %w", n.desc.Attribute, err)
		}
	}

	if n.collection {
		return n.desc.AddAttributeValue(rec.object, v)
	}

	return n.desc.SetAttributeValue(rec.object, v)
}

// BinaryDataCollectionNode maps a slice of binary values to one element per
// value. Each element is written by the single-value node through a
// CollectionMarshalContext.
type BinaryDataCollectionNode struct {
	*BinaryDataNode
}

// NewBinaryDataCollectionNode creates the node for d.
func NewBinaryDataCollectionNode(d *mapping.Descriptor) *BinaryDataCollectionNode {
	return &BinaryDataCollectionNode{BinaryDataNode: &BinaryDataNode{desc: d, collection: true}}
}

// Marshal implements NodeValue. An absent or empty collection writes nothing.
func (n *BinaryDataCollectionNode) Marshal(
	frag xpath.Fragment,
	rec MarshalRecord,
	obj any,
	s mapping.Session,
	nr *xpath.NamespaceResolver,
	_ MarshalContext,
) (bool, error) {
	if n.desc.ReadOnly {
		return false, nil
	}

	coll, err := n.desc.AttributeValue(obj)
	if err != nil || coll == nil {
		return false, err
	}

	rv := reflect.ValueOf(coll)
	if rv.Kind() != reflect.Slice {
		return false, fmt.Errorf("%s: %w", n.desc.Attribute, mapping.ErrNotCollection)
	}

	written := false

	for i := range rv.Len() {
		ok, err := n.BinaryDataNode.Marshal(frag, rec, obj, s, nr, CollectionMarshalContext{Element: rv.Index(i).Interface()})
		if err != nil {
			return false, err
		}

		written = written || ok
	}

	return written, nil
}

func isByteSlice(v any) bool {
	t := reflect.TypeOf(v)

	return t != nil && t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8
}

// isAbsent reports nil and typed nil pointers and slices.
func isAbsent(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
