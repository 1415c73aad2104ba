package oxm

import (
	"encoding/xml"
	"strings"

	"oxmapper/classification"
	"oxmapper/mapping"
	"oxmapper/xpath"
)

// DirectNode maps a simple value (string, number, boolean, time) to element
// text or to an XML attribute.
type DirectNode struct {
	desc *mapping.Descriptor
}

// NewDirectNode creates the node for d.
func NewDirectNode(d *mapping.Descriptor) *DirectNode {
	return &DirectNode{desc: d}
}

// Descriptor implements NodeValue.
func (n *DirectNode) Descriptor() *mapping.Descriptor {
	return n.desc
}

// Marshal implements NodeValue.
func (n *DirectNode) Marshal(
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

	text, err := rec.Marshaller().ctx.conversions.ToSchemaText(value, n.desc.SchemaType())
	if err != nil {
		return false, err
	}

	if frag.Attribute {
		if value == nil {
			return false, nil
		}

		rec.OpenStartGroupingElements(nr)
		rec.Attribute(frag.NamespaceURI, frag.LocalName, qualifiedName(frag, nr), text)

		return true, nil
	}

	rec.OpenStartGroupingElements(nr)
	rec.OpenStartElement(frag, nr)
	rec.CloseStartElement()

	if value != nil {
		rec.Characters(text)
	}

	rec.EndElement(frag, nr)

	return true, nil
}

// StartElement implements NodeValue.
func (n *DirectNode) StartElement(frag xpath.Fragment, rec *UnmarshalRecord, attrs []xml.Attr) error {
	rec.removeNullCapable(n.desc)

	if frag.Attribute {
		raw, ok := findAttr(attrs, frag)
		if !ok {
			return nil
		}

		rec.setPhase(n.desc, PhaseDone)

		return n.assignText(frag, rec, raw)
	}

	rec.resetText()
	rec.setPhase(n.desc, PhaseBufferingText)

	return nil
}

// EndElement implements NodeValue.
func (n *DirectNode) EndElement(frag xpath.Fragment, rec *UnmarshalRecord) error {
	text := rec.text()
	rec.resetText()
	rec.setPhase(n.desc, PhaseDone)

	return n.assignText(frag, rec, text)
}

// ApplyNullValue implements NullCapableValue.
func (n *DirectNode) ApplyNullValue(rec *UnmarshalRecord) error {
	return applyNullValue(n.desc, rec)
}

// assignText parses text as the attribute's type. Converters receive the
// text unparsed. Empty text leaves non-string attributes unset.
func (n *DirectNode) assignText(frag xpath.Fragment, rec *UnmarshalRecord, text string) error {
	var value any = text

	if n.desc.Converter() == nil {
		kind := n.desc.Classification
		if kind != classification.KindString && kind != classification.KindAny {
			text = strings.TrimSpace(text)
			if text == "" {
				return nil
			}
		}

		v, err := rec.ctx.conversions.FromSchemaText(text, n.desc.SchemaType(), kind)
		if err != nil {
			return rec.decodeError(n.desc, frag, err)
		}

		value = v
	}

	v, err := n.desc.ToObjectValue(value, rec.ctx, rec.unmarshaller)
	if err != nil {
		return err
	}

	return n.desc.SetAttributeValue(rec.object, v)
}
