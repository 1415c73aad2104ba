package oxm

import (
	"encoding/xml"

	"oxmapper/mapping"
	"oxmapper/xpath"
)

// NodeValue writes one mapped attribute into a MarshalRecord and reads it
// back from document events. Nodes hold no per-call state: the phase of a
// node within one document lives in the UnmarshalRecord.
type NodeValue interface {
	Descriptor() *mapping.Descriptor

	// Marshal writes the value of the attribute found through mc. It
	// returns false when nothing was written.
	Marshal(frag xpath.Fragment, rec MarshalRecord, obj any, s mapping.Session,
		nr *xpath.NamespaceResolver, mc MarshalContext) (bool, error)

	// StartElement is called when the element owning the value starts. For
	// attribute-borne values attrs holds the attributes of that element.
	StartElement(frag xpath.Fragment, rec *UnmarshalRecord, attrs []xml.Attr) error
	// EndElement is called when the element owning the value ends. It is
	// never called for attribute-borne values.
	EndElement(frag xpath.Fragment, rec *UnmarshalRecord) error
}

// NullCapableValue is a node that can assign a default when the document
// never mentions its attribute.
type NullCapableValue interface {
	NodeValue
	ApplyNullValue(rec *UnmarshalRecord) error
}

// Phase is the state of a node within one document.
type Phase int

const (
	PhaseAwaitingStart Phase = iota
	PhaseBufferingText
	PhaseDelegatedToAttachmentHandler
	PhaseDone
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseAwaitingStart:
		return "awaiting-start"
	case PhaseBufferingText:
		return "buffering-text"
	case PhaseDelegatedToAttachmentHandler:
		return "delegated-to-attachment-handler"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// applyNullValue assigns the mapping's null value, if it has one.
func applyNullValue(d *mapping.Descriptor, rec *UnmarshalRecord) error {
	if d.NullValue == nil {
		return nil
	}

	v, err := d.ToObjectValue(d.NullValue, rec.ctx, rec.unmarshaller)
	if err != nil {
		return err
	}

	if err := d.SetAttributeValue(rec.object, v); err != nil {
		return err
	}

	rec.ctx.metrics.UnmarshalNullValues.Inc(1)

	return nil
}

func findAttr(attrs []xml.Attr, frag xpath.Fragment) (string, bool) {
	for _, a := range attrs {
		if a.Name.Local == frag.LocalName && a.Name.Space == frag.NamespaceURI {
			return a.Value, true
		}
	}

	return "", false
}
