package oxm

import (
	"encoding/xml"
	"errors"
	"io"

	"oxmapper/xpath"
)

var errAttributeOutsideStart = errors.New("attribute written outside of a start element")

// XMLRecord writes the document as XML text. The start tag of the element
// opened last is held back until content follows so attributes can still be
// added to it.
type XMLRecord struct {
	recordBase
	enc     *xml.Encoder
	pending *xml.StartElement
}

// NewXMLRecord writes to w on behalf of m.
func NewXMLRecord(w io.Writer, m *Marshaller) *XMLRecord {
	enc := xml.NewEncoder(w)
	if m.formatted {
		enc.Indent("", "  ")
	}

	return &XMLRecord{recordBase: recordBase{marshaller: m}, enc: enc}
}

// StartDocument writes the XML declaration.
func (r *XMLRecord) StartDocument() {
	r.encode(xml.ProcInst{Target: "xml", Inst: []byte(`version="1.0" encoding="UTF-8"`)})
}

// EndDocument flushes everything written so far.
func (r *XMLRecord) EndDocument() {
	r.flushStart()

	if r.err == nil {
		r.fail(r.enc.Flush())
	}
}

func (r *XMLRecord) OpenStartGroupingElements(nr *xpath.NamespaceResolver) {
	r.openGroups(r, nr)
}

func (r *XMLRecord) CloseStartGroupingElements() {
	r.flushStart()
}

func (r *XMLRecord) RemoveGroupingElement(nr *xpath.NamespaceResolver) {
	r.removeGroup(r, nr)
}

func (r *XMLRecord) OpenStartElement(frag xpath.Fragment, nr *xpath.NamespaceResolver) {
	r.flushStart()
	r.pending = &xml.StartElement{Name: xml.Name{Local: qualifiedName(frag, nr)}}
}

func (r *XMLRecord) Attribute(_, _, qName, value string) {
	if r.pending == nil {
		r.fail(errAttributeOutsideStart)
		return
	}

	r.pending.Attr = append(r.pending.Attr, xml.Attr{Name: xml.Name{Local: qName}, Value: value})
}

func (r *XMLRecord) CloseStartElement() {
	r.flushStart()
}

func (r *XMLRecord) Characters(text string) {
	r.flushStart()
	r.encode(xml.CharData(text))
}

func (r *XMLRecord) EndElement(frag xpath.Fragment, nr *xpath.NamespaceResolver) {
	r.flushStart()
	r.encode(xml.EndElement{Name: xml.Name{Local: qualifiedName(frag, nr)}})
}

func (r *XMLRecord) flushStart() {
	if r.pending == nil {
		return
	}

	start := *r.pending
	r.pending = nil
	r.encode(start)
}

func (r *XMLRecord) encode(t xml.Token) {
	if r.err != nil {
		return
	}

	r.fail(r.enc.EncodeToken(t))
}
