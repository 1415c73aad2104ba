package oxm

import (
	"encoding/xml"
	"strings"

	"oxmapper/attachment"
	"oxmapper/xpath"
)

// contentHandler receives document events. The UnmarshalRecord is the
// handler at the bottom of the stack; nodes push delegates above it.
type contentHandler interface {
	startElement(rec *UnmarshalRecord, se xml.StartElement) error
	characters(rec *UnmarshalRecord, data []byte)
	endElement(rec *UnmarshalRecord, ee xml.EndElement) error
}

// attachmentHandler takes over the content of an XOP-eligible element. An
// xop:Include child is resolved through the attachment unmarshaller and
// assigned at once. If the element holds base64 text instead, the text is
// decoded when the element ends. Either way the value is assigned here, and
// the handler pops itself before passing the end of the owning element on.
type attachmentHandler struct {
	node  *BinaryDataNode
	owner xpath.Fragment
	depth int
	seen  bool
	text  strings.Builder
}

func newAttachmentHandler(n *BinaryDataNode, owner xpath.Fragment) *attachmentHandler {
	return &attachmentHandler{node: n, owner: owner}
}

func (h *attachmentHandler) startElement(rec *UnmarshalRecord, se xml.StartElement) error {
	h.depth++

	if h.depth != 1 || se.Name.Space != attachment.XOPNamespaceURI || se.Name.Local != attachment.XOPInclude {
		return nil
	}

	h.seen = true

	href, _ := findAttr(se.Attr, xpath.Fragment{LocalName: "href"})

	value, ok, err := h.node.resolveAttachment(rec, strings.TrimSpace(href))
	if err != nil {
		return rec.decodeError(h.node.desc, h.owner, err)
	}

	if !ok {
		return nil
	}

	return h.node.assign(rec, value)
}

func (h *attachmentHandler) characters(_ *UnmarshalRecord, data []byte) {
	if h.depth == 0 {
		h.text.Write(data)
	}
}

func (h *attachmentHandler) endElement(rec *UnmarshalRecord, ee xml.EndElement) error {
	if h.depth > 0 {
		h.depth--
		return nil
	}

	rec.popHandler()

	if !h.seen {
		if err := h.node.assignText(h.owner, rec, h.text.String()); err != nil {
			return err
		}
	}

	return rec.endElement(rec, ee)
}
