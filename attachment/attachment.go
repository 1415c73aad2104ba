// Package attachment defines how binary content is kept outside of an XML
// document and referenced from it.
//
// Two conventions are supported:
//
//   - swaRef (SOAP with Attachments): the element or attribute text is the
//     content id of the attachment.
//   - XOP/MTOM: the element contains an xop:Include child whose href
//     attribute is the content id.
//
// Marshallers talk to a Marshaller, unmarshallers to an Unmarshaller. Store
// implements both over an in-memory part table.
package attachment

import (
	"errors"
	"strings"
)

// XOP namespace and the prefix used when no prefix is declared for it.
const (
	XOPNamespaceURI = "http://www.w3.org/2004/08/xop/include"
	XOPPrefix       = "xop"
	XOPInclude      = "Include"

	cidScheme = "cid:"
)

var ErrNotFound = errors.New("attachment not found")

// Marshaller registers binary content while a document is written and
// returns the content id to reference it with.
type Marshaller interface {
	AddSwaRefAttachment(h *DataHandler) (string, error)
	AddSwaRefBytes(data []byte) (string, error)
	AddMtomAttachment(data []byte, mimeType, localName, namespaceURI string) (string, error)
	AddMtomDataHandler(h *DataHandler, localName, namespaceURI string) (string, error)
	IsXOPPackage() bool
}

// Unmarshaller resolves content ids found in a document.
type Unmarshaller interface {
	AttachmentAsDataHandler(contentID string) (*DataHandler, error)
	AttachmentAsBytes(contentID string) ([]byte, error)
	IsXOPPackage() bool
}

// ContentID prefixes id with the cid scheme.
func ContentID(id string) string {
	return cidScheme + id
}

// TrimContentID strips the cid scheme and surrounding angle brackets, if any.
func TrimContentID(ref string) string {
	ref = strings.TrimSpace(ref)
	ref = strings.TrimPrefix(ref, cidScheme)
	ref = strings.TrimPrefix(ref, "<")

	return strings.TrimSuffix(ref, ">")
}
