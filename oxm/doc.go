// Package oxm marshals bound Go objects to XML or JSON documents and reads
// XML documents back into objects.
//
// A Context is built once from a mapping.Project. Every mapped attribute
// gets a node (BinaryDataNode, BinaryDataCollectionNode or DirectNode)
// placed in a per-class tree that mirrors the document shape, so mappings
// sharing a path prefix share its wrapper elements.
//
// Binary attributes are written in exactly one of three ways:
//
//   - swaRef: the mapping asks for it and the marshaller has an attachment
//     marshaller. The element text is the content id.
//   - XOP/MTOM: the attachment marshaller is an XOP package and the mapping
//     does not force inlining. The element holds an xop:Include whose href
//     is the content id.
//   - inline: base64 (or hexBinary) text. This is the fallback.
//
// Reading is driven by encoding/xml tokens. Each UnmarshalRecord keeps the
// phase of every node and a stack of event handlers; an XOP-eligible
// element pushes a handler that resolves the xop:Include and pops itself
// when the element ends.
package oxm
