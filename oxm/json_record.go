package oxm

import (
	"io"

	jsoniter "github.com/json-iterator/go"

	"oxmapper/xpath"
)

const (
	// JSONAttributePrefix marks keys that came from XML attributes.
	JSONAttributePrefix = "@"
	// JSONValueKey holds element text when the element also has attributes
	// or children.
	JSONValueKey = "value"
)

var (
	compactJSON   = jsoniter.Config{EscapeHTML: true}.Froze()
	formattedJSON = jsoniter.Config{EscapeHTML: true, IndentionStep: 2}.Froze()
)

// JSONRecord writes the document as JSON. Elements become object keys,
// prefixes are dropped, and repeated sibling elements become arrays. An
// element that was opened and closed with no content is written as null.
//
// The document is collected as a small tree and streamed out by EndDocument,
// since a key cannot be known to repeat until its parent closes.
type JSONRecord struct {
	recordBase
	stream *jsoniter.Stream
	root   *jsonNode
	stack  []*jsonNode
}

type jsonNode struct {
	name     string
	attrs    []jsonAttr
	text     *string
	children []*jsonNode
}

type jsonAttr struct {
	name  string
	value string
}

// NewJSONRecord writes to w on behalf of m.
func NewJSONRecord(w io.Writer, m *Marshaller) *JSONRecord {
	cfg := compactJSON
	if m.formatted {
		cfg = formattedJSON
	}

	return &JSONRecord{
		recordBase: recordBase{marshaller: m},
		stream:     jsoniter.NewStream(cfg, w, 512),
		root:       &jsonNode{},
	}
}

// StartDocument implements the document callbacks; JSON has no prolog.
func (r *JSONRecord) StartDocument() {}

// EndDocument writes the collected tree.
func (r *JSONRecord) EndDocument() {
	if r.err != nil {
		return
	}

	r.stream.WriteObjectStart()
	r.writeMembers(r.root.children)
	r.stream.WriteObjectEnd()

	if r.stream.Error != nil {
		r.fail(r.stream.Error)
		return
	}

	r.fail(r.stream.Flush())
}

func (r *JSONRecord) OpenStartGroupingElements(nr *xpath.NamespaceResolver) {
	r.openGroups(r, nr)
}

func (r *JSONRecord) CloseStartGroupingElements() {}

func (r *JSONRecord) RemoveGroupingElement(nr *xpath.NamespaceResolver) {
	r.removeGroup(r, nr)
}

func (r *JSONRecord) OpenStartElement(frag xpath.Fragment, _ *xpath.NamespaceResolver) {
	n := &jsonNode{name: frag.LocalName}
	parent := r.current()
	parent.children = append(parent.children, n)
	r.stack = append(r.stack, n)
}

func (r *JSONRecord) Attribute(namespaceURI, localName, _, value string) {
	if namespaceURI == xpath.XMLNSNamespaceURI {
		return
	}

	if len(r.stack) == 0 {
		r.fail(errAttributeOutsideStart)
		return
	}

	n := r.current()
	n.attrs = append(n.attrs, jsonAttr{name: localName, value: value})
}

func (r *JSONRecord) CloseStartElement() {}

func (r *JSONRecord) Characters(text string) {
	n := r.current()
	if n.text == nil {
		n.text = new(string)
	}

	*n.text += text
}

func (r *JSONRecord) EndElement(xpath.Fragment, *xpath.NamespaceResolver) {
	if len(r.stack) > 0 {
		r.stack = r.stack[:len(r.stack)-1]
	}
}

func (r *JSONRecord) current() *jsonNode {
	if len(r.stack) == 0 {
		return r.root
	}

	return r.stack[len(r.stack)-1]
}

// writeMembers writes children as object members, grouping same-named
// siblings into one array member at the position of the first.
func (r *JSONRecord) writeMembers(children []*jsonNode) {
	byName := make(map[string][]*jsonNode, len(children))
	order := make([]string, 0, len(children))

	for _, c := range children {
		if _, seen := byName[c.name]; !seen {
			order = append(order, c.name)
		}

		byName[c.name] = append(byName[c.name], c)
	}

	for i, name := range order {
		if i > 0 {
			r.stream.WriteMore()
		}

		r.stream.WriteObjectField(name)

		group := byName[name]
		if len(group) == 1 {
			r.writeNode(group[0])
			continue
		}

		r.stream.WriteArrayStart()

		for j, n := range group {
			if j > 0 {
				r.stream.WriteMore()
			}

			r.writeNode(n)
		}

		r.stream.WriteArrayEnd()
	}
}

func (r *JSONRecord) writeNode(n *jsonNode) {
	if len(n.attrs) == 0 && len(n.children) == 0 {
		if n.text == nil {
			r.stream.WriteNil()
		} else {
			r.stream.WriteString(*n.text)
		}

		return
	}

	r.stream.WriteObjectStart()

	first := true
	more := func() {
		if !first {
			r.stream.WriteMore()
		}

		first = false
	}

	for _, a := range n.attrs {
		more()
		r.stream.WriteObjectField(JSONAttributePrefix + a.name)
		r.stream.WriteString(a.value)
	}

	if n.text != nil {
		more()
		r.stream.WriteObjectField(JSONValueKey)
		r.stream.WriteString(*n.text)
	}

	if len(n.children) > 0 {
		more()
		r.writeMembers(n.children)
	}

	r.stream.WriteObjectEnd()
}
