package oxm

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"oxmapper/internal/logging/logfields"
	"oxmapper/mapping"
	"oxmapper/xpath"
)

// UnmarshalRecord holds the state of reading one object from a document:
// the object being filled, the text buffer, where in the class's document
// shape the reader is, and the phase of every node.
type UnmarshalRecord struct {
	unmarshaller *Unmarshaller
	ctx          *Context
	class        *mapping.ClassDescriptor
	object       any

	// path is the stack of mapped elements entered so far, root first.
	path []*treeNode
	// skip counts the depth inside an element that has no mapping.
	skip int
	buf  strings.Builder

	phases      map[*mapping.Descriptor]Phase
	nullCapable []NullCapableValue
	handlers    []contentHandler
}

func newUnmarshalRecord(u *Unmarshaller, cd *mapping.ClassDescriptor, obj any) *UnmarshalRecord {
	tree := u.ctx.trees[cd]

	r := &UnmarshalRecord{
		unmarshaller: u,
		ctx:          u.ctx,
		class:        cd,
		object:       obj,
		path:         []*treeNode{tree},
		phases:       make(map[*mapping.Descriptor]Phase, len(cd.Mappings)),
	}
	r.handlers = []contentHandler{r}
	r.collectNullCapable(tree)

	return r
}

func (r *UnmarshalRecord) collectNullCapable(t *treeNode) {
	for _, a := range t.attributes {
		if nc, ok := a.value.(NullCapableValue); ok {
			r.nullCapable = append(r.nullCapable, nc)
		}
	}

	if nc, ok := t.value.(NullCapableValue); ok {
		r.nullCapable = append(r.nullCapable, nc)
	}

	for _, c := range t.children {
		r.collectNullCapable(c)
	}
}

// CurrentObject returns the object being filled.
func (r *UnmarshalRecord) CurrentObject() any {
	return r.object
}

// Phase returns the phase of the node mapping d.
func (r *UnmarshalRecord) Phase(d *mapping.Descriptor) Phase {
	return r.phase(d)
}

func (r *UnmarshalRecord) phase(d *mapping.Descriptor) Phase {
	return r.phases[d]
}

func (r *UnmarshalRecord) setPhase(d *mapping.Descriptor, p Phase) {
	r.phases[d] = p
}

func (r *UnmarshalRecord) text() string {
	return r.buf.String()
}

func (r *UnmarshalRecord) resetText() {
	r.buf.Reset()
}

// removeNullCapable records that the document mentions d, so its null
// value must not be applied.
func (r *UnmarshalRecord) removeNullCapable(d *mapping.Descriptor) {
	for i, nc := range r.nullCapable {
		if nc.Descriptor() == d {
			r.nullCapable = append(r.nullCapable[:i], r.nullCapable[i+1:]...)
			return
		}
	}
}

func (r *UnmarshalRecord) top() contentHandler {
	return r.handlers[len(r.handlers)-1]
}

func (r *UnmarshalRecord) pushHandler(h contentHandler) {
	r.handlers = append(r.handlers, h)
}

func (r *UnmarshalRecord) popHandler() {
	if len(r.handlers) > 1 {
		r.handlers = r.handlers[:len(r.handlers)-1]
	}
}

func (r *UnmarshalRecord) done() bool {
	return len(r.path) == 0
}

func (r *UnmarshalRecord) logger() logrus.FieldLogger {
	return r.ctx.log.WithField(logfields.Class, r.class.Name)
}

// startAttributes hands the mapped attributes present on an element to
// their nodes.
func (r *UnmarshalRecord) startAttributes(t *treeNode, attrs []xml.Attr) error {
	for _, a := range t.attributes {
		if _, ok := findAttr(attrs, a.frag); !ok {
			continue
		}

		if err := a.value.StartElement(a.frag, r, attrs); err != nil {
			return err
		}
	}

	return nil
}

func (r *UnmarshalRecord) startElement(_ *UnmarshalRecord, se xml.StartElement) error {
	if r.skip > 0 {
		r.skip++
		return nil
	}

	cur := r.path[len(r.path)-1]

	child := cur.child(se.Name.Space, se.Name.Local)
	if child == nil {
		r.skip = 1

		return r.unmarshaller.report(ValidationEvent{
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("unexpected element {%s}%s", se.Name.Space, se.Name.Local),
			Element:  se.Name.Local,
		})
	}

	r.path = append(r.path, child)

	if child.value != nil {
		if err := child.value.StartElement(child.frag, r, se.Attr); err != nil {
			return err
		}
	}

	return r.startAttributes(child, se.Attr)
}

func (r *UnmarshalRecord) characters(_ *UnmarshalRecord, data []byte) {
	if r.skip == 0 {
		r.buf.Write(data)
	}
}

func (r *UnmarshalRecord) endElement(_ *UnmarshalRecord, _ xml.EndElement) error {
	if r.skip > 0 {
		r.skip--
		return nil
	}

	cur := r.path[len(r.path)-1]
	r.path = r.path[:len(r.path)-1]

	if cur.value != nil {
		return cur.value.EndElement(cur.frag, r)
	}

	return nil
}

// finish applies null values for every node the document never mentioned.
func (r *UnmarshalRecord) finish() error {
	for _, nc := range r.nullCapable {
		if err := nc.ApplyNullValue(r); err != nil {
			return err
		}
	}

	r.nullCapable = nil

	return nil
}

// decodeError routes a decode failure through the validation event handler.
// It returns nil when the handler lets unmarshalling continue.
func (r *UnmarshalRecord) decodeError(d *mapping.Descriptor, frag xpath.Fragment, err error) error {
	r.ctx.metrics.UnmarshalDecodeErrors.Inc(1)

	de := &DecodeError{Attribute: d.Attribute, Element: frag.QualifiedName(), Err: err}

	return r.unmarshaller.report(ValidationEvent{
		Severity: SeverityError,
		Message:  de.Error(),
		Element:  frag.QualifiedName(),
		Err:      de,
	})
}
