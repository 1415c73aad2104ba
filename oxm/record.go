package oxm

import (
	"oxmapper/mapping"
	"oxmapper/xpath"
)

// MarshalRecord receives the document as nodes write it. Records keep the
// first write error and ignore every call after it; the marshaller checks
// Err once the walk is over.
type MarshalRecord interface {
	// AddGroupingElement queues a wrapper element. It is written only if
	// something is written inside it.
	AddGroupingElement(frag xpath.Fragment)
	// RemoveGroupingElement pops the innermost wrapper, closing it if it
	// was opened.
	RemoveGroupingElement(nr *xpath.NamespaceResolver)
	// OpenStartGroupingElements writes queued wrappers that are not open
	// yet. Calling it with nothing queued is a no-op.
	OpenStartGroupingElements(nr *xpath.NamespaceResolver)
	CloseStartGroupingElements()

	OpenStartElement(frag xpath.Fragment, nr *xpath.NamespaceResolver)
	// Attribute adds an attribute to the element opened last. Namespace
	// declarations are attributes in the xmlns namespace.
	Attribute(namespaceURI, localName, qName, value string)
	CloseStartElement()
	Characters(text string)
	EndElement(frag xpath.Fragment, nr *xpath.NamespaceResolver)

	// Marshaller returns the marshaller driving the record.
	Marshaller() *Marshaller
	Err() error
}

// elementWriter is the part of a record the grouping stack needs.
type elementWriter interface {
	OpenStartElement(frag xpath.Fragment, nr *xpath.NamespaceResolver)
	EndElement(frag xpath.Fragment, nr *xpath.NamespaceResolver)
}

type groupingElement struct {
	frag xpath.Fragment
	open bool
}

// recordBase holds the state shared by the XML and JSON records.
type recordBase struct {
	marshaller *Marshaller
	groups     []groupingElement
	err        error
}

func (r *recordBase) Marshaller() *Marshaller {
	return r.marshaller
}

func (r *recordBase) Err() error {
	return r.err
}

func (r *recordBase) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *recordBase) AddGroupingElement(frag xpath.Fragment) {
	r.groups = append(r.groups, groupingElement{frag: frag})
}

func (r *recordBase) openGroups(w elementWriter, nr *xpath.NamespaceResolver) {
	for i := range r.groups {
		if r.groups[i].open {
			continue
		}

		w.OpenStartElement(r.groups[i].frag, nr)
		r.groups[i].open = true
	}
}

func (r *recordBase) removeGroup(w elementWriter, nr *xpath.NamespaceResolver) {
	if len(r.groups) == 0 {
		return
	}

	g := r.groups[len(r.groups)-1]
	r.groups = r.groups[:len(r.groups)-1]

	if g.open {
		w.EndElement(g.frag, nr)
	}
}

// qualifiedName is the name written for frag. Elements in a namespace that
// has no prefix in the path pick one up from nr when one is declared.
func qualifiedName(frag xpath.Fragment, nr *xpath.NamespaceResolver) string {
	if frag.Prefix != "" || frag.NamespaceURI == "" {
		return frag.QualifiedName()
	}

	if def, _ := nr.Resolve(""); def == frag.NamespaceURI {
		return frag.LocalName
	}

	if prefix, ok := nr.ResolveNamespaceURI(frag.NamespaceURI); ok && prefix != "" {
		return prefix + ":" + frag.LocalName
	}

	return frag.LocalName
}

// MarshalContext supplies the value a node writes. It lets one node serve
// both single-valued mappings and each element of a collection mapping.
type MarshalContext interface {
	AttributeValue(obj any, d *mapping.Descriptor) (any, error)
}

// ObjectMarshalContext reads the attribute from the object.
type ObjectMarshalContext struct{}

// AttributeValue implements MarshalContext.
func (ObjectMarshalContext) AttributeValue(obj any, d *mapping.Descriptor) (any, error) {
	return d.AttributeValue(obj)
}

// CollectionMarshalContext yields one element of a collection attribute.
type CollectionMarshalContext struct {
	Element any
}

// AttributeValue implements MarshalContext.
func (c CollectionMarshalContext) AttributeValue(any, *mapping.Descriptor) (any, error) {
	return c.Element, nil
}

// attributeInjector writes the mapped attributes of an element right after
// a value node opens it.
type attributeInjector struct {
	MarshalRecord
	write func() error
	done  bool
	err   error
}

func (a *attributeInjector) OpenStartElement(frag xpath.Fragment, nr *xpath.NamespaceResolver) {
	a.MarshalRecord.OpenStartElement(frag, nr)

	if !a.done {
		a.done = true
		a.err = a.write()
	}
}
