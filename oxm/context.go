package oxm

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/uber-go/tally/v4"

	"oxmapper/binarydata"
	"oxmapper/conversion"
	"oxmapper/internal/logging"
	"oxmapper/internal/logging/logfields"
	"oxmapper/mapping"
	"oxmapper/xpath"
)

var log = logging.ForSubsys("oxm")

// Context is a binding context: the resolved project plus everything the
// nodes share at run time. It is immutable once built and safe for
// concurrent use; marshallers and unmarshallers created from it are cheap.
type Context struct {
	project     *mapping.Project
	conversions *conversion.Registry
	binary      *binarydata.Helper
	log         logrus.FieldLogger
	metrics     *Metrics

	trees map[*mapping.ClassDescriptor]*treeNode
}

type contextOptions struct {
	logger      logrus.FieldLogger
	scope       tally.Scope
	conversions *conversion.Registry
	detectMime  bool
}

// Option configures a Context.
type Option func(*contextOptions)

// WithLogger replaces the package logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *contextOptions) { o.logger = l }
}

// WithMetrics reports counters to scope.
func WithMetrics(scope tally.Scope) Option {
	return func(o *contextOptions) { o.scope = scope }
}

// WithConversions uses reg instead of a fresh default registry, e.g. to
// share custom rules.
func WithConversions(reg *conversion.Registry) Option {
	return func(o *contextOptions) { o.conversions = reg }
}

// WithMimeDetection sniffs binary content for a MIME type when a mapping
// does not declare one.
func WithMimeDetection() Option {
	return func(o *contextOptions) { o.detectMime = true }
}

// NewContext builds the node trees of every class in project.
func NewContext(project *mapping.Project, opts ...Option) (*Context, error) {
	o := contextOptions{
		logger: log,
		scope:  tally.NoopScope,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.conversions == nil {
		o.conversions = conversion.NewRegistry()
	}

	var helperOpts []binarydata.Option
	if o.detectMime {
		helperOpts = append(helperOpts, binarydata.WithMimeDetection())
	}

	c := &Context{
		project:     project,
		conversions: o.conversions,
		binary:      binarydata.New(o.conversions, helperOpts...),
		log:         o.logger,
		metrics:     NewMetrics(o.scope),
		trees:       make(map[*mapping.ClassDescriptor]*treeNode, len(project.Classes)),
	}

	for _, cd := range project.Classes {
		tree, err := buildTree(cd)
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", cd.Name, err)
		}

		c.trees[cd] = tree
		c.log.WithFields(logrus.Fields{
			logfields.Class:   cd.Name,
			logfields.Element: cd.Root.QualifiedName(),
		}).Debug("Class bound")
	}

	return c, nil
}

// Conversions implements mapping.Session.
func (c *Context) Conversions() *conversion.Registry {
	return c.conversions
}

// Project returns the bound project.
func (c *Context) Project() *mapping.Project {
	return c.project
}

// BinaryHelper returns the helper used to read binary values.
func (c *Context) BinaryHelper() *binarydata.Helper {
	return c.binary
}

// treeNode is one element of a class's document shape. Mappings sharing a
// path prefix share the grouping elements of that prefix.
type treeNode struct {
	frag xpath.Fragment
	// value maps the content of this element, nil for grouping elements.
	value NodeValue
	// attributes are mapped attributes of this element.
	attributes []*treeNode
	children   []*treeNode
}

func (t *treeNode) child(namespaceURI, localName string) *treeNode {
	for _, c := range t.children {
		if c.frag.Matches(namespaceURI, localName) {
			return c
		}
	}

	return nil
}

func buildTree(cd *mapping.ClassDescriptor) (*treeNode, error) {
	root := &treeNode{frag: cd.Root}

	for _, d := range cd.Mappings {
		nv, err := newNodeValue(d)
		if err != nil {
			return nil, err
		}

		cur := root
		for _, frag := range d.Field.ElementFragments() {
			next := cur.child(frag.NamespaceURI, frag.LocalName)
			if next == nil {
				if cur.value != nil && cur != root {
					return nil, fmt.Errorf("%s: element <%s> already holds a value", d.Attribute, cur.frag.QualifiedName())
				}

				next = &treeNode{frag: frag}
				cur.children = append(cur.children, next)
			}

			cur = next
		}

		if d.Field.IsAttribute() {
			if d.Kind == mapping.KindBinaryCollection {
				return nil, fmt.Errorf("%s: collections cannot be mapped to an attribute", d.Attribute)
			}

			cur.attributes = append(cur.attributes, &treeNode{frag: d.Field.LastFragment(), value: nv})

			continue
		}

		if cur == root {
			return nil, fmt.Errorf("%s: the root element cannot hold a value", d.Attribute)
		}

		if cur.value != nil || len(cur.children) > 0 {
			return nil, fmt.Errorf("%s: element <%s> is already mapped", d.Attribute, cur.frag.QualifiedName())
		}

		cur.value = nv
	}

	return root, nil
}

func newNodeValue(d *mapping.Descriptor) (NodeValue, error) {
	switch d.Kind {
	case mapping.KindBinary:
		return NewBinaryDataNode(d), nil
	case mapping.KindBinaryCollection:
		return NewBinaryDataCollectionNode(d), nil
	case mapping.KindDirect, "":
		return NewDirectNode(d), nil
	default:
		return nil, fmt.Errorf("%s: unknown mapping kind %q", d.Attribute, d.Kind)
	}
}
