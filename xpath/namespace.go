package xpath

import "sort"

// XMLNSNamespaceURI is the namespace of xmlns declarations.
const XMLNSNamespaceURI = "http://www.w3.org/2000/xmlns/"

// NamespaceResolver maps prefixes to namespace URIs. The empty prefix holds
// the default namespace.
//
// A resolver is shared by every element written from a descriptor; code that
// needs a declaration valid for a single element must build its own resolver
// instead of calling Put on the shared one.
type NamespaceResolver struct {
	byPrefix map[string]string
}

// NewNamespaceResolver returns an empty resolver.
func NewNamespaceResolver() *NamespaceResolver {
	return &NamespaceResolver{byPrefix: make(map[string]string)}
}

// Put declares prefix for uri.
func (r *NamespaceResolver) Put(prefix, uri string) {
	if r.byPrefix == nil {
		r.byPrefix = make(map[string]string)
	}

	r.byPrefix[prefix] = uri
}

// Resolve returns the URI bound to prefix.
func (r *NamespaceResolver) Resolve(prefix string) (string, bool) {
	if r == nil {
		return "", false
	}

	uri, ok := r.byPrefix[prefix]

	return uri, ok
}

// ResolveNamespaceURI returns a prefix bound to uri. When several prefixes
// share a URI the lexically smallest wins so output is stable.
func (r *NamespaceResolver) ResolveNamespaceURI(uri string) (string, bool) {
	if r == nil {
		return "", false
	}

	found := false
	best := ""

	for p, u := range r.byPrefix {
		if u != uri {
			continue
		}

		if !found || p < best {
			best = p
			found = true
		}
	}

	return best, found
}

// Prefixes returns the declared prefixes in sorted order.
func (r *NamespaceResolver) Prefixes() []string {
	if r == nil {
		return nil
	}

	out := make([]string, 0, len(r.byPrefix))
	for p := range r.byPrefix {
		out = append(out, p)
	}

	sort.Strings(out)

	return out
}

// Len returns the number of declarations.
func (r *NamespaceResolver) Len() int {
	if r == nil {
		return 0
	}

	return len(r.byPrefix)
}

// Clone returns an independent copy.
func (r *NamespaceResolver) Clone() *NamespaceResolver {
	c := NewNamespaceResolver()
	if r == nil {
		return c
	}

	for p, u := range r.byPrefix {
		c.byPrefix[p] = u
	}

	return c
}
