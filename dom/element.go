package dom

import (
	"strings"

	"github.com/ziord/robin/internal/orderedmap"
)

// Element is a parsed element node. Attributes are keyed by their
// qualified name and keep insertion order for rendering. Namespace
// declarations made on the element are owned by it; the bound
// namespace is a back reference into the declaration of this element
// or an ancestor.
type Element struct {
	docnode
	local      string
	prefix     string
	mode       Mode
	children   []Node
	attributes *orderedmap.Map[string, *Attribute]
	namespaces []*Namespace
	namespace  *Namespace
	flags      elemFlags
}

type elemFlags struct {
	hasChild      bool
	hasText       bool
	hasComment    bool
	hasAttribute  bool
	selfEnclosing bool
	void          bool
	namespaced    bool
}

func NewElement(local, prefix string, mode Mode) *Element {
	return &Element{
		docnode:    docnode{typ: ElementNode},
		local:      local,
		prefix:     prefix,
		mode:       mode,
		attributes: orderedmap.New[string, *Attribute](),
	}
}

func (e *Element) LocalName() string { return e.local }

func (e *Element) Prefix() string { return e.prefix }

// QualifiedName is prefix:local, or just local when there is no
// prefix.
func (e *Element) QualifiedName() string {
	if e.prefix == "" {
		return e.local
	}
	return e.prefix + ":" + e.local
}

func (e *Element) Mode() Mode { return e.mode }

func (e *Element) Children() []Node { return e.children }

func (e *Element) AddChild(n Node) error {
	return addChild(e, &e.children, n)
}

func (e *Element) InsertChildAt(i int, n Node) error {
	return insertChildAt(e, &e.children, i, n)
}

func (e *Element) RemoveChild(n Node) error {
	return removeChild(e, &e.children, n)
}

// SetAttribute registers an attribute under its qualified name.
// Qualified names are unique per element.
func (e *Element) SetAttribute(a *Attribute) error {
	a.SetParent(e)
	if err := e.attributes.Set(a.QualifiedName(), a); err != nil {
		return ErrDuplicateAttribute
	}
	return nil
}

func (e *Element) Attribute(qname string) (*Attribute, bool) {
	return e.attributes.Get(qname)
}

func (e *Element) RemoveAttribute(qname string) bool {
	return e.attributes.Delete(qname)
}

// Attributes returns the element's attributes in insertion order.
func (e *Element) Attributes() []*Attribute {
	attrs := make([]*Attribute, 0, e.attributes.Len())
	for _, a := range e.attributes.Range() {
		attrs = append(attrs, a)
	}
	return attrs
}

func (e *Element) AttributeCount() int { return e.attributes.Len() }

// DeclareNamespace records a namespace declaration made on this
// element's start tag.
func (e *Element) DeclareNamespace(ns *Namespace) {
	ns.SetParent(e)
	e.namespaces = append(e.namespaces, ns)
}

// Namespaces are the declarations made on this element, in source
// order.
func (e *Element) Namespaces() []*Namespace { return e.namespaces }

// Namespace is the namespace the element name is bound to, or nil.
func (e *Element) Namespace() *Namespace { return e.namespace }

func (e *Element) BindNamespace(ns *Namespace) {
	e.namespace = ns
	e.flags.namespaced = ns != nil
}

// InScopeNamespaces walks from the element to the root collecting the
// declarations in scope, nearest declaration winning per prefix. The
// xmlns binding is bookkeeping, not a namespace node, and is left
// out.
func (e *Element) InScopeNamespaces() []*Namespace {
	seen := map[string]bool{}
	var out []*Namespace
	collect := func(decls []*Namespace) {
		for _, ns := range decls {
			if ns.Prefix() == "xmlns" || seen[ns.Prefix()] {
				continue
			}
			seen[ns.Prefix()] = true
			out = append(out, ns)
		}
	}
	for n := Node(e); n != nil; n = n.Parent() {
		switch t := n.(type) {
		case *Element:
			collect(t.namespaces)
		case *Root:
			collect(t.namespaces)
		}
	}
	return out
}

// LookupNamespace resolves a prefix against the in-scope
// declarations. The empty prefix resolves to the default namespace.
func (e *Element) LookupNamespace(prefix string) *Namespace {
	for n := Node(e); n != nil; n = n.Parent() {
		var decls []*Namespace
		switch t := n.(type) {
		case *Element:
			decls = t.namespaces
		case *Root:
			decls = t.namespaces
		}
		for _, ns := range decls {
			if ns.Prefix() == prefix {
				return ns
			}
		}
	}
	return nil
}

func (e *Element) HasChild() bool        { return e.flags.hasChild }
func (e *Element) HasText() bool         { return e.flags.hasText }
func (e *Element) HasComment() bool      { return e.flags.hasComment }
func (e *Element) HasAttribute() bool    { return e.flags.hasAttribute }
func (e *Element) IsSelfEnclosing() bool { return e.flags.selfEnclosing }
func (e *Element) IsVoid() bool          { return e.flags.void }
func (e *Element) IsNamespaced() bool    { return e.flags.namespaced }

func (e *Element) SetSelfEnclosing(v bool) { e.flags.selfEnclosing = v }

func (e *Element) SetVoid(v bool) { e.flags.void = v }

// RecomputeFlags refreshes the derived booleans. The parser calls it
// once when the element closes; code mutating an element afterwards
// is expected to call it again.
func (e *Element) RecomputeFlags() {
	e.flags.hasChild = len(e.children) > 0
	e.flags.hasText = false
	e.flags.hasComment = false
	for _, c := range e.children {
		switch c.Type() {
		case TextNode:
			e.flags.hasText = true
		case CommentNode:
			e.flags.hasComment = true
		}
	}
	e.flags.hasAttribute = e.attributes.Len() > 0
	e.flags.namespaced = e.namespace != nil
}

// StringValue concatenates all descendant text, per the XPath
// string-value of an element.
func (e *Element) StringValue() string {
	var sb strings.Builder
	var walk func(*Element)
	walk = func(el *Element) {
		for _, c := range el.children {
			switch t := c.(type) {
			case *Text:
				sb.WriteString(t.Content())
			case *Element:
				walk(t)
			}
		}
	}
	walk(e)
	return sb.String()
}
