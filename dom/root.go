package dom

import "strings"

// Root is the synthetic container for a parsed document. It is not
// the document element; it is that element's unique parent. Dropping
// the Root releases the whole tree.
type Root struct {
	docnode
	name       string
	children   []Node
	rootElem   *Element
	decl       *XMLDecl
	declAt     int
	dtd        *DTD
	dtdAt      int
	namespaces []*Namespace
	wellFormed bool
}

func NewRoot(name string) *Root {
	return &Root{
		docnode: docnode{typ: RootNode},
		name:    name,
	}
}

// Name is the document's display name, from the parser configuration.
func (r *Root) Name() string { return r.name }

func (r *Root) Children() []Node { return r.children }

// RootElement is the document element, or nil when parsing never got
// that far.
func (r *Root) RootElement() *Element { return r.rootElem }

func (r *Root) SetRootElement(e *Element) { r.rootElem = e }

// XMLDecl returns the document's XML declaration and the child offset
// it was seen at, or (nil, -1).
func (r *Root) XMLDecl() (*XMLDecl, int) {
	if r.decl == nil {
		return nil, -1
	}
	return r.decl, r.declAt
}

func (r *Root) SetXMLDecl(d *XMLDecl) {
	r.decl = d
	r.declAt = len(r.children)
}

// DTD returns the doctype node and the child offset it was seen at,
// or (nil, -1).
func (r *Root) DTD() (*DTD, int) {
	if r.dtd == nil {
		return nil, -1
	}
	return r.dtd, r.dtdAt
}

func (r *Root) SetDTD(d *DTD) {
	r.dtd = d
	r.dtdAt = len(r.children)
}

// Namespaces are the global declarations seeded by the parser (the
// reserved xml and xmlns bindings).
func (r *Root) Namespaces() []*Namespace { return r.namespaces }

func (r *Root) AddNamespace(ns *Namespace) {
	ns.SetParent(r)
	r.namespaces = append(r.namespaces, ns)
}

// IsWellFormed reports whether the parse finished with zero errors
// and zero warnings.
func (r *Root) IsWellFormed() bool { return r.wellFormed }

func (r *Root) SetWellFormed(v bool) { r.wellFormed = v }

func (r *Root) AddChild(n Node) error {
	return addChild(r, &r.children, n)
}

func (r *Root) InsertChildAt(i int, n Node) error {
	return insertChildAt(r, &r.children, i, n)
}

func (r *Root) RemoveChild(n Node) error {
	return removeChild(r, &r.children, n)
}

// StringValue concatenates the string-values of the element and text
// children, matching the string-value of an XPath root node.
func (r *Root) StringValue() string {
	var sb strings.Builder
	for _, c := range r.children {
		switch c.Type() {
		case ElementNode, TextNode:
			sb.WriteString(c.StringValue())
		}
	}
	return sb.String()
}
