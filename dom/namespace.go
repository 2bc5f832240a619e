package dom

// Namespace is a prefix→URI binding declared on an element, or one of
// the two global bindings seeded at the root. The empty prefix marks
// a default namespace declaration.
type Namespace struct {
	docnode
	prefix    string
	uri       string
	isDefault bool
	isGlobal  bool
}

func NewNamespace(prefix, uri string) *Namespace {
	return &Namespace{
		docnode:   docnode{typ: NamespaceNode},
		prefix:    prefix,
		uri:       uri,
		isDefault: prefix == "",
	}
}

// NewGlobalNamespace creates one of the reserved bindings attached to
// the root (xml, xmlns).
func NewGlobalNamespace(prefix, uri string) *Namespace {
	ns := NewNamespace(prefix, uri)
	ns.isGlobal = true
	return ns
}

func (n *Namespace) Prefix() string { return n.prefix }

func (n *Namespace) URI() string { return n.uri }

func (n *Namespace) IsDefault() bool { return n.isDefault }

func (n *Namespace) IsGlobal() bool { return n.isGlobal }

// StringValue of a namespace node is its URI.
func (n *Namespace) StringValue() string { return n.uri }
