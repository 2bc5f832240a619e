// Package dom holds the document tree shared by the markup parser and
// the query engine. A parse produces a *Root; every other node hangs
// off it. Nodes carry a document-order position assigned at parse
// time, an index into their parent's child list, and a back link to
// the parent. The back links are navigation only; ownership always
// runs downward from the Root.
package dom

// Reserved namespace URIs.
const (
	XMLNamespaceURI   = "http://www.w3.org/XML/1998/namespace"
	XMLNSNamespaceURI = "http://www.w3.org/2000/xmlns/"
	XHTMLNamespaceURI = "http://www.w3.org/1999/xhtml"
)

type NodeType int

const (
	RootNode NodeType = iota + 1
	ElementNode
	AttributeNode
	NamespaceNode
	TextNode
	CommentNode
	PINode
	DTDNode
	XMLDeclNode
)

func (t NodeType) String() string {
	switch t {
	case RootNode:
		return "Root"
	case ElementNode:
		return "Element"
	case AttributeNode:
		return "Attribute"
	case NamespaceNode:
		return "Namespace"
	case TextNode:
		return "Text"
	case CommentNode:
		return "Comment"
	case PINode:
		return "ProcessingInstruction"
	case DTDNode:
		return "DTD"
	case XMLDeclNode:
		return "XMLDecl"
	}
	return "Unknown"
}

// Mode records which parser dialect produced an element.
type Mode int

const (
	ModeXML Mode = iota
	ModeHTML
)

func (m Mode) String() string {
	if m == ModeHTML {
		return "HTML"
	}
	return "XML"
}

// Node is implemented by all nine node variants.
type Node interface {
	Type() NodeType

	// Position is the node's document-order number, assigned in a
	// single pre-order pass at parse time. Positions of surviving
	// nodes stay valid for intra-tree comparison after mutation, but
	// they are never renumbered. Inserting a node does not assign it a
	// position: it keeps the one it has, which is zero for a freshly
	// constructed node, so such a node sorts before every parse-time
	// node unless SetPosition gives it a larger one.
	Position() int
	SetPosition(int)

	// Index is the node's offset within its parent's child list.
	Index() int
	SetIndex(int)

	Parent() Node
	SetParent(Node)

	// StringValue is the XPath string-value of the node.
	StringValue() string
}

// docnode carries the state common to every node variant. Mutating
// methods that touch both the receiver and another node must not live
// here: a method promoted from docnode only sees the embedded struct,
// not the variant that embeds it.
type docnode struct {
	typ    NodeType
	pos    int
	index  int
	parent Node
}

func (n *docnode) Type() NodeType { return n.typ }

func (n *docnode) Position() int { return n.pos }

func (n *docnode) SetPosition(pos int) { n.pos = pos }

func (n *docnode) Index() int { return n.index }

func (n *docnode) SetIndex(i int) { n.index = i }

func (n *docnode) Parent() Node { return n.parent }

func (n *docnode) SetParent(p Node) { n.parent = p }

// ParentNode is the subset of variants that own an ordered child
// list: Root and Element.
type ParentNode interface {
	Node
	Children() []Node
	AddChild(Node) error
	InsertChildAt(int, Node) error
	RemoveChild(Node) error
}

// WalkFunc visits a node during Walk. Returning an error stops the
// walk and propagates the error out.
type WalkFunc func(Node) error

// Walk visits n and its descendants in document (pre-order) order.
// Attributes and namespace declarations are not visited; they are
// only reachable through their owner element.
func Walk(n Node, f WalkFunc) error {
	if n == nil {
		return ErrNilNode
	}
	if err := f(n); err != nil {
		return err
	}
	if p, ok := n.(ParentNode); ok {
		for _, c := range p.Children() {
			if err := Walk(c, f); err != nil {
				return err
			}
		}
	}
	return nil
}
