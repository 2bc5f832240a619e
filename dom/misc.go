package dom

// Comment is a <!-- --> node. The content excludes the delimiters.
type Comment struct {
	docnode
	content string
}

func NewComment(content string) *Comment {
	return &Comment{
		docnode: docnode{typ: CommentNode},
		content: content,
	}
}

func (c *Comment) Content() string { return c.content }

func (c *Comment) SetContent(s string) { c.content = s }

func (c *Comment) StringValue() string { return c.content }

// ProcessingInstruction is a <?target value?> node.
type ProcessingInstruction struct {
	docnode
	target string
	value  string
}

func NewPI(target, value string) *ProcessingInstruction {
	return &ProcessingInstruction{
		docnode: docnode{typ: PINode},
		target:  target,
		value:   value,
	}
}

func (p *ProcessingInstruction) Target() string { return p.target }

func (p *ProcessingInstruction) Value() string { return p.value }

func (p *ProcessingInstruction) StringValue() string { return p.value }

// DTD is a doctype declaration. Depending on parser configuration the
// value is either just the doctype name or the full captured
// declaration.
type DTD struct {
	docnode
	value string
}

func NewDTD(value string) *DTD {
	return &DTD{
		docnode: docnode{typ: DTDNode},
		value:   value,
	}
}

func (d *DTD) Value() string { return d.value }

func (d *DTD) StringValue() string { return "" }

// XMLDecl is the <?xml ...?> declaration. It carries ordered
// attributes only and never nests.
type XMLDecl struct {
	docnode
	attrs []*Attribute
}

func NewXMLDecl() *XMLDecl {
	return &XMLDecl{docnode: docnode{typ: XMLDeclNode}}
}

func (x *XMLDecl) AddAttribute(a *Attribute) {
	a.SetParent(x)
	x.attrs = append(x.attrs, a)
}

func (x *XMLDecl) Attributes() []*Attribute { return x.attrs }

// Attribute looks up a declaration attribute by name (version,
// encoding, standalone).
func (x *XMLDecl) Attribute(name string) (*Attribute, bool) {
	for _, a := range x.attrs {
		if a.QualifiedName() == name {
			return a, true
		}
	}
	return nil, false
}

func (x *XMLDecl) StringValue() string { return "" }
