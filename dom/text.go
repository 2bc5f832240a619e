package dom

// Text is a run of character data. CDATA sections become text nodes
// with the cdata flag set. hasEntity records that the raw lexeme
// contained a predefined entity reference, so the renderer knows the
// content is already escaped.
type Text struct {
	docnode
	content   string
	cdata     bool
	hasEntity bool
}

func NewText(content string) *Text {
	return &Text{
		docnode: docnode{typ: TextNode},
		content: content,
	}
}

func NewCData(content string) *Text {
	t := NewText(content)
	t.cdata = true
	return t
}

func (t *Text) Content() string { return t.content }

func (t *Text) SetContent(s string) { t.content = s }

func (t *Text) IsCData() bool { return t.cdata }

func (t *Text) HasEntity() bool { return t.hasEntity }

func (t *Text) SetHasEntity(v bool) { t.hasEntity = v }

func (t *Text) StringValue() string { return t.content }
