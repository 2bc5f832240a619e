package robin

import (
	"strings"

	"github.com/ziord/robin/dom"
	"github.com/ziord/robin/internal/debug"
)

// The HTML void set: elements that close without an end tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true,
	"embed": true, "hr": true, "img": true, "input": true,
	"link": true, "meta": true, "source": true, "track": true,
	"wbr": true,
}

func isVoidElement(name string) bool {
	return voidElements[strings.ToLower(name)]
}

// parseDocumentHTML drives HTML mode. There is no prolog beyond a
// tolerated doctype, the namespace scope is disabled, and several
// top-level elements are accepted.
func (ctx *parserCtx) parseDocumentHTML() (*dom.Root, error) {
	if debug.Enabled {
		debug.Printf("START parseDocumentHTML")
		defer debug.Printf("END   parseDocumentHTML")
	}

	ctx.doc = dom.NewRoot(ctx.cfg.documentName)
	ctx.nodes.Push(ctx.doc)

	ctx.advance()
	if ctx.tok.typ == tokenEOF {
		return nil, ctx.error(ErrEmptyDocument)
	}

	for {
		switch ctx.tok.typ {
		case tokenEOF:
			ctx.doc.SetWellFormed(ctx.nwarn == 0)
			return ctx.doc, nil
		case tokenError:
			return nil, ctx.tokenErr()
		case tokenText:
			ctx.addText(ctx.doc)
		case tokenComment:
			ctx.addComment()
		case tokenDoctype:
			dtd := dom.NewDTD(ctx.tok.value)
			dtd.SetPosition(ctx.nextPos())
			if d, _ := ctx.doc.DTD(); d == nil {
				ctx.doc.SetDTD(dtd)
			}
			if err := ctx.doc.AddChild(dtd); err != nil {
				return nil, ctx.error(err)
			}
			ctx.advance()
		case tokenLT:
			ctx.advance()
			switch ctx.tok.typ {
			case tokenQMark:
				ctx.advance()
				if err := ctx.parsePI(); err != nil {
					return nil, err
				}
			case tokenName:
				if err := ctx.parseElementBodyHTML(); err != nil {
					return nil, err
				}
			default:
				return nil, ctx.tokenErr()
			}
		default:
			return nil, ctx.tokenErr()
		}
	}
}

// parseElementBodyHTML parses one HTML element from its name token
// onward. Void elements close on their start tag; a <script> body is
// captured opaquely.
func (ctx *parserCtx) parseElementBodyHTML() error {
	name, err := ctx.parseQName()
	if err != nil {
		return err
	}

	elem := dom.NewElement(name.local, name.prefix, dom.ModeHTML)
	elem.SetPosition(ctx.nextPos())

	if err := ctx.parseAttributesHTML(elem); err != nil {
		return err
	}

	if err := ctx.attachHTML(elem); err != nil {
		return err
	}

	void := isVoidElement(name.local)
	elem.SetVoid(void)

	switch ctx.tok.typ {
	case tokenSlash:
		ctx.advance()
		if _, err := ctx.expect(tokenGT); err != nil {
			return err
		}
		elem.SetSelfEnclosing(true)
		elem.RecomputeFlags()
		return nil
	case tokenGT:
		if void {
			// no end tag expected
			ctx.advance()
			elem.RecomputeFlags()
			return nil
		}
		if strings.EqualFold(name.local, "script") {
			return ctx.parseScriptBody(elem, name)
		}
		ctx.advance()
		ctx.nodes.Push(elem)
		if err := ctx.parseContentHTML(name); err != nil {
			return err
		}
		ctx.nodes.Pop()
		elem.RecomputeFlags()
		return nil
	default:
		if ctx.tok.typ == tokenError {
			return ctx.tok.err
		}
		return ctx.error(ErrUnexpectedToken)
	}
}

// parseScriptBody captures the script body opaquely. Each '</' is
// checked against the name that follows it: only 'script' ends the
// body, so the first '</script' ends it even when it sits inside a
// string literal in the script text. Any other '</' and the name
// after it stay in the body.
func (ctx *parserCtx) parseScriptBody(elem *dom.Element, open qname) error {
	// current token is '>'; the cursor sits right after it
	var body strings.Builder
	for {
		synth := ctx.lexer.createSyntheticToken("</", tokenText)
		if synth.typ == tokenError {
			return synth.err
		}
		body.WriteString(synth.value)
		ctx.advance()
		if ctx.tok.typ == tokenName && strings.EqualFold(ctx.tok.value, "script") {
			break
		}
		if ctx.tok.typ == tokenError {
			return ctx.tok.err
		}
		// a '</' that does not open the closing tag is script text
		body.WriteString("</" + ctx.tok.value)
	}
	if s := body.String(); strings.TrimSpace(s) != "" {
		t := dom.NewText(s)
		t.SetHasEntity(containsEntity(s))
		t.SetPosition(ctx.nextPos())
		if err := elem.AddChild(t); err != nil {
			return ctx.error(err)
		}
	}
	ctx.advance()
	if _, err := ctx.expect(tokenGT); err != nil {
		return err
	}
	elem.RecomputeFlags()
	return nil
}

// parseAttributesHTML consumes an HTML attribute list. Attributes may
// omit the value, values may be unquoted, and xmlns is accepted only
// with the XHTML URI, stored as an anonymous default namespace on the
// element without entering any scope.
func (ctx *parserCtx) parseAttributesHTML(elem *dom.Element) error {
	for {
		switch ctx.tok.typ {
		case tokenSlash, tokenGT:
			return nil
		case tokenName:
			name := ctx.tok.value
			ctx.advance()
			value, err := ctx.parseAttrValueHTML()
			if err != nil {
				return err
			}
			if name == "xmlns" {
				if value != dom.XHTMLNamespaceURI {
					return ctx.error(ErrBadHTMLNamespaceURI)
				}
				ns := dom.NewNamespace("", value)
				ns.SetPosition(ctx.nextPos())
				elem.DeclareNamespace(ns)
				elem.BindNamespace(ns)
				continue
			}
			a := dom.NewAttribute(name, "", value)
			a.SetPosition(ctx.nextPos())
			if err := elem.SetAttribute(a); err != nil {
				return ctx.error(ErrDuplicateAttr)
			}
		case tokenError:
			return ctx.tok.err
		case tokenEOF:
			return ctx.error(ErrUnexpectedEOF)
		default:
			return ctx.error(ErrUnexpectedToken)
		}
	}
}

// parseAttrValueHTML accepts ="value", =value (unquoted), or nothing
// at all, which yields the empty string.
func (ctx *parserCtx) parseAttrValueHTML() (string, error) {
	if ctx.tok.typ != tokenEqual {
		return "", nil
	}
	ctx.advance()
	switch ctx.tok.typ {
	case tokenString, tokenName, tokenNumber:
		v := ctx.tok.value
		ctx.advance()
		return v, nil
	case tokenError:
		return "", ctx.tok.err
	default:
		return "", ctx.error(ErrUnexpectedToken)
	}
}

func (ctx *parserCtx) attachHTML(elem *dom.Element) error {
	parent, _ := ctx.nodes.Peek()
	if parent == dom.ParentNode(ctx.doc) && ctx.doc.RootElement() == nil {
		ctx.doc.SetRootElement(elem)
	}
	return parent.AddChild(elem)
}

// parseContentHTML consumes element content up to and including the
// matching close tag. A closing-tag mismatch is fatal; everything
// else the lexer tolerated flows through as content.
func (ctx *parserCtx) parseContentHTML(open qname) error {
	parent, _ := ctx.nodes.Peek()
	for {
		switch ctx.tok.typ {
		case tokenText:
			ctx.addText(parent)
		case tokenComment:
			ctx.addComment()
		case tokenLT:
			ctx.advance()
			switch ctx.tok.typ {
			case tokenSlash:
				ctx.advance()
				return ctx.parseCloseTag(open)
			case tokenQMark:
				ctx.advance()
				if err := ctx.parsePI(); err != nil {
					return err
				}
			case tokenName:
				if err := ctx.parseElementBodyHTML(); err != nil {
					return err
				}
			case tokenError:
				return ctx.tok.err
			default:
				return ctx.error(ErrUnexpectedToken)
			}
		case tokenEOF:
			return ctx.error(ErrUnexpectedEOF)
		case tokenError:
			return ctx.tok.err
		default:
			return ctx.error(ErrUnexpectedToken)
		}
	}
}
