package robin

import (
	"strings"

	"github.com/ziord/robin/dom"
	"github.com/ziord/robin/internal/debug"
	"github.com/ziord/robin/internal/nsstack"
	"github.com/ziord/robin/internal/stack"
)

// parserCtx carries the state of one parse: the token source, the
// stack of currently-open parents (root at the bottom), the namespace
// scope chain (one frame per open element), and the running
// document-order counter. All of it is local to a single Parse call.
type parserCtx struct {
	lexer    *lexer
	cfg      *parseConfig
	mode     dom.Mode
	doc      *dom.Root
	nodes    stack.Stack[dom.ParentNode]
	scopes   *nsstack.Stack
	pos      int
	tok      token
	warnings []Warning
	nwarn    int
}

func newParserCtx(src []byte, mode dom.Mode, cfg *parseConfig) *parserCtx {
	return &parserCtx{
		lexer:  newLexer(src, mode, cfg),
		cfg:    cfg,
		mode:   mode,
		scopes: nsstack.New(),
	}
}

func (ctx *parserCtx) advance() {
	ctx.tok = ctx.lexer.nextToken()
}

func (ctx *parserCtx) nextPos() int {
	ctx.pos++
	return ctx.pos
}

// error wraps a failure with the current token's location. Parser
// failures are fatal; there is no recovery.
func (ctx *parserCtx) error(err error) error {
	if _, ok := err.(ErrParseError); ok {
		return err
	}
	return ErrParseError{
		Err:        err,
		Lexeme:     ctx.tok.value,
		LineNumber: ctx.tok.lineNumber,
		Column:     ctx.tok.column,
	}
}

func (ctx *parserCtx) tokenErr() error {
	if ctx.tok.err != nil {
		return ctx.tok.err
	}
	return ctx.error(ErrUnexpectedToken)
}

func (ctx *parserCtx) warn(msg string) {
	ctx.nwarn++
	if ctx.cfg.showWarnings {
		ctx.warnings = append(ctx.warnings, Warning{
			Msg:        msg,
			Lexeme:     ctx.tok.value,
			LineNumber: ctx.tok.lineNumber,
			Column:     ctx.tok.column,
		})
	}
}

func (ctx *parserCtx) expect(typ tokenType) (token, error) {
	if ctx.tok.typ != typ {
		if ctx.tok.typ == tokenError {
			return ctx.tok, ctx.tok.err
		}
		if ctx.tok.typ == tokenEOF {
			return ctx.tok, ctx.error(ErrUnexpectedEOF)
		}
		return ctx.tok, ctx.error(ErrUnexpectedToken)
	}
	tok := ctx.tok
	ctx.advance()
	return tok, nil
}

// parseDocument drives XML mode: document ::= prolog element Misc*.
func (ctx *parserCtx) parseDocument() (*dom.Root, error) {
	if debug.Enabled {
		debug.Printf("START parseDocument")
		defer debug.Printf("END   parseDocument")
	}

	ctx.doc = dom.NewRoot(ctx.cfg.documentName)
	ctx.doc.AddNamespace(dom.NewGlobalNamespace("xml", dom.XMLNamespaceURI))
	ctx.doc.AddNamespace(dom.NewGlobalNamespace("xmlns", dom.XMLNSNamespaceURI))
	ctx.nodes.Push(ctx.doc)

	ctx.advance()
	if ctx.tok.typ == tokenEOF {
		return nil, ctx.error(ErrEmptyDocument)
	}

	if err := ctx.parseProlog(); err != nil {
		return nil, err
	}

	for {
		switch ctx.tok.typ {
		case tokenEOF:
			if ctx.doc.RootElement() == nil {
				return nil, ctx.error(ErrUnexpectedEOF)
			}
			ctx.doc.SetWellFormed(ctx.nwarn == 0)
			return ctx.doc, nil
		case tokenError:
			return nil, ctx.tokenErr()
		case tokenText:
			if err := ctx.parseMiscText(); err != nil {
				return nil, err
			}
		case tokenComment:
			ctx.addComment()
		case tokenLT:
			ctx.advance()
			switch ctx.tok.typ {
			case tokenQMark:
				ctx.advance()
				if err := ctx.parsePI(); err != nil {
					return nil, err
				}
			case tokenName:
				if ctx.doc.RootElement() != nil {
					return nil, ctx.error(ErrMultipleRootElements)
				}
				if err := ctx.parseElementBody(); err != nil {
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

// parseProlog handles XMLDecl? Misc* (doctypedecl Misc*)?.
func (ctx *parserCtx) parseProlog() error {
	// The declaration lexes as '<' '?' name("xml"); anything else at
	// the '?' branch is a plain processing instruction handled by the
	// main loop.
	if ctx.tok.typ == tokenLT {
		ctx.advance()
		if ctx.tok.typ == tokenQMark {
			ctx.advance()
			if ctx.tok.typ == tokenName && ctx.tok.value == "xml" {
				ctx.advance()
				if err := ctx.parseXMLDecl(); err != nil {
					return err
				}
			} else {
				if err := ctx.parsePI(); err != nil {
					return err
				}
			}
		} else {
			// Not a declaration: hand the already-consumed '<' state
			// back to the caller by parsing the construct here.
			switch ctx.tok.typ {
			case tokenName:
				return ctx.parseElementBody()
			case tokenError:
				return ctx.tokenErr()
			default:
				return ctx.tokenErr()
			}
		}
	}

	if err := ctx.parseMisc(); err != nil {
		return err
	}

	if ctx.tok.typ == tokenDoctype && ctx.doc.RootElement() == nil {
		dtd := dom.NewDTD(ctx.tok.value)
		dtd.SetPosition(ctx.nextPos())
		ctx.doc.SetDTD(dtd)
		if err := ctx.doc.AddChild(dtd); err != nil {
			return ctx.error(err)
		}
		ctx.advance()
		if err := ctx.parseMisc(); err != nil {
			return err
		}
	}
	return nil
}

// parseMisc consumes comments, PIs and whitespace between prolog
// parts, stopping at the first construct it does not own.
func (ctx *parserCtx) parseMisc() error {
	for {
		switch ctx.tok.typ {
		case tokenComment:
			ctx.addComment()
		case tokenText:
			if err := ctx.parseMiscText(); err != nil {
				return err
			}
		case tokenLT:
			// Only a PI is misc; elements belong to the caller. A
			// single token of lookahead cannot tell them apart before
			// consuming '<', so peek at the following token and give
			// the element back via parseElementBody.
			ctx.advance()
			switch ctx.tok.typ {
			case tokenQMark:
				ctx.advance()
				if err := ctx.parsePI(); err != nil {
					return err
				}
			case tokenName:
				if ctx.doc.RootElement() != nil {
					return ctx.error(ErrMultipleRootElements)
				}
				return ctx.parseElementBody()
			default:
				return ctx.tokenErr()
			}
		default:
			return nil
		}
	}
}

// parseMiscText attaches document-level text. Only whitespace is
// expected there; anything else is a warning.
func (ctx *parserCtx) parseMiscText() error {
	if strings.TrimSpace(ctx.tok.value) != "" {
		ctx.warn("non-whitespace text where only whitespace is expected")
	}
	ctx.addText(ctx.doc)
	return nil
}

func (ctx *parserCtx) addComment() {
	c := dom.NewComment(ctx.tok.value)
	c.SetPosition(ctx.nextPos())
	parent, _ := ctx.nodes.Peek()
	_ = parent.AddChild(c)
	ctx.advance()
}

func (ctx *parserCtx) addText(parent dom.ParentNode) {
	t := dom.NewText(ctx.tok.value)
	if ctx.tok.cdata {
		t = dom.NewCData(ctx.tok.value)
	}
	t.SetHasEntity(ctx.tok.hasEntity)
	t.SetPosition(ctx.nextPos())
	_ = parent.AddChild(t)
	ctx.advance()
}

// parseXMLDecl parses the attribute list of <?xml ... ?>. The "xml"
// target has already been consumed.
func (ctx *parserCtx) parseXMLDecl() error {
	decl := dom.NewXMLDecl()
	decl.SetPosition(ctx.nextPos())
	for ctx.tok.typ == tokenName {
		name := ctx.tok.value
		ctx.advance()
		if _, err := ctx.expect(tokenEqual); err != nil {
			return ctx.error(ErrMalformedXMLDecl)
		}
		val, err := ctx.expect(tokenString)
		if err != nil {
			return ctx.error(ErrMalformedXMLDecl)
		}
		a := dom.NewAttribute(name, "", val.value)
		a.SetPosition(ctx.nextPos())
		decl.AddAttribute(a)
	}
	if _, err := ctx.expect(tokenQMark); err != nil {
		return ctx.error(ErrMalformedXMLDecl)
	}
	if _, err := ctx.expect(tokenGT); err != nil {
		return ctx.error(ErrMalformedXMLDecl)
	}
	ctx.doc.SetXMLDecl(decl)
	return ctx.doc.AddChild(decl)
}

// parsePI parses a processing instruction. The '<' and '?' tokens
// have been consumed; the current token is the target name. The value
// is scanned opaquely up to '?>'.
func (ctx *parserCtx) parsePI() error {
	if ctx.tok.typ != tokenName {
		if ctx.tok.typ == tokenError {
			return ctx.tok.err
		}
		return ctx.error(ErrMalformedPI)
	}
	target := ctx.tok.value
	// The value must not go through the token stream: advancing would
	// lex into it. Scan it opaquely from the cursor instead.
	synth := ctx.lexer.createSyntheticToken("?>", tokenText)
	if synth.typ == tokenError {
		return synth.err
	}
	pi := dom.NewPI(target, strings.TrimLeft(synth.value, " \t\r\n"))
	pi.SetPosition(ctx.nextPos())
	parent, _ := ctx.nodes.Peek()
	if err := parent.AddChild(pi); err != nil {
		return ctx.error(err)
	}
	ctx.advance()
	return nil
}

// qname is a parsed qualified name.
type qname struct {
	prefix string
	local  string
}

func (q qname) String() string {
	if q.prefix == "" {
		return q.local
	}
	return q.prefix + ":" + q.local
}

// parseQName reads name (':' name)?. In HTML mode colons are part of
// the name token itself and never split into a prefix.
func (ctx *parserCtx) parseQName() (qname, error) {
	name, err := ctx.expect(tokenName)
	if err != nil {
		return qname{}, err
	}
	if ctx.mode == dom.ModeXML && ctx.tok.typ == tokenColon {
		ctx.advance()
		local, err := ctx.expect(tokenName)
		if err != nil {
			return qname{}, err
		}
		return qname{prefix: name.value, local: local.value}, nil
	}
	return qname{local: name.value}, nil
}

// checkReservedName warns when a prefix or local part begins with the
// case-insensitive sequence "xml" without being exactly one of the
// reserved names.
func (ctx *parserCtx) checkReservedName(part string) {
	if part == "xml" || part == "xmlns" {
		return
	}
	if len(part) >= 3 && strings.EqualFold(part[:3], "xml") {
		ctx.warn("name begins with the reserved sequence 'xml'")
	}
}

// declareNamespace validates the reserved-namespace constraints and
// inserts the declaration into the current scope.
func (ctx *parserCtx) declareNamespace(prefix, uri string, elem *dom.Element) error {
	switch prefix {
	case "xmlns":
		return ctx.error(ErrXMLNSPrefixDeclared)
	case "xml":
		if uri != dom.XMLNamespaceURI {
			return ctx.error(ErrXMLPrefixRebound)
		}
	case "":
		if uri == dom.XMLNamespaceURI || uri == dom.XMLNSNamespaceURI {
			return ctx.error(ErrReservedURIDefault)
		}
	default:
		if uri == dom.XMLNamespaceURI {
			return ctx.error(ErrReservedURIBinding)
		}
	}
	if prefix != "" && uri == "" {
		return ctx.error(ErrEmptyNamespaceURI)
	}

	ns := dom.NewNamespace(prefix, uri)
	ns.SetPosition(ctx.nextPos())
	elem.DeclareNamespace(ns)
	if err := ctx.scopes.Declare(ns); err != nil {
		return ctx.error(ErrDuplicateNamespace)
	}
	return nil
}

// parseElementBody parses an element from its name token onward; '<'
// has been consumed by the caller.
func (ctx *parserCtx) parseElementBody() error {
	if debug.Enabled {
		debug.Printf("START parseElementBody (%s)", ctx.tok.value)
	}

	ctx.scopes.Push()
	defer ctx.scopes.Pop()

	name, err := ctx.parseQName()
	if err != nil {
		return err
	}
	ctx.checkReservedName(name.prefix)
	ctx.checkReservedName(name.local)
	if name.prefix == "xmlns" {
		return ctx.error(ErrXMLNSElementPrefix)
	}

	elem := dom.NewElement(name.local, name.prefix, ctx.mode)
	elem.SetPosition(ctx.nextPos())

	deferred, err := ctx.parseAttributes(elem)
	if err != nil {
		return err
	}

	if err := ctx.resolveNamespaces(elem, name, deferred); err != nil {
		return err
	}

	if err := ctx.attach(elem); err != nil {
		return err
	}

	// '/>' or '>' content '</' qname '>'
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
		ctx.advance()
		ctx.nodes.Push(elem)
		if err := ctx.parseContent(name); err != nil {
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

// parseAttributes consumes the attribute list of a start tag,
// splitting out namespace declarations as it goes. Namespaced regular
// attributes come back in the deferred list for the post-list
// resolution pass.
func (ctx *parserCtx) parseAttributes(elem *dom.Element) ([]*dom.Attribute, error) {
	var deferred []*dom.Attribute
	for {
		switch ctx.tok.typ {
		case tokenSlash, tokenGT:
			return deferred, nil
		case tokenName:
			name, err := ctx.parseQName()
			if err != nil {
				return nil, err
			}
			value, err := ctx.parseAttrValue()
			if err != nil {
				return nil, err
			}
			switch {
			case name.prefix == "xmlns":
				if err := ctx.declareNamespace(name.local, value, elem); err != nil {
					return nil, err
				}
			case name.prefix == "" && name.local == "xmlns":
				if err := ctx.declareNamespace("", value, elem); err != nil {
					return nil, err
				}
			default:
				ctx.checkReservedName(name.prefix)
				a := dom.NewAttribute(name.local, name.prefix, value)
				a.SetPosition(ctx.nextPos())
				if err := elem.SetAttribute(a); err != nil {
					return nil, ctx.error(ErrDuplicateAttr)
				}
				if name.prefix != "" {
					deferred = append(deferred, a)
				}
			}
		case tokenError:
			return nil, ctx.tok.err
		case tokenEOF:
			return nil, ctx.error(ErrUnexpectedEOF)
		default:
			return nil, ctx.error(ErrUnexpectedToken)
		}
	}
}

// parseAttrValue reads ='value'. XML requires the pair; the HTML
// override relaxes both the presence and the quoting.
func (ctx *parserCtx) parseAttrValue() (string, error) {
	if _, err := ctx.expect(tokenEqual); err != nil {
		return "", err
	}
	val, err := ctx.expect(tokenString)
	if err != nil {
		return "", err
	}
	return val.value, nil
}

// resolveNamespaces binds the element name and the deferred
// attributes through the scope chain, then enforces expanded-name
// uniqueness.
func (ctx *parserCtx) resolveNamespaces(elem *dom.Element, name qname, deferred []*dom.Attribute) error {
	if name.prefix != "" {
		ns := ctx.lookupScope(name.prefix)
		if ns == nil {
			if !ctx.cfg.allowMissingNamespaces {
				return ctx.error(ErrUnboundPrefix)
			}
		} else {
			elem.BindNamespace(ns)
		}
	} else if ctx.cfg.allowDefaultNamespaceBindings {
		if d := ctx.scopes.Default(); d != nil && d.IsDefault() {
			elem.BindNamespace(d)
		}
	}

	for _, a := range deferred {
		ns := ctx.lookupScope(a.Prefix())
		if ns == nil {
			if !ctx.cfg.allowMissingNamespaces {
				return ctx.error(ErrUnboundPrefix)
			}
			continue
		}
		a.BindNamespace(ns)
	}

	if ctx.cfg.ensureUniqueNamespacedAttributes {
		seen := map[string]bool{}
		for _, a := range elem.Attributes() {
			key := a.ExpandedName()
			if seen[key] {
				return ctx.error(ErrDuplicateExpandedName)
			}
			seen[key] = true
		}
	}
	return nil
}

// lookupScope resolves a prefix through the open scopes, falling back
// to the reserved global bindings at the root.
func (ctx *parserCtx) lookupScope(prefix string) *dom.Namespace {
	if ns := ctx.scopes.Lookup(prefix); ns != nil {
		return ns
	}
	for _, ns := range ctx.doc.Namespaces() {
		if ns.Prefix() == prefix {
			return ns
		}
	}
	return nil
}

func (ctx *parserCtx) attach(elem *dom.Element) error {
	parent, _ := ctx.nodes.Peek()
	if parent == dom.ParentNode(ctx.doc) {
		if ctx.doc.RootElement() != nil {
			return ctx.error(ErrMultipleRootElements)
		}
		ctx.doc.SetRootElement(elem)
	}
	return parent.AddChild(elem)
}

// parseContent consumes element content up to and including the
// matching close tag.
func (ctx *parserCtx) parseContent(open qname) error {
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
				if err := ctx.parseElementBody(); err != nil {
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

// parseCloseTag matches '</' qname '>' against the open element.
func (ctx *parserCtx) parseCloseTag(open qname) error {
	name, err := ctx.parseQName()
	if err != nil {
		return err
	}
	if name.String() != open.String() {
		return ctx.error(ErrClosingTagMismatch)
	}
	if _, err := ctx.expect(tokenGT); err != nil {
		return err
	}
	return nil
}
