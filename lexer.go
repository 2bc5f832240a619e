package robin

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lestrrat-go/strcursor"

	"github.com/ziord/robin/dom"
	"github.com/ziord/robin/internal/debug"
)

// markupCursor adapts strcursor.Cursor's actual API to the
// offset-based lookahead the lexer below is written against.
type markupCursor struct {
	c strcursor.Cursor
}

func newMarkupCursor(src []byte) *markupCursor {
	return &markupCursor{c: strcursor.NewRuneCursor(bytes.NewReader(src))}
}

func (m *markupCursor) Done() bool              { return m.c.Done() }
func (m *markupCursor) Peek(n int) rune         { return m.c.PeekN(n) }
func (m *markupCursor) Advance(n int)           { m.c.Advance(n) }
func (m *markupCursor) LineNumber() int         { return m.c.LineNumber() }
func (m *markupCursor) Column() int             { return m.c.Column() }
func (m *markupCursor) HasPrefix(s string) bool { return m.c.HasPrefixString(s) }

func (m *markupCursor) HasChars(n int) bool {
	return m.c.PeekN(n) != utf8.RuneError
}

// Consume returns the next n runes as a string and advances past them.
func (m *markupCursor) Consume(n int) string {
	runes := make([]rune, n)
	for i := 0; i < n; i++ {
		runes[i] = m.c.PeekN(i + 1)
	}
	m.c.Advance(n)
	return string(runes)
}

// lexer produces one markup token per request, tracking line/column
// for diagnostics. It runs in one of two dialects fixed at
// construction. The only mode flag it keeps between requests is
// vFlag, the last-seen angle bracket, which localizes the "text
// starts after '>'" rule.
type lexer struct {
	cursor *markupCursor
	mode   dom.Mode
	cfg    *parseConfig
	vFlag  rune
	errTok *token
}

func newLexer(src []byte, mode dom.Mode, cfg *parseConfig) *lexer {
	return &lexer{
		cursor: newMarkupCursor(src),
		mode:   mode,
		cfg:    cfg,
	}
}

func isWhitespace(r rune) bool {
	return r == 0x20 || r == 0x9 || r == 0xa || r == 0xd
}

func isNameStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_' || r == ':'
}

// isNameChar accepts the characters allowed after a name start. The
// colon stays a separate token in XML so that prefixes can be split;
// the HTML dialect folds it into the name.
func (l *lexer) isNameChar(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.' || r == '-' {
		return true
	}
	return r == ':' && l.mode == dom.ModeHTML
}

func (l *lexer) done() bool {
	return l.cursor.Done()
}

func (l *lexer) peek(n int) rune {
	return l.cursor.Peek(n)
}

func (l *lexer) advance(n int) {
	l.cursor.Advance(n)
}

func (l *lexer) consume(n int) string {
	return l.cursor.Consume(n)
}

func (l *lexer) hasPrefix(s string) bool {
	return l.cursor.HasPrefix(s)
}

func (l *lexer) skipWhitespace() string {
	i := 1
	for l.cursor.HasChars(i) && isWhitespace(l.peek(i)) {
		i++
	}
	if i > 1 {
		return l.consume(i - 1)
	}
	return ""
}

func (l *lexer) mkToken(typ tokenType, value string, line, col int) token {
	return token{typ: typ, value: value, lineNumber: line, column: col}
}

// errorToken records a failure. Error tokens are cumulative: once one
// has been produced every later request returns it again, so parser
// loops fail fast instead of re-lexing past the damage.
func (l *lexer) errorToken(err error, lexeme string, line, col int) token {
	tok := token{
		typ:        tokenError,
		value:      lexeme,
		lineNumber: line,
		column:     col,
		err: ErrParseError{
			Err:        err,
			Lexeme:     lexeme,
			LineNumber: line,
			Column:     col,
		},
	}
	l.errTok = &tok
	return tok
}

func (l *lexer) eofToken() token {
	return l.mkToken(tokenEOF, "", l.cursor.LineNumber(), l.cursor.Column())
}

// nextToken returns the next markup token, or an error token.
func (l *lexer) nextToken() token {
	if l.errTok != nil {
		return *l.errTok
	}

	for {
		if l.done() {
			return l.eofToken()
		}

		// Outside of a tag we are in content: try a text run first.
		if l.vFlag != '<' {
			tok, ok := l.lexText()
			if ok {
				return tok
			}
			if l.errTok != nil {
				return *l.errTok
			}
			if l.done() {
				return l.eofToken()
			}
		} else {
			l.skipWhitespace()
			if l.done() {
				return l.eofToken()
			}
		}

		line, col := l.cursor.LineNumber(), l.cursor.Column()
		c := l.peek(1)

		switch {
		case c == '<':
			switch {
			case l.hasPrefix("<!--"):
				tok, emit := l.lexComment(line, col)
				if !emit {
					if l.errTok != nil {
						return *l.errTok
					}
					continue
				}
				return tok
			case l.hasPrefix("<![CDATA["):
				tok, emit := l.lexCDATA(line, col)
				if !emit {
					if l.errTok != nil {
						return *l.errTok
					}
					continue
				}
				return tok
			case l.hasPrefixFold("<!DOCTYPE"):
				return l.lexDoctype(line, col)
			default:
				l.advance(1)
				l.vFlag = '<'
				return l.mkToken(tokenLT, "<", line, col)
			}
		case c == '>':
			l.advance(1)
			l.vFlag = '>'
			return l.mkToken(tokenGT, ">", line, col)
		case c == '/':
			l.advance(1)
			return l.mkToken(tokenSlash, "/", line, col)
		case c == '?':
			l.advance(1)
			return l.mkToken(tokenQMark, "?", line, col)
		case c == '=':
			l.advance(1)
			return l.mkToken(tokenEqual, "=", line, col)
		case c == ':':
			l.advance(1)
			return l.mkToken(tokenColon, ":", line, col)
		case c == '"' || c == '\'':
			return l.lexString(c, line, col)
		case isNameStart(c):
			return l.lexName(line, col)
		case unicode.IsDigit(c):
			return l.lexNumber(line, col)
		default:
			return l.errorToken(ErrUnknownCharacter, string(c), line, col)
		}
	}
}

func (l *lexer) hasPrefixFold(s string) bool {
	if !l.cursor.HasChars(len(s)) {
		return false
	}
	for i, r := range s {
		got := l.peek(i + 1)
		if got != r && unicode.ToUpper(got) != unicode.ToUpper(r) {
			return false
		}
	}
	return true
}

// textBreaksAt reports whether the '<' at offset i ends a text run.
// The XML dialect breaks on every '<'; the HTML dialect only breaks
// when the '<' opens an element, closing tag, PI, comment, CDATA
// section or doctype declaration, tolerating stray '<' inside text.
func (l *lexer) textBreaksAt(i int) bool {
	if l.mode == dom.ModeXML {
		return true
	}
	next := l.peek(i + 1)
	if unicode.IsLetter(next) || next == '/' || next == '?' {
		return true
	}
	if next == '!' {
		if l.matchAhead(i+1, "!--") || l.matchAhead(i+1, "![CDATA[") {
			return true
		}
		for j, r := range "!DOCTYPE" {
			if unicode.ToUpper(l.peek(i+1+j)) != r {
				return false
			}
		}
		return true
	}
	return false
}

func (l *lexer) matchAhead(off int, s string) bool {
	for j, r := range s {
		if l.peek(off+j) != r {
			return false
		}
	}
	return true
}

// lexText scans a character-data run up to the next markup-opening
// '<'. Returns ok=false when there is no text to emit at the current
// position (markup follows immediately, or the run was discardable
// whitespace).
func (l *lexer) lexText() (token, bool) {
	line, col := l.cursor.LineNumber(), l.cursor.Column()
	i := 1
	for l.cursor.HasChars(i) {
		c := l.peek(i)
		if c == '<' && l.textBreaksAt(i) {
			break
		}
		i++
	}
	if i == 1 {
		return token{}, false
	}
	raw := l.consume(i - 1)
	if !l.cfg.preserveSpace && strings.TrimSpace(raw) == "" {
		return token{}, false
	}
	tok := l.mkToken(tokenText, raw, line, col)
	tok.hasEntity = containsEntity(raw)
	return tok, true
}

var entityMarkers = []string{"&amp;", "&lt;", "&gt;", "&quot;", "&apos;"}

func containsEntity(s string) bool {
	for _, m := range entityMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func (l *lexer) lexComment(line, col int) (token, bool) {
	l.advance(4) // <!--
	i := 1
	for {
		if !l.cursor.HasChars(i + 2) {
			l.errorToken(ErrUnterminatedComment, "<!--", line, col)
			return token{}, false
		}
		if l.peek(i) == '-' && l.peek(i+1) == '-' && l.peek(i+2) == '>' {
			break
		}
		i++
	}
	value := l.consume(i - 1)
	l.advance(3) // -->
	if !l.cfg.preserveComment {
		return token{}, false
	}
	return l.mkToken(tokenComment, value, line, col), true
}

func (l *lexer) lexCDATA(line, col int) (token, bool) {
	l.advance(9) // <![CDATA[
	i := 1
	for {
		if !l.cursor.HasChars(i + 2) {
			l.errorToken(ErrUnterminatedCDATA, "<![CDATA[", line, col)
			return token{}, false
		}
		if l.peek(i) == ']' && l.peek(i+1) == ']' && l.peek(i+2) == '>' {
			break
		}
		i++
	}
	value := l.consume(i - 1)
	l.advance(3) // ]]>
	if !l.cfg.preserveCdata {
		return token{}, false
	}
	tok := l.mkToken(tokenText, value, line, col)
	tok.cdata = true
	return tok, true
}

func (l *lexer) lexString(quote rune, line, col int) token {
	l.advance(1) // starting quote is not part of the value
	i := 1
	for {
		if !l.cursor.HasChars(i) {
			return l.errorToken(ErrUnterminatedString, string(quote), line, col)
		}
		if l.peek(i) == quote {
			break
		}
		i++
	}
	value := l.consume(i - 1)
	l.advance(1)
	return l.mkToken(tokenString, value, line, col)
}

func (l *lexer) lexName(line, col int) token {
	i := 2 // name start already checked
	for l.cursor.HasChars(i) && l.isNameChar(l.peek(i)) {
		i++
	}
	return l.mkToken(tokenName, l.consume(i-1), line, col)
}

func (l *lexer) lexNumber(line, col int) token {
	i := 1
	for l.cursor.HasChars(i) && (unicode.IsDigit(l.peek(i)) || l.peek(i) == '.') {
		i++
	}
	return l.mkToken(tokenNumber, l.consume(i-1), line, col)
}

// createSyntheticToken scans raw input until delim, consuming the
// delimiter. The HTML parser uses it with "</" to capture a script
// body opaquely; the PI value scan reuses it with "?>".
func (l *lexer) createSyntheticToken(delim string, typ tokenType) token {
	if l.errTok != nil {
		return *l.errTok
	}
	line, col := l.cursor.LineNumber(), l.cursor.Column()
	i := 1
	for {
		if !l.cursor.HasChars(i + len(delim) - 1) {
			return l.errorToken(ErrUnexpectedEOF, delim, line, col)
		}
		matched := true
		for j, r := range delim {
			if l.peek(i+j) != r {
				matched = false
				break
			}
		}
		if matched {
			break
		}
		i++
	}
	value := l.consume(i - 1)
	l.advance(len(delim))
	switch delim[len(delim)-1] {
	case '>':
		l.vFlag = '>'
	default:
		l.vFlag = '<'
	}
	if debug.Enabled {
		debug.Printf("synthetic token until %q: %q", delim, value)
	}
	return l.mkToken(typ, value, line, col)
}

// lexDoctype lexes an entire doctype declaration as one compound
// token: <!DOCTYPE name ExternalID? ('[' intSubset ']')? '>'. The
// internal subset is scanned for structural balance only; its
// declarations are never interpreted.
func (l *lexer) lexDoctype(line, col int) token {
	var raw strings.Builder
	raw.WriteString(l.consume(9)) // <!DOCTYPE
	ws := l.skipWhitespace()
	if ws == "" {
		return l.errorToken(ErrInvalidDTD, "<!DOCTYPE", line, col)
	}
	raw.WriteString(ws)

	c := l.peek(1)
	if !isNameStart(c) {
		return l.errorToken(ErrInvalidDTD, string(c), line, col)
	}
	i := 2
	for l.cursor.HasChars(i) && l.isNameChar(l.peek(i)) {
		i++
	}
	name := l.consume(i - 1)
	raw.WriteString(name)

	for {
		raw.WriteString(l.skipWhitespace())
		if l.done() {
			return l.errorToken(ErrUnterminatedDTD, name, line, col)
		}
		switch c := l.peek(1); {
		case c == '>':
			l.advance(1)
			raw.WriteString(">")
			l.vFlag = '>'
			value := name
			if l.cfg.preserveDtdStructure {
				value = raw.String()
			}
			return l.mkToken(tokenDoctype, value, line, col)
		case c == '[':
			raw.WriteString(l.consume(1))
			if !l.scanIntSubset(&raw, name, line, col) {
				return *l.errTok
			}
		case c == '"' || c == '\'':
			if !l.scanQuoted(&raw, name, line, col) {
				return *l.errTok
			}
		case isNameStart(c):
			// external ID keywords (SYSTEM, PUBLIC) and stray names
			j := 2
			for l.cursor.HasChars(j) && l.isNameChar(l.peek(j)) {
				j++
			}
			raw.WriteString(l.consume(j - 1))
		default:
			return l.errorToken(ErrInvalidDTD, string(c), line, col)
		}
	}
}

func (l *lexer) scanQuoted(raw *strings.Builder, name string, line, col int) bool {
	quote := l.peek(1)
	raw.WriteString(l.consume(1))
	i := 1
	for {
		if !l.cursor.HasChars(i) {
			l.errorToken(ErrUnterminatedDTD, name, line, col)
			return false
		}
		if l.peek(i) == quote {
			break
		}
		i++
	}
	raw.WriteString(l.consume(i - 1))
	raw.WriteString(l.consume(1))
	return true
}

// scanIntSubset consumes the '[' ... ']' internal subset, checking
// structural balance: markup declarations with nested parentheses,
// PIs, comments, and parameter-entity references.
func (l *lexer) scanIntSubset(raw *strings.Builder, name string, line, col int) bool {
	for {
		raw.WriteString(l.skipWhitespace())
		if l.done() {
			l.errorToken(ErrUnterminatedDTD, name, line, col)
			return false
		}
		switch {
		case l.peek(1) == ']':
			raw.WriteString(l.consume(1))
			return true
		case l.hasPrefix("<!--"):
			if !l.scanUntil(raw, "-->", name, line, col) {
				return false
			}
		case l.hasPrefix("<?"):
			if !l.scanUntil(raw, "?>", name, line, col) {
				return false
			}
		case l.hasPrefix("<!ELEMENT"), l.hasPrefix("<!ATTLIST"),
			l.hasPrefix("<!ENTITY"), l.hasPrefix("<!NOTATION"):
			if !l.scanMarkupDecl(raw, name, line, col) {
				return false
			}
		case l.peek(1) == '%':
			// parameter-entity reference: %Name;
			raw.WriteString(l.consume(1))
			if !isNameStart(l.peek(1)) {
				l.errorToken(ErrInvalidDTD, "%", line, col)
				return false
			}
			j := 2
			for l.cursor.HasChars(j) && l.isNameChar(l.peek(j)) {
				j++
			}
			raw.WriteString(l.consume(j - 1))
			if l.peek(1) != ';' {
				l.errorToken(ErrInvalidDTD, "%", line, col)
				return false
			}
			raw.WriteString(l.consume(1))
		default:
			l.errorToken(ErrInvalidDTD, string(l.peek(1)), line, col)
			return false
		}
	}
}

func (l *lexer) scanUntil(raw *strings.Builder, delim, name string, line, col int) bool {
	i := 1
	for {
		if !l.cursor.HasChars(i + len(delim) - 1) {
			l.errorToken(ErrUnterminatedDTD, name, line, col)
			return false
		}
		matched := true
		for j, r := range delim {
			if l.peek(i+j) != r {
				matched = false
				break
			}
		}
		if matched {
			break
		}
		i++
	}
	raw.WriteString(l.consume(i - 1 + len(delim)))
	return true
}

// scanMarkupDecl consumes one <!ELEMENT|ATTLIST|ENTITY|NOTATION ...>
// declaration, balancing parentheses in content specs and skipping
// quoted literals.
func (l *lexer) scanMarkupDecl(raw *strings.Builder, name string, line, col int) bool {
	depth := 0
	for {
		if l.done() {
			l.errorToken(ErrUnterminatedDTD, name, line, col)
			return false
		}
		c := l.peek(1)
		switch c {
		case '(':
			depth++
			raw.WriteString(l.consume(1))
		case ')':
			depth--
			if depth < 0 {
				l.errorToken(ErrInvalidDTD, ")", line, col)
				return false
			}
			raw.WriteString(l.consume(1))
		case '"', '\'':
			if !l.scanQuoted(raw, name, line, col) {
				return false
			}
		case '>':
			if depth == 0 {
				raw.WriteString(l.consume(1))
				return true
			}
			raw.WriteString(l.consume(1))
		default:
			raw.WriteString(l.consume(1))
		}
	}
}
