package robin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziord/robin/dom"
)

func lexAll(t *testing.T, src string, mode dom.Mode, cfg *parseConfig) []token {
	t.Helper()
	if cfg == nil {
		cfg = defaultParseConfig()
	}
	l := newLexer([]byte(src), mode, cfg)
	var toks []token
	for {
		tok := l.nextToken()
		toks = append(toks, tok)
		if tok.typ == tokenEOF || tok.typ == tokenError {
			return toks
		}
	}
}

func tokenTypes(toks []token) []tokenType {
	types := make([]tokenType, len(toks))
	for i, tok := range toks {
		types[i] = tok.typ
	}
	return types
}

func TestLexSimpleElement(t *testing.T) {
	toks := lexAll(t, `<a href="x">hi</a>`, dom.ModeXML, nil)
	require.Equal(t, []tokenType{
		tokenLT, tokenName, tokenName, tokenEqual, tokenString, tokenGT,
		tokenText,
		tokenLT, tokenSlash, tokenName, tokenGT,
		tokenEOF,
	}, tokenTypes(toks))
	require.Equal(t, "x", toks[4].value, "starting quote is not part of the value")
	require.Equal(t, "hi", toks[6].value)
}

func TestLexQualifiedName(t *testing.T) {
	toks := lexAll(t, `<p:c/>`, dom.ModeXML, nil)
	require.Equal(t, []tokenType{
		tokenLT, tokenName, tokenColon, tokenName, tokenSlash, tokenGT, tokenEOF,
	}, tokenTypes(toks))

	// the HTML dialect folds the colon into the name
	toks = lexAll(t, `<p:c/>`, dom.ModeHTML, nil)
	require.Equal(t, []tokenType{
		tokenLT, tokenName, tokenSlash, tokenGT, tokenEOF,
	}, tokenTypes(toks))
	require.Equal(t, "p:c", toks[1].value)
}

func TestLexComment(t *testing.T) {
	toks := lexAll(t, `<!-- note -->`, dom.ModeXML, nil)
	require.Equal(t, tokenComment, toks[0].typ)
	require.Equal(t, " note ", toks[0].value)

	// suppression consumes without emitting
	cfg := defaultParseConfig()
	cfg.preserveComment = false
	toks = lexAll(t, `<!-- note -->`, dom.ModeXML, cfg)
	require.Equal(t, tokenEOF, toks[0].typ)
}

func TestLexCDATA(t *testing.T) {
	toks := lexAll(t, `<a><![CDATA[1 < 2]]></a>`, dom.ModeXML, nil)
	var text *token
	for i := range toks {
		if toks[i].typ == tokenText {
			text = &toks[i]
			break
		}
	}
	require.NotNil(t, text)
	assert.Equal(t, "1 < 2", text.value)
	assert.True(t, text.cdata)
}

func TestLexTextEntityFlag(t *testing.T) {
	toks := lexAll(t, `<a>x &amp; y</a>`, dom.ModeXML, nil)
	require.Equal(t, tokenText, toks[3].typ)
	assert.True(t, toks[3].hasEntity)

	toks = lexAll(t, `<a>x and y</a>`, dom.ModeXML, nil)
	require.Equal(t, tokenText, toks[3].typ)
	assert.False(t, toks[3].hasEntity)
}

func TestLexDoctype(t *testing.T) {
	toks := lexAll(t, `<!DOCTYPE html>`, dom.ModeXML, nil)
	require.Equal(t, tokenDoctype, toks[0].typ)
	require.Equal(t, "html", toks[0].value, "name only when structure is not preserved")

	cfg := defaultParseConfig()
	cfg.preserveDtdStructure = true
	toks = lexAll(t, `<!DOCTYPE html>`, dom.ModeXML, cfg)
	require.Equal(t, tokenDoctype, toks[0].typ)
	require.Equal(t, "<!DOCTYPE html>", toks[0].value)
}

func TestLexDoctypeInternalSubset(t *testing.T) {
	const src = `<!DOCTYPE greeting [
  <!ELEMENT greeting (#PCDATA)>
  <!ENTITY % pe "x">
  %pe;
  <!-- inside -->
  <?pi data?>
]>`
	cfg := defaultParseConfig()
	cfg.preserveDtdStructure = true
	toks := lexAll(t, src, dom.ModeXML, cfg)
	require.Equal(t, tokenDoctype, toks[0].typ)
	require.Equal(t, src, toks[0].value)
}

func TestLexDoctypeExternalID(t *testing.T) {
	const src = `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0//EN" "http://www.w3.org/xhtml1.dtd">`
	toks := lexAll(t, src, dom.ModeXML, nil)
	require.Equal(t, tokenDoctype, toks[0].typ)
	require.Equal(t, "html", toks[0].value)
}

func TestLexErrorsAreSticky(t *testing.T) {
	l := newLexer([]byte(`<!-- unterminated`), dom.ModeXML, defaultParseConfig())
	tok := l.nextToken()
	require.Equal(t, tokenError, tok.typ)
	again := l.nextToken()
	require.Equal(t, tok, again, "a second request returns the stored error token")
}

func TestLexErrors(t *testing.T) {
	inputs := []string{
		`<!-- unterminated`,
		`<a href="unterminated`,
		`<a><![CDATA[unterminated`,
		`<!DOCTYPE a [ <!BOGUS> ]>`,
		`<a @=1>`,
	}
	for _, src := range inputs {
		toks := lexAll(t, src, dom.ModeXML, nil)
		last := toks[len(toks)-1]
		require.Equal(t, tokenError, last.typ, "lexing %q should fail", src)
		perr, ok := last.err.(ErrParseError)
		require.True(t, ok)
		assert.NotZero(t, perr.LineNumber)
		assert.NotZero(t, perr.Column)
	}
}

func TestLexHTMLStrayLT(t *testing.T) {
	toks := lexAll(t, `<a>1 < 2</a>`, dom.ModeHTML, nil)
	require.Equal(t, []tokenType{
		tokenLT, tokenName, tokenGT,
		tokenText,
		tokenLT, tokenSlash, tokenName, tokenGT,
		tokenEOF,
	}, tokenTypes(toks))
	require.Equal(t, "1 < 2", toks[3].value)
}

func TestLexWhitespaceSkipping(t *testing.T) {
	cfg := defaultParseConfig()
	cfg.preserveSpace = false
	toks := lexAll(t, "<a>\n  \n</a>", dom.ModeXML, cfg)
	require.Equal(t, []tokenType{
		tokenLT, tokenName, tokenGT,
		tokenLT, tokenSlash, tokenName, tokenGT,
		tokenEOF,
	}, tokenTypes(toks), "whitespace-only content is dropped when preserveSpace is off")
}

func TestSyntheticToken(t *testing.T) {
	cfg := defaultParseConfig()
	l := newLexer([]byte(`var a = "</b>"; </script>`), dom.ModeHTML, cfg)
	tok := l.createSyntheticToken("</", tokenText)
	require.Equal(t, tokenText, tok.typ)
	require.Equal(t, `var a = "`, tok.value, "the first '</' ends the scan even inside a string literal")
}
