package robin

import "fmt"

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenError
	tokenLT       // <
	tokenGT       // >
	tokenSlash    // /
	tokenQMark    // ?
	tokenEqual    // =
	tokenColon    // :
	tokenName     // element/attribute names
	tokenNumber   // bare digit runs (HTML unquoted values)
	tokenString   // quoted; value excludes the quotes
	tokenText     // character data runs, CDATA included
	tokenComment  // <!-- ... -->, delimiters stripped
	tokenDoctype  // <!DOCTYPE ...>, capture per configuration
)

func (t tokenType) String() string {
	switch t {
	case tokenEOF:
		return "EOF"
	case tokenError:
		return "Error"
	case tokenLT:
		return "'<'"
	case tokenGT:
		return "'>'"
	case tokenSlash:
		return "'/'"
	case tokenQMark:
		return "'?'"
	case tokenEqual:
		return "'='"
	case tokenColon:
		return "':'"
	case tokenName:
		return "Name"
	case tokenNumber:
		return "Number"
	case tokenString:
		return "String"
	case tokenText:
		return "Text"
	case tokenComment:
		return "Comment"
	case tokenDoctype:
		return "Doctype"
	}
	return "Unknown"
}

// token is one markup lexeme. Error tokens carry the failure in err;
// the lexer keeps returning the same error token once one has been
// produced.
type token struct {
	typ        tokenType
	value      string
	lineNumber int
	column     int

	cdata     bool // text token produced from a CDATA section
	hasEntity bool // raw lexeme contains a predefined entity reference
	err       error
}

func (t token) String() string {
	if t.typ == tokenError {
		return fmt.Sprintf("%s(%v)", t.typ, t.err)
	}
	return fmt.Sprintf("%s(%q)", t.typ, t.value)
}
