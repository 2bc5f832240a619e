// Package encoding wraps the golang.org/x/text encoding machinery.
// Partly this exists because package names like "unicode" clash with
// the stdlib, and it is easier to hide all of that behind one loader.
package encoding

import (
	"bytes"
	"errors"
	"strings"

	enc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

var ErrUnknownEncoding = errors.New("failed to detect encoding")

var (
	patUTF32BE      = []byte{0x00, 0x00, 0x00, 0x3C}
	patUTF32LE      = []byte{0x3C, 0x00, 0x00, 0x00}
	patUTF16LE4B    = []byte{0x3C, 0x00, 0x3F, 0x00}
	patUTF16BE4B    = []byte{0x00, 0x3C, 0x00, 0x3F}
	patUTF8         = []byte{0xEF, 0xBB, 0xBF}
	patUTF16LE2B    = []byte{0xFF, 0xFE}
	patUTF16BE2B    = []byte{0xFE, 0xFF}
	patMaybeXMLDecl = []byte{0x3C, 0x3F, 0x78, 0x6D}
)

// Detect sniffs the input's encoding from a BOM or the byte pattern
// of an XML declaration. It returns the encoding name and the number
// of BOM bytes to strip. An empty name with a nil error means the
// input is already usable as UTF-8.
func Detect(b []byte) (string, int, error) {
	if len(b) >= 4 {
		head := b[:4]
		switch {
		case bytes.Equal(head, patUTF32BE):
			return "utf32be", 0, nil
		case bytes.Equal(head, patUTF32LE):
			return "utf32le", 0, nil
		case bytes.Equal(head, patMaybeXMLDecl):
			// "<?xm", no BOM
			return "", 0, nil
		case bytes.Equal(head, patUTF16LE4B):
			return "utf16le", 0, nil
		case bytes.Equal(head, patUTF16BE4B):
			return "utf16be", 0, nil
		}
	}
	if len(b) >= 3 && bytes.Equal(b[:3], patUTF8) {
		return "utf8", 3, nil
	}
	if len(b) >= 2 {
		switch {
		case bytes.Equal(b[:2], patUTF16BE2B):
			return "utf16be", 2, nil
		case bytes.Equal(b[:2], patUTF16LE2B):
			return "utf16le", 2, nil
		}
	}
	return "", 0, nil
}

// Load resolves an encoding name (as sniffed, or as written in an XML
// declaration) to a decoder.
func Load(name string) enc.Encoding {
	switch strings.ToLower(name) {
	case "utf8", "utf-8":
		return unicode.UTF8
	case "utf16le", "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case "utf16be", "utf-16be", "utf16", "utf-16":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case "utf32le", "utf-32le":
		return utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM)
	case "utf32be", "utf-32be", "utf32", "utf-32":
		return utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM)
	case "iso-8859-1", "latin1", "windows1252", "windows-1252":
		return charmap.Windows1252
	case "iso-8859-2":
		return charmap.ISO8859_2
	case "iso-8859-5":
		return charmap.ISO8859_5
	case "iso-8859-7":
		return charmap.ISO8859_7
	case "iso-8859-15":
		return charmap.ISO8859_15
	case "koi8r", "koi8-r":
		return charmap.KOI8R
	case "windows1250", "windows-1250":
		return charmap.Windows1250
	case "windows1251", "windows-1251":
		return charmap.Windows1251
	case "macintosh":
		return charmap.Macintosh
	}
	return nil
}
