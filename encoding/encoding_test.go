package encoding_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ziord/robin/encoding"
)

func TestDetect(t *testing.T) {
	data := map[string][][]byte{
		"utf32be": {{0x00, 0x00, 0x00, 0x3C}},
		"utf32le": {{0x3C, 0x00, 0x00, 0x00}},
		"utf8":    {{0xEF, 0xBB, 0xBF, 0x3C}},
		"utf16le": {{0x3C, 0x00, 0x3F, 0x00}, {0xFF, 0xFE}},
		"utf16be": {{0x00, 0x3C, 0x00, 0x3F}, {0xFE, 0xFF}},
		"":        {{0x3C, 0x3F, 0x78, 0x6D}, {0xde, 0xad, 0xbe, 0xef}},
	}
	for expected, inputs := range data {
		for i, input := range inputs {
			t.Logf("checking %q (%d)", expected, i)
			name, _, err := encoding.Detect(input)
			require.NoError(t, err)
			require.Equal(t, expected, name)
		}
	}
}

func TestLoad(t *testing.T) {
	for _, name := range []string{"utf8", "UTF-8", "utf16le", "utf16be", "iso-8859-1", "windows-1251", "koi8-r"} {
		require.NotNil(t, encoding.Load(name), "load %s", name)
	}
	require.Nil(t, encoding.Load("klingon"))
}

func TestDecodeUTF16(t *testing.T) {
	// "<a/>" in UTF-16LE with BOM
	input := []byte{0xFF, 0xFE, '<', 0x00, 'a', 0x00, '/', 0x00, '>', 0x00}
	name, bom, err := encoding.Detect(input)
	require.NoError(t, err)
	require.Equal(t, "utf16le", name)
	enc := encoding.Load(name)
	require.NotNil(t, enc)
	out, err := enc.NewDecoder().Bytes(input[bom:])
	require.NoError(t, err)
	require.Equal(t, "<a/>", string(out))
}
