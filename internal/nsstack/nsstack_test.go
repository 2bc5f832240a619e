package nsstack_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziord/robin/dom"
	"github.com/ziord/robin/internal/nsstack"
)

func TestScopeChain(t *testing.T) {
	s := nsstack.New()
	s.Push()
	outer := dom.NewNamespace("p", "urn:outer")
	require.NoError(t, s.Declare(outer))

	s.Push()
	inner := dom.NewNamespace("p", "urn:inner")
	require.NoError(t, s.Declare(inner))

	assert.Equal(t, inner, s.Lookup("p"), "the nearest declaration wins")
	assert.Nil(t, s.Lookup("q"))

	s.Pop()
	assert.Equal(t, outer, s.Lookup("p"))

	s.Pop()
	assert.Nil(t, s.Lookup("p"))
	assert.Equal(t, 0, s.Len())
}

func TestDuplicateDeclaration(t *testing.T) {
	s := nsstack.New()
	s.Push()
	require.NoError(t, s.Declare(dom.NewNamespace("p", "urn:a")))
	err := s.Declare(dom.NewNamespace("p", "urn:b"))
	require.ErrorIs(t, err, nsstack.ErrDuplicateNamespace)

	// a fresh frame may redeclare
	s.Push()
	require.NoError(t, s.Declare(dom.NewNamespace("p", "urn:b")))
}

func TestDefault(t *testing.T) {
	s := nsstack.New()
	s.Push()
	assert.Nil(t, s.Default())
	def := dom.NewNamespace("", "urn:d")
	require.NoError(t, s.Declare(def))
	assert.Equal(t, def, s.Default())
	assert.True(t, def.IsDefault())
}
