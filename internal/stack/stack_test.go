package stack_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziord/robin/internal/stack"
)

func TestStack(t *testing.T) {
	var s stack.Stack[int]
	_, ok := s.Pop()
	require.False(t, ok)

	s.Push(1)
	s.Push(2)
	require.Equal(t, 2, s.Len())

	top, ok := s.Peek()
	require.True(t, ok)
	assert.Equal(t, 2, top)
	require.Equal(t, 2, s.Len(), "peek does not remove")

	v, ok := s.Pop()
	require.True(t, ok)
	assert.Equal(t, 2, v)
	v, ok = s.Pop()
	require.True(t, ok)
	assert.Equal(t, 1, v)
	_, ok = s.Pop()
	require.False(t, ok)
}
