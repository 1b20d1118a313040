package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSetPopOrder(t *testing.T) {
	s := NewOpenSet(8)

	s.Push(1, 5.0)
	s.Push(2, 1.0)
	s.Push(3, 3.0)
	s.Push(4, 2.0)

	var nodes []uint32
	for {
		item, ok := s.Pop()
		if !ok {
			break
		}

		nodes = append(nodes, item.Node)
	}

	assert.Equal(t, []uint32{2, 4, 3, 1}, nodes)
	assert.Equal(t, 0, s.Len())
}

func TestOpenSetTieBreak(t *testing.T) {
	s := NewOpenSet(8)

	// Equal priorities resolve first-discovered-first-served.
	s.Push(7, 1.0)
	s.Push(8, 1.0)
	s.Push(9, 1.0)

	first, ok := s.Pop()
	require.True(t, ok)
	second, ok := s.Pop()
	require.True(t, ok)
	third, ok := s.Pop()
	require.True(t, ok)

	assert.Equal(t, uint32(7), first.Node)
	assert.Equal(t, uint32(8), second.Node)
	assert.Equal(t, uint32(9), third.Node)
	assert.Less(t, first.Seq, second.Seq)
	assert.Less(t, second.Seq, third.Seq)
}

func TestOpenSetSequencesIncrease(t *testing.T) {
	s := NewOpenSet(4)

	s1 := s.Push(1, 10)
	s2 := s.Push(1, 4)
	assert.Less(t, s1, s2)
}

func TestOpenSetPopEmpty(t *testing.T) {
	s := NewOpenSet(0)

	_, ok := s.Pop()
	assert.False(t, ok)
}

func TestOpenSetReset(t *testing.T) {
	s := NewOpenSet(4)

	s.Push(1, 1)
	s.Push(2, 2)
	require.Equal(t, 2, s.Len())

	s.Reset()
	assert.Equal(t, 0, s.Len())

	seq := s.Push(3, 3)
	assert.Equal(t, uint64(1), seq)
}
