package sets

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStringInsertHasDelete(t *testing.T) {
	s := NewString("a", "b")
	assert.True(t, s.Has("a"))
	assert.True(t, s.Has("b"))
	assert.False(t, s.Has("c"))

	s.Insert("c")
	assert.True(t, s.Has("c"))

	s.Delete("a")
	assert.False(t, s.Has("a"))
}

func TestInsertSetUnionsWithoutMutatingOther(t *testing.T) {
	a := NewString("x", "y")
	b := NewString("y", "z")
	a.InsertSet(b)

	list := a.UnsortedList()
	sort.Strings(list)
	assert.Equal(t, []string{"x", "y", "z"}, list)
	assert.Equal(t, 2, len(b), "InsertSet must not mutate the source set")
}

func TestUnsortedListLengthMatchesSetSize(t *testing.T) {
	s := NewString("a", "b", "c")
	assert.Len(t, s.UnsortedList(), 3)
}
