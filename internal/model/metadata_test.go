package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetadataSet(t *testing.T) {
	set := NewMetadataSet()
	assert.Equal(t, 0, set.Len())

	set.Put("a.pdf", FileMetadata{Title: "A"})
	set.Put("b.pdf", FileMetadata{Title: "B"})
	set.Put("c.pdf", FileMetadata{Title: "C"})

	assert.Equal(t, 3, set.Len())
	assert.Equal(t, []string{"a.pdf", "b.pdf", "c.pdf"}, set.Names())

	md, ok := set.Get("b.pdf")
	assert.True(t, ok)
	assert.Equal(t, "B", md.Title)

	_, ok = set.Get("missing.pdf")
	assert.False(t, ok)
}

func TestMetadataSet_ReplaceKeepsPosition(t *testing.T) {
	set := NewMetadataSet()
	set.Put("a.pdf", FileMetadata{Title: "first"})
	set.Put("b.pdf", FileMetadata{Title: "other"})
	set.Put("a.pdf", FileMetadata{Title: "second"})

	assert.Equal(t, 2, set.Len())
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, set.Names())

	md, _ := set.Get("a.pdf")
	assert.Equal(t, "second", md.Title)
}

func TestMetadataSet_NamesIsACopy(t *testing.T) {
	set := NewMetadataSet()
	set.Put("a.pdf", FileMetadata{})

	names := set.Names()
	names[0] = "mutated"

	assert.Equal(t, []string{"a.pdf"}, set.Names())
}
