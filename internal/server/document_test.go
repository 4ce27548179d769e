package server

import (
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinyvision/textbuf/internal/textbuf"
)

func docContent(d *Document) string {
	content := ""
	d.Read(func(buf *textbuf.Buffer) {
		content = buf.GetValue()
	})
	return content
}

func TestDocumentIncrementalSync(t *testing.T) {
	doc := NewDocument("file:///tmp/a.txt", "plaintext", 1, "hello\nworld")

	// the didOpen text requires a full parse
	edits, full := doc.TakeEdits()
	require.True(t, full)
	require.Empty(t, edits)

	err := doc.ApplyIncremental(2, protocol.Range{
		Start: protocol.Position{Line: 0, Character: 0},
		End:   protocol.Position{Line: 0, Character: 5},
	}, "bye")
	require.NoError(t, err)
	require.Equal(t, "bye\nworld", docContent(doc))
	require.Equal(t, int32(2), doc.Version())

	edits, full = doc.TakeEdits()
	require.False(t, full)
	require.Len(t, edits, 1)
	assert.Equal(t, 0, int(edits[0].StartIndex))
	assert.Equal(t, 5, int(edits[0].OldEndIndex))
	assert.Equal(t, 3, int(edits[0].NewEndIndex))
	assert.Equal(t, 0, int(edits[0].NewEndPoint.Row))
	assert.Equal(t, 3, int(edits[0].NewEndPoint.Column))

	// a second TakeEdits drains nothing
	edits, full = doc.TakeEdits()
	assert.False(t, full)
	assert.Empty(t, edits)
}

func TestDocumentMultiLineInsertEdit(t *testing.T) {
	doc := NewDocument("file:///tmp/b.txt", "plaintext", 1, "ab")

	err := doc.ApplyIncremental(2, protocol.Range{
		Start: protocol.Position{Line: 0, Character: 1},
		End:   protocol.Position{Line: 0, Character: 1},
	}, "x\nyz")
	require.NoError(t, err)
	require.Equal(t, "ax\nyzb", docContent(doc))

	edits, _ := doc.TakeEdits()
	require.Len(t, edits, 1)
	assert.Equal(t, 1, int(edits[0].StartIndex))
	assert.Equal(t, 1, int(edits[0].OldEndIndex))
	assert.Equal(t, 5, int(edits[0].NewEndIndex))
	assert.Equal(t, 1, int(edits[0].NewEndPoint.Row))
	assert.Equal(t, 2, int(edits[0].NewEndPoint.Column))
}

func TestDocumentReplace(t *testing.T) {
	doc := NewDocument("file:///tmp/c.txt", "plaintext", 1, "old")
	doc.TakeEdits()

	doc.Replace(2, "brand new\ncontent")
	require.Equal(t, "brand new\ncontent", docContent(doc))

	edits, full := doc.TakeEdits()
	assert.True(t, full)
	assert.Empty(t, edits)
}

func TestDocumentRejectsInvalidChange(t *testing.T) {
	doc := NewDocument("file:///tmp/d.txt", "plaintext", 1, "short")

	err := doc.ApplyIncremental(2, protocol.Range{
		Start: protocol.Position{Line: 3, Character: 0},
		End:   protocol.Position{Line: 3, Character: 1},
	}, "x")
	require.Error(t, err)
	require.Equal(t, "short", docContent(doc))
}

func TestDocumentDetectIndentation(t *testing.T) {
	doc := NewDocument("file:///tmp/e.txt", "plaintext", 1, "a\n  b\n  c\n    d")

	guess := doc.DetectIndentation(4, false)
	assert.True(t, guess.InsertSpaces)
	assert.Equal(t, 2, guess.TabSize)
	assert.Equal(t, guess, doc.Indentation())
}

func TestDocumentStoreEvictionPinsOpenDocuments(t *testing.T) {
	store := NewDocumentStore(2)

	a := NewDocument("file:///a", "plaintext", 1, "a")
	b := NewDocument("file:///b", "plaintext", 1, "b")
	c := NewDocument("file:///c", "plaintext", 1, "c")

	store.RegisterOpen("file:///a", a)
	store.RegisterOpen("file:///b", b)
	store.RegisterOpen("file:///c", c)

	// everything is open, nothing can be evicted
	require.Equal(t, 3, store.Len())

	store.Close("file:///a")
	store.RegisterOpen("file:///d", NewDocument("file:///d", "plaintext", 1, "d"))
	require.Equal(t, 3, store.Len())

	_, ok := store.Get("file:///a")
	assert.False(t, ok)
	_, ok = store.Get("file:///b")
	assert.True(t, ok)
	_, ok = store.Get("file:///d")
	assert.True(t, ok)
}