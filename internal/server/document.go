package server

import (
	"fmt"
	"strings"
	"sync"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/shinyvision/textbuf/internal/indent"
	"github.com/shinyvision/textbuf/internal/source"
	"github.com/shinyvision/textbuf/internal/textbuf"
)

// Document tracks one synchronized text document: its piece-table buffer,
// the detected indentation, and the input edits accumulated for downstream
// incremental parsers.
type Document struct {
	mu          sync.RWMutex
	uri         string
	languageID  string
	version     int32
	buf         *textbuf.Buffer
	indentation indent.Guess

	// edits since the last TakeEdits call; nil with needsFullParse set
	// after a whole-document replacement
	pendingEdits   []sitter.InputEdit
	needsFullParse bool
}

// NewDocument constructs a document from the full text sent in didOpen.
func NewDocument(uri, languageID string, version int32, text string) *Document {
	return &Document{
		uri:            uri,
		languageID:     languageID,
		version:        version,
		buf:            textbuf.New(source.FromString(text, "\n")),
		needsFullParse: true,
	}
}

func (d *Document) URI() string        { return d.uri }
func (d *Document) LanguageID() string { return d.languageID }

func (d *Document) Version() int32 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// Read executes fn while holding a read lock on the document. The callback
// must not retain the buffer beyond its scope.
func (d *Document) Read(fn func(buf *textbuf.Buffer)) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	fn(d.buf)
}

// Replace swaps in a whole new document text, as sent by a full-sync change.
func (d *Document) Replace(version int32, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buf = textbuf.New(source.FromString(text, "\n"))
	d.version = version
	d.pendingEdits = nil
	d.needsFullParse = true
}

// ApplyIncremental applies one ranged change from didChange and records the
// matching tree-sitter input edit.
func (d *Document) ApplyIncremental(version int32, r protocol.Range, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	rng := textbuf.NewRange(
		int(r.Start.Line)+1, int(r.Start.Character)+1,
		int(r.End.Line)+1, int(r.End.Character)+1,
	)
	startOffset := d.buf.GetOffsetAt(rng.Start.Line, rng.Start.Column)
	oldEndOffset := d.buf.GetOffsetAt(rng.End.Line, rng.End.Column)

	if _, err := d.buf.ApplyEdits([]textbuf.EditOperation{{Range: rng, Text: text}}, false); err != nil {
		return fmt.Errorf("applying change to %s: %w", d.uri, err)
	}

	d.pendingEdits = append(d.pendingEdits, sitter.InputEdit{
		StartIndex:  uint(startOffset),
		OldEndIndex: uint(oldEndOffset),
		NewEndIndex: uint(startOffset + len(text)),
		StartPoint:  toPoint(r.Start),
		OldEndPoint: toPoint(r.End),
		NewEndPoint: advancePoint(r.Start, text),
	})
	d.version = version
	return nil
}

// TakeEdits drains the accumulated input edits. full reports that the
// document was replaced wholesale and any existing syntax tree must be
// discarded instead of edited.
func (d *Document) TakeEdits() (edits []sitter.InputEdit, full bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	edits = d.pendingEdits
	full = d.needsFullParse
	d.pendingEdits = nil
	d.needsFullParse = false
	return edits, full
}

// DetectIndentation runs the guesser over the current buffer.
func (d *Document) DetectIndentation(defaultTabSize int, defaultInsertSpaces bool) indent.Guess {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.indentation = indent.GuessIndentation(d.buf, defaultTabSize, defaultInsertSpaces)
	return d.indentation
}

// Indentation returns the most recently detected indentation.
func (d *Document) Indentation() indent.Guess {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.indentation
}

func toPoint(p protocol.Position) sitter.Point {
	return sitter.Point{Row: uint(p.Line), Column: uint(p.Character)}
}

// advancePoint returns the point reached after typing text at start.
func advancePoint(start protocol.Position, text string) sitter.Point {
	newLines := strings.Count(text, "\n")
	if newLines == 0 {
		return sitter.Point{Row: uint(start.Line), Column: uint(int(start.Character) + len(text))}
	}
	lastLineLen := len(text) - (strings.LastIndexByte(text, '\n') + 1)
	return sitter.Point{Row: uint(int(start.Line) + newLines), Column: uint(lastLineLen)}
}
