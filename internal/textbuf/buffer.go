package textbuf

import (
	"strings"

	"github.com/shinyvision/textbuf/internal/source"
)

// Buffer is a piece-table text buffer. It is single-threaded and
// non-reentrant; callers that need concurrency wrap it in a single-writer
// lock. Read methods are pure with respect to the tree.
type Buffer struct {
	tree *pieceTree

	bom string
	eol string

	mightContainRTL           bool
	mightContainNonBasicASCII bool

	listeners []ChangeListener
}

// New builds a buffer from a text source. The source's text becomes the
// immutable original buffer, wrapped in a single piece.
func New(src *source.TextSource) *Buffer {
	return &Buffer{
		tree:                      newPieceTree(src.Buffer.Text),
		bom:                       src.BOM,
		eol:                       src.EOL,
		mightContainRTL:           src.ContainsRTL,
		mightContainNonBasicASCII: !src.IsBasicASCII,
	}
}

// NewFromString builds a buffer directly from text with "\n" line endings.
func NewFromString(text string) *Buffer {
	return New(source.FromString(text, "\n"))
}

func (b *Buffer) BOM() string { return b.bom }
func (b *Buffer) EOL() string { return b.eol }

func (b *Buffer) MightContainRTL() bool           { return b.mightContainRTL }
func (b *Buffer) MightContainNonBasicASCII() bool { return b.mightContainNonBasicASCII }

// AddListener registers a content-change observer.
func (b *Buffer) AddListener(l ChangeListener) {
	b.listeners = append(b.listeners, l)
}

func (b *Buffer) emit(changes []RawChange) {
	if len(changes) == 0 {
		return
	}
	for _, l := range b.listeners {
		l.OnContentChanged(changes)
	}
}

// Length returns the total byte length of the document.
func (b *Buffer) Length() int {
	return b.tree.Length()
}

// GetLineCount returns the number of lines in the document.
func (b *Buffer) GetLineCount() int {
	return b.tree.LineCount()
}

// GetValue returns the whole document.
func (b *Buffer) GetValue() string {
	return b.tree.Text()
}

// GetValueInRange returns the bytes covered by a validated range.
func (b *Buffer) GetValueInRange(r Range) string {
	return b.tree.ValueInRange(r)
}

// GetValueLengthInRange returns the number of bytes covered by a range.
func (b *Buffer) GetValueLengthInRange(r Range) int {
	start := b.tree.OffsetAt(r.Start.Line, r.Start.Column)
	end := b.tree.OffsetAt(r.End.Line, r.End.Column)
	return end - start
}

// GetOffsetAt converts a 1-based position to a byte offset.
func (b *Buffer) GetOffsetAt(line, column int) int {
	return b.tree.OffsetAt(line, column)
}

// GetPositionAt converts a byte offset to a 1-based position.
func (b *Buffer) GetPositionAt(offset int) Position {
	return b.tree.PositionAt(offset)
}

// GetRangeAt converts a byte span to a range.
func (b *Buffer) GetRangeAt(offset, length int) Range {
	return Range{
		Start: b.tree.PositionAt(offset),
		End:   b.tree.PositionAt(offset + length),
	}
}

// GetLineContent returns a line without its terminating line break.
func (b *Buffer) GetLineContent(line int) string {
	raw := b.tree.LineRawContent(line)
	raw = strings.TrimSuffix(raw, "\n")
	return strings.TrimSuffix(raw, "\r")
}

// GetLineLength returns the byte length of a line excluding its line break.
func (b *Buffer) GetLineLength(line int) int {
	return len(b.GetLineContent(line))
}

// GetLineMinColumn returns the first column of a line, which is always 1.
func (b *Buffer) GetLineMinColumn(line int) int {
	return 1
}

// GetLineMaxColumn returns the column after the last character of a line.
func (b *Buffer) GetLineMaxColumn(line int) int {
	return b.GetLineLength(line) + 1
}

// GetLineFirstNonWhitespaceColumn returns the 1-based column of the first
// non-whitespace character, or 0 when the line is blank.
func (b *Buffer) GetLineFirstNonWhitespaceColumn(line int) int {
	idx := FirstNonWhitespaceIndex(b.GetLineContent(line))
	if idx == -1 {
		return 0
	}
	return idx + 1
}

// GetLineLastNonWhitespaceColumn returns the column after the last
// non-whitespace character, or 0 when the line is blank.
func (b *Buffer) GetLineLastNonWhitespaceColumn(line int) int {
	idx := LastNonWhitespaceIndex(b.GetLineContent(line))
	if idx == -1 {
		return 0
	}
	return idx + 2
}

// ValidateRange checks a range against the current document bounds.
func (b *Buffer) ValidateRange(r Range) error {
	if err := b.validatePosition(r.Start); err != nil {
		return err
	}
	if err := b.validatePosition(r.End); err != nil {
		return err
	}
	if r.End.IsBefore(r.Start) {
		return ErrInvalidRange
	}
	return nil
}

func (b *Buffer) validatePosition(p Position) error {
	if p.Line < 1 || p.Line > b.GetLineCount() {
		return ErrInvalidRange
	}
	if p.Column < 1 || p.Column > b.GetLineMaxColumn(p.Line) {
		return ErrInvalidRange
	}
	return nil
}

// Insert adds text at a byte offset as a single-edit batch.
func (b *Buffer) Insert(offset int, text string) error {
	if offset < 0 || offset > b.Length() {
		return ErrInvalidOffset
	}
	pos := b.GetPositionAt(offset)
	_, err := b.ApplyEdits([]EditOperation{{
		Range: Range{Start: pos, End: pos},
		Text:  text,
	}}, false)
	return err
}

// Delete removes a byte span as a single-edit batch.
func (b *Buffer) Delete(offset, length int) error {
	if length < 0 || offset < 0 || offset+length > b.Length() {
		return ErrInvalidOffset
	}
	_, err := b.ApplyEdits([]EditOperation{{
		Range: b.GetRangeAt(offset, length),
	}}, false)
	return err
}
