package textbuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingListener struct {
	changes []RawChange
}

func (l *recordingListener) OnContentChanged(changes []RawChange) {
	l.changes = append(l.changes, changes...)
}

func TestApplyEditsBatchWithReverse(t *testing.T) {
	b := NewFromString("a\nb")

	result, err := b.ApplyEdits([]EditOperation{
		{Range: NewRange(1, 1, 1, 2), Text: "HELLO"},
		{Range: NewRange(2, 1, 2, 2), Text: "WORLD"},
	}, false)
	require.NoError(t, err)
	require.Equal(t, "HELLO\nWORLD", b.GetValue())

	_, err = b.ApplyEdits(result.ReverseOperations, false)
	require.NoError(t, err)
	require.Equal(t, "a\nb", b.GetValue())
}

func TestApplyEditsOverlapRejected(t *testing.T) {
	b := NewFromString("abcdefgh")

	_, err := b.ApplyEdits([]EditOperation{
		{Range: NewRange(1, 1, 1, 5), Text: "x"},
		{Range: NewRange(1, 3, 1, 7), Text: "y"},
	}, false)
	require.ErrorIs(t, err, ErrOverlappingRanges)
	require.Equal(t, "abcdefgh", b.GetValue())
}

func TestApplyEditsInvalidRangeRejected(t *testing.T) {
	b := NewFromString("abc")

	_, err := b.ApplyEdits([]EditOperation{
		{Range: NewRange(2, 1, 2, 2), Text: "x"},
	}, false)
	require.ErrorIs(t, err, ErrInvalidRange)

	_, err = b.ApplyEdits([]EditOperation{
		{Range: NewRange(1, 1, 1, 9), Text: "x"},
	}, false)
	require.ErrorIs(t, err, ErrInvalidRange)
	require.Equal(t, "abc", b.GetValue())
}

func TestApplyEditsNoOpEmitsNothing(t *testing.T) {
	b := NewFromString("abc")
	listener := &recordingListener{}
	b.AddListener(listener)

	result, err := b.ApplyEdits([]EditOperation{
		{Range: NewRange(1, 2, 1, 2), Text: ""},
	}, false)
	require.NoError(t, err)
	require.Equal(t, "abc", b.GetValue())
	assert.Empty(t, result.Changes)
	assert.Empty(t, listener.changes)
}

func TestApplyEditsEvents(t *testing.T) {
	b := NewFromString("one\ntwo\nthree")
	listener := &recordingListener{}
	b.AddListener(listener)

	// collapse the first two lines into one
	result, err := b.ApplyEdits([]EditOperation{
		{Range: NewRange(1, 1, 2, 4), Text: "X"},
	}, false)
	require.NoError(t, err)
	require.Equal(t, "X\nthree", b.GetValue())

	require.Equal(t, []RawChange{
		LineChanged{LineNumber: 1, Content: "X"},
		LinesDeleted{FromLineNumber: 2, ToLineNumber: 2},
	}, result.Changes)
	assert.Equal(t, result.Changes, listener.changes)
}

func TestApplyEditsInsertedLinesEvent(t *testing.T) {
	b := NewFromString("one\ntwo")

	result, err := b.ApplyEdits([]EditOperation{
		{Range: NewRange(1, 4, 1, 4), Text: "A\nB\nC"},
	}, false)
	require.NoError(t, err)
	require.Equal(t, "oneA\nB\nC\ntwo", b.GetValue())

	require.Equal(t, []RawChange{
		LineChanged{LineNumber: 1, Content: "oneA"},
		LinesInserted{FromLineNumber: 2, ToLineNumber: 3, Content: "B\nC"},
	}, result.Changes)
}

func TestApplyEditsReverseRoundtrip(t *testing.T) {
	original := "alpha\nbeta\ngamma\ndelta"
	b := NewFromString(original)

	result, err := b.ApplyEdits([]EditOperation{
		{Range: NewRange(1, 1, 1, 6), Text: "first\nsecond"},
		{Range: NewRange(2, 2, 3, 3), Text: ""},
		{Range: NewRange(4, 1, 4, 1), Text: "x"},
	}, false)
	require.NoError(t, err)

	require.Equal(t, "first\nsecond\nbmma\nxdelta", b.GetValue())

	_, err = b.ApplyEdits(result.ReverseOperations, false)
	require.NoError(t, err)
	require.Equal(t, original, b.GetValue())
	require.Equal(t, 4, b.GetLineCount())
}

func TestApplyEditsIdentifiersCarriedToReverse(t *testing.T) {
	b := NewFromString("abc")

	result, err := b.ApplyEdits([]EditOperation{
		{Identifier: "edit-1", Range: NewRange(1, 1, 1, 2), Text: "z", ForceMoveMarkers: true},
	}, false)
	require.NoError(t, err)
	require.Len(t, result.ReverseOperations, 1)
	assert.Equal(t, "edit-1", result.ReverseOperations[0].Identifier)
	assert.Equal(t, "a", result.ReverseOperations[0].Text)
	assert.True(t, result.ReverseOperations[0].ForceMoveMarkers)
}

func TestApplyEditsTrimAutoWhitespace(t *testing.T) {
	b := NewFromString("foo")

	// pressing enter after "foo" auto-indents the new line
	result, err := b.ApplyEdits([]EditOperation{
		{Range: NewRange(1, 4, 1, 4), Text: "\n    ", IsAutoWhitespaceEdit: true},
	}, true)
	require.NoError(t, err)
	require.Equal(t, "foo\n    ", b.GetValue())
	require.Equal(t, []int{2}, result.TrimAutoWhitespaceLineNumbers)

	// typing on the line removes it from the candidates
	result, err = b.ApplyEdits([]EditOperation{
		{Range: NewRange(2, 5, 2, 5), Text: "bar", IsAutoWhitespaceEdit: true},
	}, true)
	require.NoError(t, err)
	require.Equal(t, "foo\n    bar", b.GetValue())
	assert.Empty(t, result.TrimAutoWhitespaceLineNumbers)
}

func TestComputeInverseRangesSameLineShift(t *testing.T) {
	ops := []validatedOperation{
		{rng: NewRange(1, 1, 1, 1), lines: []string{"ab"}},
		{rng: NewRange(1, 3, 1, 3), lines: []string{"c"}},
	}
	ranges := computeInverseRanges(ops)
	require.Equal(t, NewRange(1, 1, 1, 3), ranges[0])
	// op one grew the line by two columns, so op two's insertion shifts right
	require.Equal(t, NewRange(1, 5, 1, 6), ranges[1])
}

func TestComputeInverseRangesMultiLineInsert(t *testing.T) {
	ops := []validatedOperation{
		{rng: NewRange(2, 3, 2, 3), lines: []string{"xx", "y"}},
	}
	ranges := computeInverseRanges(ops)
	require.Equal(t, NewRange(2, 3, 3, 2), ranges[0])
}
