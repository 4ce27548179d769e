package textbuf

import (
	"sort"
	"strings"
)

// EditOperation is a single ranged replacement. An empty Text deletes the
// range; an empty range inserts at its start position.
type EditOperation struct {
	// Identifier is carried through to the reverse operation unchanged.
	Identifier string
	Range      Range
	Text       string
	// ForceMoveMarkers asks marker owners to move markers at the edges of
	// the range together with the inserted text.
	ForceMoveMarkers bool
	// IsAutoWhitespaceEdit marks edits that inserted automatic indentation.
	IsAutoWhitespaceEdit bool
}

// ApplyEditsResult carries everything a caller needs to invert or observe a
// committed batch.
type ApplyEditsResult struct {
	// ReverseOperations restore the previous content when applied in the
	// returned order.
	ReverseOperations []EditOperation
	// Changes are the per-line events emitted to listeners.
	Changes []RawChange
	// TrimAutoWhitespaceLineNumbers lists lines, descending, whose
	// automatic indentation is a removal candidate on the next edit.
	TrimAutoWhitespaceLineNumbers []int
}

// validatedOperation pins an operation to pre-edit byte offsets.
type validatedOperation struct {
	sortIndex            int
	identifier           string
	rng                  Range
	rangeOffset          int
	rangeLength          int
	lines                []string
	forceMoveMarkers     bool
	isAutoWhitespaceEdit bool
}

type whitespaceCandidate struct {
	lineNumber int
	oldContent string
}

// ApplyEdits validates, orders and executes a batch of ranged replacements.
// Validation happens before any mutation: the batch either commits as a
// whole or leaves the buffer untouched.
func (b *Buffer) ApplyEdits(operations []EditOperation, recordTrimAutoWhitespace bool) (*ApplyEditsResult, error) {
	mightContainRTL := b.mightContainRTL
	mightContainNonBasicASCII := b.mightContainNonBasicASCII

	validated := make([]validatedOperation, len(operations))
	for i, op := range operations {
		if err := b.ValidateRange(op.Range); err != nil {
			return nil, err
		}
		if !mightContainRTL && op.Text != "" {
			mightContainRTL = ContainsRTL(op.Text)
		}
		if !mightContainNonBasicASCII && op.Text != "" {
			mightContainNonBasicASCII = !IsBasicASCII(op.Text)
		}
		var lines []string
		if op.Text != "" {
			lines = SplitLines(op.Text)
		}
		validated[i] = validatedOperation{
			sortIndex:            i,
			identifier:           op.Identifier,
			rng:                  op.Range,
			rangeOffset:          b.GetOffsetAt(op.Range.Start.Line, op.Range.Start.Column),
			rangeLength:          b.GetValueLengthInRange(op.Range),
			lines:                lines,
			forceMoveMarkers:     op.ForceMoveMarkers,
			isAutoWhitespaceEdit: op.IsAutoWhitespaceEdit,
		}
	}

	sort.Slice(validated, func(i, j int) bool {
		return sortOpsAscending(&validated[i], &validated[j])
	})

	for i := 0; i < len(validated)-1; i++ {
		if validated[i+1].rng.Start.IsBefore(validated[i].rng.End) {
			return nil, ErrOverlappingRanges
		}
	}

	reverseRanges := computeInverseRanges(validated)

	var candidates []whitespaceCandidate
	if recordTrimAutoWhitespace {
		for i := range validated {
			op := &validated[i]
			if !op.isAutoWhitespaceEdit || !op.rng.IsEmpty() {
				continue
			}
			rev := reverseRanges[i]
			for line := rev.Start.Line; line <= rev.End.Line; line++ {
				content := ""
				if line == rev.Start.Line {
					content = b.GetLineContent(op.rng.Start.Line)
				}
				candidates = append(candidates, whitespaceCandidate{lineNumber: line, oldContent: content})
			}
		}
	}

	reverseOperations := make([]EditOperation, len(validated))
	for i := range validated {
		op := &validated[i]
		reverseOperations[i] = EditOperation{
			Identifier:       op.identifier,
			Range:            reverseRanges[i],
			Text:             b.GetValueInRange(op.rng),
			ForceMoveMarkers: op.forceMoveMarkers,
		}
	}

	b.mightContainRTL = mightContainRTL
	b.mightContainNonBasicASCII = mightContainNonBasicASCII

	changes := b.doApplyEdits(validated)

	var trimLines []int
	if recordTrimAutoWhitespace && len(candidates) > 0 {
		sort.Slice(candidates, func(i, j int) bool {
			return candidates[i].lineNumber > candidates[j].lineNumber
		})
		for i, c := range candidates {
			if i > 0 && candidates[i-1].lineNumber == c.lineNumber {
				continue
			}
			content := b.GetLineContent(c.lineNumber)
			if len(content) == 0 || content == c.oldContent || FirstNonWhitespaceIndex(content) != -1 {
				continue
			}
			trimLines = append(trimLines, c.lineNumber)
		}
	}

	b.emit(changes)

	return &ApplyEditsResult{
		ReverseOperations:             reverseOperations,
		Changes:                       changes,
		TrimAutoWhitespaceLineNumbers: trimLines,
	}, nil
}

// doApplyEdits commits the batch from highest offset to lowest so earlier
// offsets stay valid while applying.
func (b *Buffer) doApplyEdits(validated []validatedOperation) []RawChange {
	sort.Slice(validated, func(i, j int) bool {
		return sortOpsDescending(&validated[i], &validated[j])
	})

	var changes []RawChange

	for i := range validated {
		op := &validated[i]

		startLine := op.rng.Start.Line
		endLine := op.rng.End.Line

		if op.rng.IsEmpty() && len(op.lines) == 0 {
			// no-op
			continue
		}

		deletingLinesCnt := endLine - startLine
		insertingLinesCnt := 0
		if len(op.lines) > 0 {
			insertingLinesCnt = len(op.lines) - 1
		}
		editingLinesCnt := min(deletingLinesCnt, insertingLinesCnt)

		text := strings.Join(op.lines, b.eol)

		if op.rangeLength > 0 {
			b.tree.Delete(op.rangeOffset, op.rangeLength)
		}
		if text != "" {
			b.tree.Insert(text, op.rangeOffset)
		}

		for line := startLine; line <= startLine+editingLinesCnt; line++ {
			changes = append(changes, LineChanged{LineNumber: line, Content: b.GetLineContent(line)})
		}
		if editingLinesCnt < deletingLinesCnt {
			changes = append(changes, LinesDeleted{
				FromLineNumber: startLine + editingLinesCnt + 1,
				ToLineNumber:   endLine,
			})
		}
		if editingLinesCnt < insertingLinesCnt {
			changes = append(changes, LinesInserted{
				FromLineNumber: startLine + editingLinesCnt + 1,
				ToLineNumber:   startLine + insertingLinesCnt,
				Content:        strings.Join(op.lines[editingLinesCnt+1:], "\n"),
			})
		}
	}
	return changes
}

// computeInverseRanges maps each edit to the range its inserted content
// occupies after the batch commits, shifting starts by the deltas of the
// previous operations.
func computeInverseRanges(operations []validatedOperation) []Range {
	result := make([]Range, 0, len(operations))

	prevOpEndLine := 0
	prevOpEndColumn := 0
	var prevOp *validatedOperation

	for i := range operations {
		op := &operations[i]

		var startLine, startColumn int
		if prevOp != nil {
			if prevOp.rng.End.Line == op.rng.Start.Line {
				startLine = prevOpEndLine
				startColumn = prevOpEndColumn + (op.rng.Start.Column - prevOp.rng.End.Column)
			} else {
				startLine = prevOpEndLine + (op.rng.Start.Line - prevOp.rng.End.Line)
				startColumn = op.rng.Start.Column
			}
		} else {
			startLine = op.rng.Start.Line
			startColumn = op.rng.Start.Column
		}

		var resultRange Range
		switch {
		case len(op.lines) == 0:
			resultRange = NewRange(startLine, startColumn, startLine, startColumn)
		case len(op.lines) == 1:
			resultRange = NewRange(startLine, startColumn, startLine, startColumn+len(op.lines[0]))
		default:
			lastLine := op.lines[len(op.lines)-1]
			resultRange = NewRange(startLine, startColumn, startLine+len(op.lines)-1, len(lastLine)+1)
		}

		prevOpEndLine = resultRange.End.Line
		prevOpEndColumn = resultRange.End.Column
		result = append(result, resultRange)
		prevOp = op
	}
	return result
}

func sortOpsAscending(a, b *validatedOperation) bool {
	if a.rng.End == b.rng.End {
		return a.sortIndex < b.sortIndex
	}
	return a.rng.End.IsBefore(b.rng.End)
}

func sortOpsDescending(a, b *validatedOperation) bool {
	if a.rng.End == b.rng.End {
		return a.sortIndex > b.sortIndex
	}
	return b.rng.End.IsBefore(a.rng.End)
}
