package textbuf

import "strings"

// nodeAt2 locates the node containing a (line, column) position and the
// intra-piece byte offset of that position. When a logical line spans
// multiple pieces the search continues through inorder successors until the
// remaining column fits, consuming every fully covered piece on the way.
func (t *pieceTree) nodeAt2(line, column int) (*treeNode, int) {
	x := t.root

	for x != t.sentinel {
		switch {
		case x.left != t.sentinel && x.lfLeft >= line-1:
			x = x.left
		case x.lfLeft+x.piece.lineFeedCnt > line-1:
			prevAcc := x.piece.lineStarts.AccumulatedValue(line - x.lfLeft - 2)
			acc := x.piece.lineStarts.AccumulatedValue(line - x.lfLeft - 1)
			// columns past the line end clamp to the offset just after the
			// line's line feed
			return x, min(prevAcc+column-1, acc)
		case x.lfLeft+x.piece.lineFeedCnt == line-1:
			prevAcc := x.piece.lineStarts.AccumulatedValue(line - x.lfLeft - 2)
			if prevAcc+column-1 <= x.piece.length {
				return x, prevAcc + column - 1
			}
			// the line continues in successor pieces
			column -= x.piece.length - prevAcc
			goto chase
		default:
			line -= x.lfLeft + x.piece.lineFeedCnt
			x = x.right
		}
	}
	return t.sentinel, 0

chase:
	for x = t.next(x); x != t.sentinel; x = t.next(x) {
		if x.piece.lineFeedCnt > 0 {
			acc := x.piece.lineStarts.AccumulatedValue(0)
			return x, min(column-1, acc)
		}
		if x.piece.length >= column-1 {
			return x, column - 1
		}
		column -= x.piece.length
	}
	return t.sentinel, 0
}

// OffsetAt converts a 1-based (line, column) position to a byte offset.
func (t *pieceTree) OffsetAt(line, column int) int {
	leftLen := 0
	x := t.root
	for x != t.sentinel {
		switch {
		case x.left != t.sentinel && x.lfLeft+1 >= line:
			x = x.left
		case x.lfLeft+x.piece.lineFeedCnt+1 >= line:
			leftLen += x.sizeLeft
			acc := x.piece.lineStarts.AccumulatedValue(line - x.lfLeft - 2)
			return leftLen + acc + column - 1
		default:
			line -= x.lfLeft + x.piece.lineFeedCnt
			leftLen += x.sizeLeft + x.piece.length
			x = x.right
		}
	}
	return leftLen
}

// PositionAt converts a byte offset to a 1-based (line, column) position.
func (t *pieceTree) PositionAt(offset int) Position {
	x := t.root
	lfCnt := 0
	originalOffset := offset

	for x != t.sentinel {
		switch {
		case x.sizeLeft != 0 && x.sizeLeft >= offset:
			x = x.left
		case x.sizeLeft+x.piece.length >= offset:
			idx, rem := x.piece.lineStarts.IndexOf(offset - x.sizeLeft)
			lfCnt += x.lfLeft + idx
			if idx == 0 {
				// the position's line may start in a previous piece
				lineStartOffset := t.OffsetAt(lfCnt+1, 1)
				return Position{Line: lfCnt + 1, Column: originalOffset - lineStartOffset + 1}
			}
			return Position{Line: lfCnt + 1, Column: rem + 1}
		default:
			offset -= x.sizeLeft + x.piece.length
			lfCnt += x.lfLeft + x.piece.lineFeedCnt
			if x.right == t.sentinel {
				lineStartOffset := t.OffsetAt(lfCnt+1, 1)
				return Position{Line: lfCnt + 1, Column: originalOffset - offset - lineStartOffset + 1}
			}
			x = x.right
		}
	}
	return Position{Line: 1, Column: 1}
}

// ValueInRange concatenates the partial slice of the start node, every fully
// covered interior node, and the partial slice of the end node.
func (t *pieceTree) ValueInRange(r Range) string {
	if r.IsEmpty() {
		return ""
	}
	startNode, startRem := t.nodeAt2(r.Start.Line, r.Start.Column)
	endNode, endRem := t.nodeAt2(r.End.Line, r.End.Column)

	if startNode == endNode {
		return t.pieceText(startNode.piece, startRem, endRem-startRem)
	}

	var sb strings.Builder
	sb.WriteString(t.pieceText(startNode.piece, startRem, startNode.piece.length-startRem))
	for x := t.next(startNode); x != t.sentinel; x = t.next(x) {
		if x == endNode {
			sb.WriteString(t.pieceText(x.piece, 0, endRem))
			break
		}
		sb.WriteString(t.pieceText(x.piece, 0, x.piece.length))
	}
	return sb.String()
}

// Text returns the full document content in piece order.
func (t *pieceTree) Text() string {
	var sb strings.Builder
	sb.Grow(t.Length())
	for x := t.leftmost(t.root); x != t.sentinel; x = t.next(x) {
		sb.WriteString(t.pieceText(x.piece, 0, x.piece.length))
	}
	return sb.String()
}

// LineRawContent returns the bytes of a 1-based line including its
// terminating line feed, walking successor pieces when the line continues
// past the first piece containing it.
func (t *pieceTree) LineRawContent(line int) string {
	x := t.root
	var sb strings.Builder

	for x != t.sentinel {
		switch {
		case x.left != t.sentinel && x.lfLeft >= line-1:
			x = x.left
			continue
		case x.lfLeft+x.piece.lineFeedCnt > line-1:
			prevAcc := x.piece.lineStarts.AccumulatedValue(line - x.lfLeft - 2)
			acc := x.piece.lineStarts.AccumulatedValue(line - x.lfLeft - 1)
			return t.pieceText(x.piece, prevAcc, acc-prevAcc)
		case x.lfLeft+x.piece.lineFeedCnt == line-1:
			prevAcc := x.piece.lineStarts.AccumulatedValue(line - x.lfLeft - 2)
			sb.WriteString(t.pieceText(x.piece, prevAcc, x.piece.length-prevAcc))
			goto chase
		default:
			line -= x.lfLeft + x.piece.lineFeedCnt
			x = x.right
			continue
		}
	}
	return sb.String()

chase:
	for x = t.next(x); x != t.sentinel; x = t.next(x) {
		if x.piece.lineFeedCnt > 0 {
			acc := x.piece.lineStarts.AccumulatedValue(0)
			sb.WriteString(t.pieceText(x.piece, 0, acc))
			return sb.String()
		}
		sb.WriteString(t.pieceText(x.piece, 0, x.piece.length))
	}
	return sb.String()
}
