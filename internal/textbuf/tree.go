package textbuf

// pieceTree is the piece table: document content is the inorder
// concatenation of the byte ranges referenced by the tree's pieces. The
// original buffer is immutable; user insertions append to the change buffer
// and never rewrite bytes already referenced.
type pieceTree struct {
	root     *treeNode
	sentinel *treeNode
	original []byte
	changes  []byte
}

func newPieceTree(original string) *pieceTree {
	t := &pieceTree{
		original: []byte(original),
	}
	t.sentinel = newSentinel()
	t.root = t.sentinel
	if len(original) > 0 {
		t.rbInsertRight(t.sentinel, newPiece(true, 0, original))
	}
	return t
}

func (t *pieceTree) buffer(p *piece) []byte {
	if p.original {
		return t.original
	}
	return t.changes
}

func (t *pieceTree) pieceText(p *piece, start, length int) string {
	buf := t.buffer(p)
	return string(buf[p.offset+start : p.offset+start+length])
}

// Length returns the total byte length of the document.
func (t *pieceTree) Length() int {
	x := t.root
	size := 0
	for x != t.sentinel {
		size += x.sizeLeft + x.piece.length
		x = x.right
	}
	return size
}

// LineCount returns the total number of lines, computed along the rightmost
// spine.
func (t *pieceTree) LineCount() int {
	x := t.root
	cnt := 1
	for x != t.sentinel {
		cnt += x.lfLeft + x.piece.lineFeedCnt
		x = x.right
	}
	return cnt
}

// Insert places value at the given byte offset. The bytes are appended to
// the change buffer first; the structural update then either coalesces with
// the piece already referencing the change buffer tail, splits the piece the
// offset lands in, or links a fresh piece at the boundary.
func (t *pieceTree) Insert(value string, offset int) error {
	if offset < 0 || offset > t.Length() {
		return ErrInvalidOffset
	}
	if len(value) == 0 {
		return nil
	}

	appendStart := len(t.changes)
	t.changes = append(t.changes, value...)

	if t.root == t.sentinel {
		t.rbInsertRight(t.sentinel, newPiece(false, appendStart, value))
		return nil
	}

	node, remainder, _ := t.nodeAt(offset)
	p := node.piece

	switch {
	case !p.original && remainder == p.length && p.offset+p.length == appendStart:
		// the piece references the change buffer tail right before the
		// append: grow it in place
		t.appendToNode(node, value)
	case remainder == 0:
		t.rbInsertLeft(node, newPiece(false, appendStart, value))
	case remainder < p.length:
		t.splitAndInsert(node, remainder, newPiece(false, appendStart, value))
	default:
		t.rbInsertRight(node, newPiece(false, appendStart, value))
	}
	t.resetSentinel()
	return nil
}

// appendToNode extends a change-buffer piece whose end coincides with the
// insertion point and the change buffer tail.
func (t *pieceTree) appendToNode(node *treeNode, value string) {
	lfCnt, lineLengths := computeLineStarts(value)
	p := node.piece
	ls := p.lineStarts
	last := ls.Count() - 1
	// the first new line extends the piece's trailing fragment
	ls.ChangeValue(last, ls.ValueAt(last)+lineLengths[0])
	if len(lineLengths) > 1 {
		ls.InsertValues(last+1, lineLengths[1:])
	}
	p.length += len(value)
	p.lineFeedCnt += lfCnt
	t.updateMetadata(node, len(value), lfCnt)
}

// splitAndInsert splits node at remainder and links first the detached right
// half, then the new piece, as successors of node. That order yields the
// inorder sequence left-half, new piece, right-half.
func (t *pieceTree) splitAndInsert(node *treeNode, remainder int, newP *piece) {
	p := node.piece
	rightPiece := t.trailingPiece(p, remainder)

	// truncate the left half in place
	idx, rem := p.lineStarts.IndexOf(remainder)
	sizeDelta := remainder - p.length
	lfDelta := idx - p.lineFeedCnt
	p.lineStarts.RemoveValues(idx+1, p.lineStarts.Count()-idx-1)
	p.lineStarts.ChangeValue(idx, rem)
	p.length = remainder
	p.lineFeedCnt = idx
	t.updateMetadata(node, sizeDelta, lfDelta)

	if rightPiece.length > 0 {
		t.rbInsertRight(node, rightPiece)
	}
	t.rbInsertRight(node, newP)
}

// trailingPiece builds a fresh piece for the suffix of p starting at the
// given intra-piece offset.
func (t *pieceTree) trailingPiece(p *piece, from int) *piece {
	idx, rem := p.lineStarts.IndexOf(from)
	lengths := make([]int, 0, p.lineStarts.Count()-idx)
	lengths = append(lengths, p.lineStarts.ValueAt(idx)-rem)
	for i := idx + 1; i < p.lineStarts.Count(); i++ {
		lengths = append(lengths, p.lineStarts.ValueAt(i))
	}
	return &piece{
		original:    p.original,
		offset:      p.offset + from,
		length:      p.length - from,
		lineFeedCnt: p.lineFeedCnt - idx,
		lineStarts:  newPrefixSum(lengths),
	}
}

// Delete removes count bytes starting at offset.
func (t *pieceTree) Delete(offset, count int) error {
	if count < 0 || offset < 0 || offset+count > t.Length() {
		return ErrInvalidOffset
	}
	if count == 0 || t.root == t.sentinel {
		return nil
	}

	startNode, startRem, _ := t.nodeAt(offset)
	endNode, endRem, _ := t.nodeAt(offset + count)

	if startNode == endNode {
		switch {
		case startRem == 0 && endRem == startNode.piece.length:
			t.rbDelete(startNode)
		case startRem == 0:
			t.deleteNodeHead(startNode, count)
		case endRem == startNode.piece.length:
			t.deleteNodeTail(startNode, count)
		default:
			t.shrinkNode(startNode, startRem, count)
		}
		t.resetSentinel()
		return nil
	}

	var toDelete []*treeNode

	firstInterior := t.next(startNode)
	switch {
	case startRem == startNode.piece.length:
		// start cursor sits at the node boundary, nothing removed here
	case startRem == 0:
		toDelete = append(toDelete, startNode)
	default:
		t.deleteNodeTail(startNode, startNode.piece.length-startRem)
	}

	switch {
	case endRem == endNode.piece.length:
		toDelete = append(toDelete, endNode)
	case endRem > 0:
		t.deleteNodeHead(endNode, endRem)
	}

	for n := firstInterior; n != endNode && n != t.sentinel; n = t.next(n) {
		toDelete = append(toDelete, n)
	}
	for _, n := range toDelete {
		t.rbDelete(n)
	}
	t.resetSentinel()
	return nil
}

// deleteNodeHead removes the first count bytes of a node's piece.
func (t *pieceTree) deleteNodeHead(node *treeNode, count int) {
	p := node.piece
	idx, rem := p.lineStarts.IndexOf(count)
	p.lineStarts.RemoveValues(0, idx)
	p.lineStarts.ChangeValue(0, p.lineStarts.ValueAt(0)-rem)
	p.offset += count
	p.length -= count
	p.lineFeedCnt -= idx
	t.updateMetadata(node, -count, -idx)
}

// deleteNodeTail removes the last count bytes of a node's piece.
func (t *pieceTree) deleteNodeTail(node *treeNode, count int) {
	p := node.piece
	newLength := p.length - count
	idx, rem := p.lineStarts.IndexOf(newLength)
	lfDelta := idx - p.lineFeedCnt
	p.lineStarts.RemoveValues(idx+1, p.lineStarts.Count()-idx-1)
	p.lineStarts.ChangeValue(idx, rem)
	p.length = newLength
	p.lineFeedCnt = idx
	t.updateMetadata(node, -count, lfDelta)
}

// shrinkNode removes count bytes strictly inside a node, splitting its piece
// in two. Zero-length suffixes are elided rather than linked.
func (t *pieceTree) shrinkNode(node *treeNode, startRem, count int) {
	p := node.piece
	rightPiece := t.trailingPiece(p, startRem+count)
	t.deleteNodeTail(node, p.length-startRem)
	if rightPiece.length > 0 {
		t.rbInsertRight(node, rightPiece)
	}
}

// nodeAt locates the node containing the given byte offset. The remainder is
// the intra-piece offset; at piece boundaries either neighbour may be
// returned depending on tree shape, with remainder 0 or the piece length.
func (t *pieceTree) nodeAt(offset int) (node *treeNode, remainder int, nodeStartOffset int) {
	x := t.root
	for x != t.sentinel {
		switch {
		case x.sizeLeft > offset:
			x = x.left
		case x.sizeLeft+x.piece.length >= offset:
			nodeStartOffset += x.sizeLeft
			return x, offset - x.sizeLeft, nodeStartOffset
		default:
			offset -= x.sizeLeft + x.piece.length
			nodeStartOffset += x.sizeLeft + x.piece.length
			x = x.right
		}
	}
	return t.sentinel, 0, 0
}

// offsetOfNode returns the byte offset of the start of a node's piece.
func (t *pieceTree) offsetOfNode(node *treeNode) int {
	pos := node.sizeLeft
	for node != t.root {
		if node.parent.right == node {
			pos += node.parent.sizeLeft + node.parent.piece.length
		}
		node = node.parent
	}
	return pos
}

// updateMetadata propagates known byte and line-feed deltas from x to the
// root, adjusting every ancestor whose left subtree contains x.
func (t *pieceTree) updateMetadata(x *treeNode, sizeDelta, lfDelta int) {
	if sizeDelta == 0 && lfDelta == 0 {
		return
	}
	for x != t.root && x != t.sentinel {
		if x.parent.left == x {
			x.parent.sizeLeft += sizeDelta
			x.parent.lfLeft += lfDelta
		}
		x = x.parent
	}
}

// recomputeMetadata repairs ancestor metadata when the deltas below x are
// unknown. It climbs to the first ancestor whose left subtree contains the
// modification, recomputes that subtree directly, and carries the resulting
// delta to the root.
func (t *pieceTree) recomputeMetadata(x *treeNode) {
	for x != t.root && x == x.parent.right {
		x = x.parent
	}
	if x == t.root {
		return
	}
	x = x.parent
	sizeDelta := t.subtreeSize(x.left) - x.sizeLeft
	lfDelta := t.subtreeLineFeeds(x.left) - x.lfLeft
	x.sizeLeft += sizeDelta
	x.lfLeft += lfDelta
	for x != t.root {
		if x.parent.left == x {
			x.parent.sizeLeft += sizeDelta
			x.parent.lfLeft += lfDelta
		}
		x = x.parent
	}
}

func (t *pieceTree) leftRotate(x *treeNode) {
	y := x.right

	// x moves into y's left subtree
	y.sizeLeft += x.sizeLeft + x.piece.length
	y.lfLeft += x.lfLeft + x.piece.lineFeedCnt

	x.right = y.left
	if y.left != t.sentinel {
		y.left.parent = x
	}
	y.parent = x.parent
	if x.parent == t.sentinel {
		t.root = y
	} else if x.parent.left == x {
		x.parent.left = y
	} else {
		x.parent.right = y
	}
	y.left = x
	x.parent = y
}

func (t *pieceTree) rightRotate(y *treeNode) {
	x := y.left
	y.left = x.right
	if x.right != t.sentinel {
		x.right.parent = y
	}
	x.parent = y.parent

	// x leaves y's left subtree
	y.sizeLeft -= x.sizeLeft + x.piece.length
	y.lfLeft -= x.lfLeft + x.piece.lineFeedCnt

	if y.parent == t.sentinel {
		t.root = x
	} else if y.parent.right == y {
		y.parent.right = x
	} else {
		y.parent.left = x
	}
	x.right = y
	y.parent = x
}

// rbInsertRight links a new red node carrying p as the inorder successor of
// node. With an empty tree the node becomes the (black) root.
func (t *pieceTree) rbInsertRight(node *treeNode, p *piece) *treeNode {
	z := &treeNode{
		parent: t.sentinel,
		left:   t.sentinel,
		right:  t.sentinel,
		color:  red,
		piece:  p,
	}
	switch {
	case t.root == t.sentinel:
		t.root = z
		z.color = black
	case node.right == t.sentinel:
		node.right = z
		z.parent = node
	default:
		next := t.leftmost(node.right)
		next.left = z
		z.parent = next
	}
	t.fixInsert(z)
	return z
}

// rbInsertLeft links a new red node carrying p as the inorder predecessor of
// node.
func (t *pieceTree) rbInsertLeft(node *treeNode, p *piece) *treeNode {
	z := &treeNode{
		parent: t.sentinel,
		left:   t.sentinel,
		right:  t.sentinel,
		color:  red,
		piece:  p,
	}
	switch {
	case t.root == t.sentinel:
		t.root = z
		z.color = black
	case node.left == t.sentinel:
		node.left = z
		z.parent = node
	default:
		prev := t.rightmost(node.left)
		prev.right = z
		z.parent = prev
	}
	t.fixInsert(z)
	return z
}

func (t *pieceTree) fixInsert(x *treeNode) {
	t.recomputeMetadata(x)

	for x != t.root && x.parent.color == red {
		if x.parent == x.parent.parent.left {
			y := x.parent.parent.right
			if y.color == red {
				x.parent.color = black
				y.color = black
				x.parent.parent.color = red
				x = x.parent.parent
			} else {
				if x == x.parent.right {
					x = x.parent
					t.leftRotate(x)
				}
				x.parent.color = black
				x.parent.parent.color = red
				t.rightRotate(x.parent.parent)
			}
		} else {
			y := x.parent.parent.left
			if y.color == red {
				x.parent.color = black
				y.color = black
				x.parent.parent.color = red
				x = x.parent.parent
			} else {
				if x == x.parent.left {
					x = x.parent
					t.rightRotate(x)
				}
				x.parent.color = black
				x.parent.parent.color = red
				t.leftRotate(x.parent.parent)
			}
		}
	}
	t.root.color = black
}

func (t *pieceTree) rbDelete(z *treeNode) {
	var x, y *treeNode

	switch {
	case z.left == t.sentinel:
		y = z
		x = y.right
	case z.right == t.sentinel:
		y = z
		x = y.left
	default:
		y = t.leftmost(z.right)
		x = y.right
	}

	if y == t.root {
		t.root = x
		x.color = black
		z.detach()
		t.resetSentinel()
		t.root.parent = t.sentinel
		return
	}

	yWasRed := y.color == red

	if y == y.parent.left {
		y.parent.left = x
	} else {
		y.parent.right = x
	}

	if y == z {
		x.parent = y.parent
		t.recomputeMetadata(x)
	} else {
		if y.parent == z {
			x.parent = y
		} else {
			x.parent = y.parent
		}

		// x changed place inside y's old subtree, repair that first
		t.recomputeMetadata(x)

		y.left = z.left
		y.right = z.right
		y.parent = z.parent
		y.color = z.color

		if z == t.root {
			t.root = y
		} else if z == z.parent.left {
			z.parent.left = y
		} else {
			z.parent.right = y
		}

		if y.left != t.sentinel {
			y.left.parent = y
		}
		if y.right != t.sentinel {
			y.right.parent = y
		}

		// y takes over z's slot, so it inherits z's left-subtree summary
		y.sizeLeft = z.sizeLeft
		y.lfLeft = z.lfLeft
		t.recomputeMetadata(y)
	}

	z.detach()

	if x.parent.left == x {
		newSizeLeft := t.subtreeSize(x)
		newLfLeft := t.subtreeLineFeeds(x)
		if newSizeLeft != x.parent.sizeLeft || newLfLeft != x.parent.lfLeft {
			sizeDelta := newSizeLeft - x.parent.sizeLeft
			lfDelta := newLfLeft - x.parent.lfLeft
			x.parent.sizeLeft = newSizeLeft
			x.parent.lfLeft = newLfLeft
			t.updateMetadata(x.parent, sizeDelta, lfDelta)
		}
	}
	t.recomputeMetadata(x.parent)

	if yWasRed {
		t.resetSentinel()
		return
	}

	t.fixDelete(x)
	t.resetSentinel()
}

func (t *pieceTree) fixDelete(x *treeNode) {
	for x != t.root && x.color == black {
		if x == x.parent.left {
			w := x.parent.right
			if w.color == red {
				w.color = black
				x.parent.color = red
				t.leftRotate(x.parent)
				w = x.parent.right
			}
			if w.left.color == black && w.right.color == black {
				w.color = red
				x = x.parent
			} else {
				if w.right.color == black {
					w.left.color = black
					w.color = red
					t.rightRotate(w)
					w = x.parent.right
				}
				w.color = x.parent.color
				x.parent.color = black
				w.right.color = black
				t.leftRotate(x.parent)
				x = t.root
			}
		} else {
			w := x.parent.left
			if w.color == red {
				w.color = black
				x.parent.color = red
				t.rightRotate(x.parent)
				w = x.parent.left
			}
			if w.left.color == black && w.right.color == black {
				w.color = red
				x = x.parent
			} else {
				if w.left.color == black {
					w.right.color = black
					w.color = red
					t.leftRotate(w)
					w = x.parent.left
				}
				w.color = x.parent.color
				x.parent.color = black
				w.left.color = black
				t.rightRotate(x.parent)
				x = t.root
			}
		}
	}
	x.color = black
}

// resetSentinel undoes any transient parent assignment made during pointer
// surgery so later traversals terminate.
func (t *pieceTree) resetSentinel() {
	t.sentinel.parent = t.sentinel
}
