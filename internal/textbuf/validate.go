package textbuf

import "fmt"

// Validate walks the tree and confirms the structural invariants: per-node
// size_left/lf_left summaries, per-piece line accounting, and the red-black
// coloring rules. Metadata drift is a programmer bug, so callers treat any
// returned error as unrecoverable.
func (b *Buffer) Validate() error {
	t := b.tree
	if t.root == t.sentinel {
		return nil
	}
	if t.root.color != black {
		return fmt.Errorf("root is not black")
	}
	if t.sentinel.parent != t.sentinel {
		return fmt.Errorf("sentinel parent not reset")
	}
	_, err := t.validateNode(t.root)
	return err
}

// validateNode returns the black height of the subtree rooted at x.
func (t *pieceTree) validateNode(x *treeNode) (int, error) {
	if x == t.sentinel {
		return 1, nil
	}
	if x.color == red {
		if x.left.color == red || x.right.color == red {
			return 0, fmt.Errorf("red node with red child")
		}
	}

	p := x.piece
	if p.length <= 0 {
		return 0, fmt.Errorf("piece with length %d retained", p.length)
	}
	if p.lineStarts.Total() != p.length {
		return 0, fmt.Errorf("piece length %d != line lengths sum %d", p.length, p.lineStarts.Total())
	}
	if p.lineFeedCnt != p.lineStarts.Count()-1 {
		return 0, fmt.Errorf("piece lineFeedCnt %d != %d entries - 1", p.lineFeedCnt, p.lineStarts.Count())
	}

	if got := t.subtreeSize(x.left); got != x.sizeLeft {
		return 0, fmt.Errorf("size_left drift: stored %d, actual %d", x.sizeLeft, got)
	}
	if got := t.subtreeLineFeeds(x.left); got != x.lfLeft {
		return 0, fmt.Errorf("lf_left drift: stored %d, actual %d", x.lfLeft, got)
	}

	leftBlack, err := t.validateNode(x.left)
	if err != nil {
		return 0, err
	}
	rightBlack, err := t.validateNode(x.right)
	if err != nil {
		return 0, err
	}
	if leftBlack != rightBlack {
		return 0, fmt.Errorf("black height mismatch: %d vs %d", leftBlack, rightBlack)
	}
	if x.color == black {
		leftBlack++
	}
	return leftBlack, nil
}

// pieceCount reports the number of pieces in the tree; tests use it to
// observe coalescing.
func (b *Buffer) pieceCount() int {
	t := b.tree
	cnt := 0
	for x := t.leftmost(t.root); x != t.sentinel; x = t.next(x) {
		cnt++
	}
	return cnt
}
