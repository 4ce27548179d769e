package textbuf

// piece references a contiguous byte range of either the original buffer or
// the append-only change buffer. It never holds bytes directly.
type piece struct {
	original bool
	offset   int
	length   int
	// number of line feeds inside the referenced range
	lineFeedCnt int
	// byte length of every line in the range; each entry except the last
	// ends at a line feed, the last one is the trailing fragment
	lineStarts *prefixSum
}

func newPiece(original bool, offset int, text string) *piece {
	lfCnt, lineLengths := computeLineStarts(text)
	return &piece{
		original:    original,
		offset:      offset,
		length:      len(text),
		lineFeedCnt: lfCnt,
		lineStarts:  newPrefixSum(lineLengths),
	}
}

// computeLineStarts scans a chunk for line feeds and reports the per-line
// byte lengths. Every length includes the terminating '\n' except the final
// fragment, which may be empty. This is the only place raw bytes of a chunk
// are interpreted; everything downstream is offset arithmetic.
func computeLineStarts(chunk string) (lineFeedCnt int, lineLengths []int) {
	lineLengths = make([]int, 1, 8)
	cur := 0
	for i := 0; i < len(chunk); i++ {
		if chunk[i] == '\n' {
			lineLengths[cur] = lineLengths[cur] + 1
			lineLengths = append(lineLengths, 0)
			cur++
		} else {
			lineLengths[cur]++
		}
	}
	return len(lineLengths) - 1, lineLengths
}
