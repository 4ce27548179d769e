// Package indent guesses the indentation convention of a document by
// comparing the leading whitespace of consecutive non-blank lines.
package indent

// Reader is the narrow line access the guesser needs. *textbuf.Buffer
// satisfies it.
type Reader interface {
	GetLineCount() int
	GetLineContent(line int) string
}

// Guess holds a detected indentation convention.
type Guess struct {
	InsertSpaces bool
	TabSize      int
}

const (
	// lines examined at most
	maxLines = 10000
	// tab size guesses above this are ignored
	maxTabSizeGuess = 8
)

var allowedTabSizes = []int{2, 4, 6, 8}

// GuessIndentation reads up to 10 000 lines and picks (insertSpaces,
// tabSize), falling back to the supplied defaults when the evidence is
// inconclusive.
func GuessIndentation(r Reader, defaultTabSize int, defaultInsertSpaces bool) Guess {
	linesCount := min(r.GetLineCount(), maxLines)

	linesIndentedWithTabs := 0
	linesIndentedWithSpaces := 0

	previousLineText := ""
	previousLineIndent := 0

	spacesDiffCount := make([]int, maxTabSizeGuess+1)

	for line := 1; line <= linesCount; line++ {
		text := r.GetLineContent(line)

		hasContent := false
		indent := 0
		spaces := 0
		tabs := 0
		for i := 0; i < len(text); i++ {
			switch text[i] {
			case '\t':
				tabs++
			case ' ':
				spaces++
			default:
				hasContent = true
				indent = i
			}
			if hasContent {
				break
			}
		}

		if !hasContent {
			continue
		}

		if tabs > 0 {
			linesIndentedWithTabs++
		} else if spaces > 1 {
			linesIndentedWithSpaces++
		}

		diff := spacesDiff(previousLineText, previousLineIndent, text, indent)
		if diff <= maxTabSizeGuess {
			spacesDiffCount[diff]++
		}

		previousLineText = text
		previousLineIndent = indent
	}

	insertSpaces := defaultInsertSpaces
	if linesIndentedWithTabs != linesIndentedWithSpaces {
		insertSpaces = linesIndentedWithTabs < linesIndentedWithSpaces
	}

	tabSize := defaultTabSize
	tabSizeScore := 0.0
	if !insertSpaces {
		tabSizeScore = 0.1 * float64(linesCount)
	}
	for _, candidate := range allowedTabSizes {
		score := float64(spacesDiffCount[candidate])
		if score > tabSizeScore {
			tabSizeScore = score
			tabSize = candidate
		}
	}

	return Guess{InsertSpaces: insertSpaces, TabSize: tabSize}
}

// spacesDiff measures the indentation step between two lines. aLen and bLen
// are the leading-whitespace lengths. Mixed space/tab remainders yield 0;
// pure-space remainders divide evenly by the tab difference or yield 0.
func spacesDiff(a string, aLen int, b string, bLen int) int {
	i := 0
	for i < aLen && i < bLen {
		if a[i] != b[i] {
			break
		}
		i++
	}

	aSpaces, aTabs := 0, 0
	for j := i; j < aLen; j++ {
		if a[j] == ' ' {
			aSpaces++
		} else {
			aTabs++
		}
	}
	bSpaces, bTabs := 0, 0
	for j := i; j < bLen; j++ {
		if b[j] == ' ' {
			bSpaces++
		} else {
			bTabs++
		}
	}

	if aSpaces > 0 && aTabs > 0 {
		return 0
	}
	if bSpaces > 0 && bTabs > 0 {
		return 0
	}

	tabsDiff := abs(aTabs - bTabs)
	spacesDelta := abs(aSpaces - bSpaces)
	if tabsDiff == 0 {
		return spacesDelta
	}
	if spacesDelta%tabsDiff == 0 {
		return spacesDelta / tabsDiff
	}
	return 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
