// Package source builds the immutable text sources that seed a buffer:
// it strips the byte-order mark, computes line starts, detects the dominant
// end-of-line sequence and records ASCII/RTL hints.
package source

import "strings"

const utf8BOM = "\uFEFF"

// RawBuffer is the scanned initial text. LineStarts holds the absolute byte
// offset of the first character of every line; its length is the line count.
type RawBuffer struct {
	Text       string
	LineStarts []int
}

// TextSource describes the initial document content and its conventions.
type TextSource struct {
	BOM          string
	EOL          string
	IsBasicASCII bool
	ContainsRTL  bool
	Buffer       RawBuffer
}

// FromString scans text and produces a source. A second pass looks for RTL
// characters only when the text is not basic ASCII. defaultEOL is used when
// the text contains no line breaks; otherwise the majority break wins, with
// "\r\n" preferred on a tie against bare "\r".
func FromString(text string, defaultEOL string) *TextSource {
	bom := ""
	if strings.HasPrefix(text, utf8BOM) {
		bom = utf8BOM
		text = text[len(utf8BOM):]
	}

	lineStarts := []int{0}
	cr, lf, crlf := 0, 0, 0
	isBasicASCII := true

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				crlf++
				i++
			} else {
				cr++
			}
			lineStarts = append(lineStarts, i+1)
		case '\n':
			lf++
			lineStarts = append(lineStarts, i+1)
		default:
			if isBasicASCII {
				c := text[i]
				if c != '\t' && (c < 0x20 || c > 0x7e) {
					isBasicASCII = false
				}
			}
		}
	}

	eol := defaultEOL
	switch {
	case cr+lf+crlf == 0:
		// keep the default
	case crlf >= cr && crlf >= lf:
		eol = "\r\n"
	case lf >= cr:
		eol = "\n"
	default:
		eol = "\r"
	}

	containsRTL := false
	if !isBasicASCII {
		containsRTL = containsRTLRunes(text)
	}

	return &TextSource{
		BOM:          bom,
		EOL:          eol,
		IsBasicASCII: isBasicASCII,
		ContainsRTL:  containsRTL,
		Buffer: RawBuffer{
			Text:       text,
			LineStarts: lineStarts,
		},
	}
}

func containsRTLRunes(s string) bool {
	for _, r := range s {
		switch {
		case r >= 0x0590 && r <= 0x08ff:
			return true
		case r >= 0xfb1d && r <= 0xfdfd:
			return true
		case r >= 0xfe70 && r <= 0xfefc:
			return true
		}
	}
	return false
}

// LineCount returns the number of lines in the source.
func (s *TextSource) LineCount() int {
	return len(s.Buffer.LineStarts)
}
