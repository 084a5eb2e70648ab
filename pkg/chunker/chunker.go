// Package chunker splits raw document text into overlapping bounded-size
// segments suitable for embedding.
//
// Split is a pure function: identical input always produces identical
// output, and chunks are exact substrings of the input so that the
// concatenation of the chunks, minus their overlaps, reconstructs the
// original text.
package chunker

import (
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMaxSize is the default maximum chunk length in characters.
	DefaultMaxSize = 1000

	// DefaultOverlap is the default overlap between consecutive chunks.
	DefaultOverlap = 200
)

// Config carries the splitter tunables.
type Config struct {
	// MaxSize is the maximum chunk length in characters.
	MaxSize int

	// Overlap is the approximate number of characters shared between
	// consecutive chunks, drawn from the end of the previous chunk.
	Overlap int
}

// Split divides text into chunks of at most maxSize characters, cutting
// preferentially at natural boundaries (paragraph, then sentence, then
// whitespace) nearest to maxSize, and falling back to a hard cut when no
// boundary exists within the lookback window. Consecutive chunks share
// roughly overlap characters so a concept spanning a boundary appears
// whole in at least one chunk.
//
// Empty or blank input yields nil. Input no longer than maxSize yields a
// single chunk with no overlap applied.
func Split(text string, maxSize, overlap int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxSize {
		overlap = maxSize / 5
	}

	if len(text) <= maxSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		remaining := len(text) - start
		if remaining <= maxSize {
			chunks = append(chunks, text[start:])
			break
		}

		// Never end the window mid-rune; the hard cut below slices there.
		end := runeFloor(text, start+maxSize)
		if end <= start {
			_, n := utf8.DecodeRuneInString(text[start:])
			end = start + n
		}
		window := text[start:end]
		cut := boundaryCut(window, maxSize/4)
		chunks = append(chunks, window[:cut])

		// Step back by the overlap, but always make forward progress.
		next := runeFloor(text, start+cut-overlap)
		if next <= start {
			next = start + cut
		}
		start = next
	}

	return chunks
}

// boundaryCut returns the exclusive end of the best cut inside window.
// Boundaries are only honored within the trailing lookback region;
// otherwise the whole window is taken (hard cut).
func boundaryCut(window string, lookback int) int {
	if lookback < 1 {
		lookback = 1
	}
	min := len(window) - lookback
	if min < 1 {
		min = 1
	}

	// Paragraph break.
	if idx := strings.LastIndex(window, "\n\n"); idx >= 0 && idx+2 > min {
		return idx + 2
	}

	// Sentence end.
	if cut := lastSentenceEnd(window); cut > min {
		return cut
	}

	// Line break, then any whitespace.
	if idx := strings.LastIndexByte(window, '\n'); idx >= 0 && idx+1 > min {
		return idx + 1
	}
	if idx := strings.LastIndexAny(window, " \t"); idx >= 0 && idx+1 > min {
		return idx + 1
	}

	return len(window)
}

// lastSentenceEnd returns the exclusive end of the last sentence in
// window, or -1 when none is found. ASCII terminals only count when
// followed by whitespace so abbreviations and decimals survive.
func lastSentenceEnd(window string) int {
	best := -1
	for i := len(window) - 1; i > 0; i-- {
		c := window[i]
		if c != ' ' && c != '\n' && c != '\t' {
			continue
		}
		switch window[i-1] {
		case '.', '!', '?':
			best = i
		}
		if best >= 0 {
			break
		}
	}

	// CJK terminals end a sentence with no trailing space.
	for _, term := range []string{"。", "！", "？"} {
		if idx := strings.LastIndex(window, term); idx >= 0 && idx+len(term) > best {
			best = idx + len(term)
		}
	}
	return best
}

// runeFloor backs i up to the nearest rune start in s.
func runeFloor(s string, i int) int {
	for i > 0 && i < len(s) && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}
