package resolve

import "regexp"

var wordPattern = regexp.MustCompile(`\w+`)

// documentWords extracts free-standing words from the document text as
// fallback completion candidates. Each distinct word is kept only at
// its last occurrence, and only when it is followed by whitespace or
// the end of the text, so the token being typed at the cursor and
// qualified names like "pkg." are not harvested.
func documentWords(text string) []string {
	matches := wordPattern.FindAllStringIndex(text, -1)

	type occurrence struct {
		word  string
		index int
	}
	last := make(map[string]int, len(matches))
	var order []occurrence
	for _, m := range matches {
		if m[1] < len(text) && !isSpace(text[m[1]]) {
			continue
		}
		word := text[m[0]:m[1]]
		last[word] = len(order)
		order = append(order, occurrence{word: word, index: len(order)})
	}

	words := make([]string, 0, len(last))
	for _, o := range order {
		if last[o.word] == o.index {
			words = append(words, o.word)
		}
	}
	return words
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

// wordList supports the duplicate suppression of the general mode: a
// word already offered as an item, package or method is dropped from
// the fallback candidates.
type wordList struct {
	words []string
}

func (w *wordList) remove(match func(string) bool) {
	kept := w.words[:0]
	for _, word := range w.words {
		if !match(word) {
			kept = append(kept, word)
		}
	}
	w.words = kept
}

func (w *wordList) removeExact(value string) {
	w.remove(func(word string) bool { return word == value })
}
