package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentWords(t *testing.T) {
	t.Run("keeps each word at its last occurrence", func(t *testing.T) {
		words := documentWords("alpha beta alpha gamma\n")
		assert.Equal(t, []string{"beta", "alpha", "gamma"}, words)
	})

	t.Run("skips words glued to punctuation", func(t *testing.T) {
		// "emp_pkg." and "get_salary(" are qualified or call syntax, not
		// free-standing words; "v_total" before ";" is skipped too.
		words := documentWords("emp_pkg.get_salary(v_id) v_total;\nresult \n")
		assert.Equal(t, []string{"result"}, words)
	})

	t.Run("end of text counts as a boundary", func(t *testing.T) {
		assert.Equal(t, []string{"begin", "trailing"}, documentWords("begin trailing"))
	})

	t.Run("empty text", func(t *testing.T) {
		assert.Empty(t, documentWords(""))
	})
}

func TestWordListRemove(t *testing.T) {
	w := &wordList{words: []string{"hr", "emp_pkg", "v_total"}}

	w.removeExact("hr")
	w.removeExact("missing")
	assert.Equal(t, []string{"emp_pkg", "v_total"}, w.words)

	w.remove(func(word string) bool { return word == "emp_pkg" })
	assert.Equal(t, []string{"v_total"}, w.words)
}
