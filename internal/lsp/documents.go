package lsp

import (
	"strings"
	"sync"
)

// documentStore tracks the open documents by URI. The server uses full
// text sync, so every change replaces the whole content.
type documentStore struct {
	mu   sync.RWMutex
	docs map[string]string
}

func newDocumentStore() *documentStore {
	return &documentStore{docs: map[string]string{}}
}

func (d *documentStore) open(uri, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.docs[uri] = text
}

func (d *documentStore) update(uri, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.docs[uri] = text
}

func (d *documentStore) close(uri string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.docs, uri)
}

func (d *documentStore) get(uri string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	text, ok := d.docs[uri]
	return text, ok
}

// offsetAt converts an LSP line/character position into a byte offset.
// Positions past the end of a line or of the document clamp to the
// nearest valid offset.
func offsetAt(text string, line, character int) int {
	offset := 0
	for line > 0 {
		next := strings.IndexByte(text[offset:], '\n')
		if next < 0 {
			return len(text)
		}
		offset += next + 1
		line--
	}

	end := strings.IndexByte(text[offset:], '\n')
	if end < 0 {
		end = len(text) - offset
	}
	if character > end {
		character = end
	}
	if character < 0 {
		character = 0
	}
	return offset + character
}
