// Package resolve turns a document position into completion
// candidates. It parses the qualified-name prefix before the cursor,
// looks it up in the cache documents and renders call snippets. The
// cache documents are reloaded on every call: the disk is the single
// source of truth, so resolver calls see exactly what the last sync
// persisted, across editor sessions and processes.
package resolve

import (
	"strings"

	"github.com/jwinkels/ais/internal/schema"
	"github.com/jwinkels/ais/internal/store"
)

// Kind classifies a candidate for the editor.
type Kind int

const (
	// KindWord is a free-standing word harvested from the document.
	KindWord Kind = iota
	// KindItem is an APEX page or application item.
	KindItem
	// KindPackage is a schema package; committing with "." chains into
	// member completion.
	KindPackage
	// KindFunction is a packaged or standalone routine.
	KindFunction
	// KindConstant is a package global, documented with its value.
	KindConstant
)

// Candidate is one completion entry, editor-agnostic. InsertText uses
// snippet placeholder syntax when Snippet is set.
type Candidate struct {
	Label            string
	Kind             Kind
	InsertText       string
	Snippet          bool
	Documentation    string
	CommitCharacters []string
}

// Resolver answers completion requests from the persisted caches.
// Resolvers are stateless between calls and safe for concurrent use.
type Resolver struct {
	store *store.Store
}

// New returns a resolver reading from st.
func New(st *store.Store) *Resolver {
	return &Resolver{store: st}
}

// Complete resolves the cursor position in the document text into
// completion candidates. It never fails: missing caches or unknown
// prefixes degrade to fewer (or zero) candidates.
func (r *Resolver) Complete(text string, offset int) []Candidate {
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}
	prefix := linePrefix(text, offset)

	if strings.HasSuffix(prefix, ".") {
		return r.memberCandidates(prefix)
	}
	return r.generalCandidates(text)
}

// linePrefix returns the current line's text before the cursor.
func linePrefix(text string, offset int) string {
	start := strings.LastIndexByte(text[:offset], '\n') + 1
	return text[start:offset]
}

// generalCandidates produces the unqualified completion set: items,
// packages, standalone methods and the document-word fallback. Words
// already covered by a schema candidate are dropped.
func (r *Resolver) generalCandidates(text string) []Candidate {
	cache := r.store.Load()
	library := r.store.LoadLibrary()
	words := &wordList{words: documentWords(text)}

	var candidates []Candidate

	for _, item := range cache.Items {
		words.remove(func(w string) bool { return strings.ToUpper(w) == item })
		candidates = append(candidates, Candidate{
			Label:      item,
			Kind:       KindItem,
			InsertText: item,
		})
	}

	for _, c := range []*schema.Cache{cache, library} {
		for _, p := range c.Packages {
			candidates = append(candidates, packageCandidate(p, words))
		}
	}

	for _, m := range cache.Methods {
		label := m.Name
		if m.Owner != "" {
			label = m.Owner + "." + m.Name
			words.removeExact(m.Owner)
		}
		words.removeExact(m.Name)
		insert, doc, isSnippet := callSnippet(label, m.Arguments)
		candidates = append(candidates, Candidate{
			Label:         label,
			Kind:          KindFunction,
			InsertText:    insert,
			Snippet:       isSnippet,
			Documentation: doc,
		})
	}

	for _, word := range words.words {
		candidates = append(candidates, Candidate{
			Label:      word,
			Kind:       KindWord,
			InsertText: word,
		})
	}
	return candidates
}

func packageCandidate(p *schema.Package, words *wordList) Candidate {
	label := p.Name
	if p.Owner != "" {
		label = p.Owner + "." + p.Name
		words.removeExact(p.Owner)
	}
	words.removeExact(p.Name)
	return Candidate{
		Label:            label,
		Kind:             KindPackage,
		InsertText:       label,
		Documentation:    "Press . to type " + p.Name,
		CommitCharacters: []string{"."},
	}
}

// memberCandidates produces the member-access completion set for a
// prefix ending in ".": the methods of the resolved package, plus its
// globals when the package lives in the project cache.
func (r *Resolver) memberCandidates(prefix string) []Candidate {
	packageName, owner := parseQualifier(prefix)
	if packageName == "" {
		return nil
	}

	cache := r.store.Load()
	target := cache.Package(packageName, owner)
	if target == nil {
		target = r.store.LoadLibrary().Package(packageName, owner)
	}
	if target == nil {
		return nil
	}

	var candidates []Candidate
	for _, m := range target.Methods {
		insert, doc, isSnippet := callSnippet(m.Name, m.Arguments)
		candidates = append(candidates, Candidate{
			Label:         m.Name,
			Kind:          KindFunction,
			InsertText:    insert,
			Snippet:       isSnippet,
			Documentation: doc,
		})
	}

	// Globals come from the project cache only; the library documents
	// carry none.
	if p := cache.Package(packageName, owner); p != nil {
		for _, v := range p.Variables {
			candidates = append(candidates, Candidate{
				Label:         v.Name,
				Kind:          KindConstant,
				InsertText:    v.Name,
				Documentation: v.Value,
			})
		}
	}
	return candidates
}

// parseQualifier extracts the package name and optional owner from the
// line prefix ending in ".". Structural characters are flattened to
// spaces, the last whitespace-delimited token is split on dots, and a
// leading segment equal to the package name is not treated as an
// owner, so "pkg.pkg." stays unqualified. Stray punctuation around the
// package name is stripped defensively.
func parseQualifier(prefix string) (packageName, owner string) {
	normalized := strings.NewReplacer("=", " ", "(", " ").Replace(prefix)
	fields := strings.Fields(normalized)
	if len(fields) == 0 {
		return "", ""
	}
	token := fields[len(fields)-1]

	segments := strings.Split(token, ".")
	if len(segments) >= 2 {
		packageName = strings.TrimSpace(segments[len(segments)-2])
		owner = strings.TrimSpace(segments[0])
		if strings.EqualFold(owner, packageName) {
			owner = ""
		}
	} else {
		packageName = strings.TrimSpace(strings.TrimSuffix(token, "."))
	}

	packageName = stripPunctuation(packageName)
	return strings.ToLower(packageName), strings.ToLower(owner)
}

func stripPunctuation(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return ' '
		}
	}, name)
	if i := strings.LastIndexByte(cleaned, ' '); i >= 0 {
		cleaned = cleaned[i+1:]
	}
	return strings.TrimSpace(cleaned)
}
