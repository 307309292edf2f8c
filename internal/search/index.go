package search

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/example/kolzo/internal/models"
)

// synonyms is the single term-to-term table used across the storefront.
// Lookup-side only: a query term is expanded to its synonyms before the
// index is consulted.
var synonyms = map[string][]string{
	"perfume":     {"fragrance", "scent", "eau"},
	"fragrance":   {"perfume", "scent"},
	"scent":       {"perfume", "fragrance"},
	"lipstick":    {"lip", "rouge"},
	"moisturizer": {"moisturiser", "cream", "lotion"},
	"moisturiser": {"moisturizer", "cream", "lotion"},
	"purse":       {"handbag", "bag", "clutch"},
	"handbag":     {"purse", "bag"},
	"sneakers":    {"shoes", "trainers"},
	"trainers":    {"sneakers", "shoes"},
	"kurta":       {"kurti", "tunic"},
	"dupatta":     {"scarf", "stole"},
	"mascara":     {"eye", "lashes"},
	"kajal":       {"kohl", "eyeliner"},
	"kohl":        {"kajal", "eyeliner"},
	"attar":       {"perfume", "ittar"},
}

// Index is the in-memory keyword index over the active catalog: normalized
// term -> set of product IDs, with set union across matched terms.
type Index struct {
	mu    sync.RWMutex
	terms map[string]map[uuid.UUID]struct{}
	names map[uuid.UUID]string
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{
		terms: make(map[string]map[uuid.UUID]struct{}),
		names: make(map[uuid.UUID]string),
	}
}

// Build replaces the index contents from the given products. Inactive
// products are skipped so they never surface in search.
func (idx *Index) Build(products []models.Product) {
	terms := make(map[string]map[uuid.UUID]struct{})
	names := make(map[uuid.UUID]string)

	for _, p := range products {
		if !p.IsActive {
			continue
		}
		names[p.ID] = p.Name
		for _, term := range Tokenize(p.Name + " " + p.Brand + " " + p.Category) {
			set, ok := terms[term]
			if !ok {
				set = make(map[uuid.UUID]struct{})
				terms[term] = set
			}
			set[p.ID] = struct{}{}
		}
	}

	idx.mu.Lock()
	idx.terms = terms
	idx.names = names
	idx.mu.Unlock()
}

// Add indexes a single product, replacing nothing. Used after catalog writes
// so admin edits show up without a full rebuild.
func (idx *Index) Add(p models.Product) {
	if !p.IsActive {
		idx.Remove(p.ID)
		return
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.names[p.ID] = p.Name
	for _, term := range Tokenize(p.Name + " " + p.Brand + " " + p.Category) {
		set, ok := idx.terms[term]
		if !ok {
			set = make(map[uuid.UUID]struct{})
			idx.terms[term] = set
		}
		set[p.ID] = struct{}{}
	}
}

// Remove drops a product from the index.
func (idx *Index) Remove(id uuid.UUID) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	delete(idx.names, id)
	for term, set := range idx.terms {
		delete(set, id)
		if len(set) == 0 {
			delete(idx.terms, term)
		}
	}
}

// Lookup returns the IDs of products matching the query: the union of the
// postings for every query term and its synonyms, with a substring scan over
// indexed terms as the typo-tolerant fallback.
func (idx *Index) Lookup(query string) []uuid.UUID {
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	matched := make(map[uuid.UUID]struct{})
	for _, token := range tokens {
		for _, term := range expand(token) {
			for id := range idx.terms[term] {
				matched[id] = struct{}{}
			}
		}

		// Substring fallback: "lip" finds "lipstick".
		if len(token) >= 3 {
			for term, set := range idx.terms {
				if strings.Contains(term, token) {
					for id := range set {
						matched[id] = struct{}{}
					}
				}
			}
		}
	}

	ids := make([]uuid.UUID, 0, len(matched))
	for id := range matched {
		ids = append(ids, id)
	}

	// Stable output order: by product name.
	sort.Slice(ids, func(i, j int) bool {
		return idx.names[ids[i]] < idx.names[ids[j]]
	})

	return ids
}

// Suggest returns up to limit product names whose indexed terms start with
// the given prefix.
func (idx *Index) Suggest(prefix string, limit int) []string {
	prefix = Normalize(prefix)
	if prefix == "" || limit <= 0 {
		return nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	seen := make(map[uuid.UUID]struct{})
	var out []string
	for term, set := range idx.terms {
		if !strings.HasPrefix(term, prefix) {
			continue
		}
		for id := range set {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, idx.names[id])
		}
	}

	sort.Strings(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func expand(token string) []string {
	out := []string{token}
	out = append(out, synonyms[token]...)
	return out
}

// Normalize lowercases and trims a query fragment.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Tokenize splits free text into normalized terms, dropping noise shorter
// than two characters.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})

	out := fields[:0]
	for _, f := range fields {
		if len(f) >= 2 {
			out = append(out, f)
		}
	}
	return out
}
