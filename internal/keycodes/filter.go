package keycodes

import (
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
)

type match struct {
	key   *Key
	index int
}

// Filter returns the keys of m matching query. Matching is a
// case-insensitive substring test against the label, the joined keywords and
// the meta name. Label matches come first, then keyword matches, then meta
// matches; each group is ordered by where the match starts, ties keep map
// order. A key appears once, at its earliest position.
//
// An empty query returns the active category's keys unchanged.
func Filter(m *CategoryMap, query, active string) []*Key {
	if query == "" {
		if keys := m.Keys(active); keys != nil {
			return keys
		}
		return []*Key{}
	}

	search := strings.ToLower(query)

	var labels, keywords, metas []match
	for key := range m.All() {
		if i := strings.Index(strings.ToLower(key.Label), search); i >= 0 {
			labels = append(labels, match{key, i})
		}
		if i := strings.Index(key.keywords(), search); i >= 0 {
			keywords = append(keywords, match{key, i})
		}
		if i := strings.Index(strings.ToLower(key.Meta), search); i >= 0 {
			metas = append(metas, match{key, i})
		}
	}

	byIndex := func(a, b match) int { return a.index - b.index }
	slices.SortStableFunc(labels, byIndex)
	slices.SortStableFunc(keywords, byIndex)
	slices.SortStableFunc(metas, byIndex)

	seen := make(map[*Key]struct{}, len(labels))
	out := make([]*Key, 0, len(labels)+len(keywords)+len(metas))
	for _, group := range [][]match{labels, keywords, metas} {
		for _, mt := range group {
			if _, dup := seen[mt.key]; dup {
				continue
			}
			seen[mt.key] = struct{}{}
			out = append(out, mt.key)
		}
	}

	return out
}

// Suggest returns the keycode name closest to query by edit distance, for
// "did you mean" hints when a search finds nothing. The "KC_" prefix is
// optional when comparing. ok is false when nothing is reasonably close.
func Suggest(m *CategoryMap, query string) (name string, ok bool) {
	search := strings.ToLower(strings.TrimSpace(query))
	if search == "" {
		return "", false
	}

	best := -1
	for key := range m.All() {
		meta := strings.ToLower(key.Meta)
		d := min(
			levenshtein.ComputeDistance(search, meta),
			levenshtein.ComputeDistance(search, strings.TrimPrefix(meta, "kc_")),
		)
		if best < 0 || d < best {
			best, name = d, key.Meta
		}
	}

	if best < 0 || best > maxSuggestDistance(search) {
		return "", false
	}
	return name, true
}

func maxSuggestDistance(search string) int {
	return max(1, len(search)/3)
}
