package keycodes_test

import (
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"

	"github.com/chatter/remap/internal/hid"
	"github.com/chatter/remap/internal/keycodes"
	"github.com/chatter/remap/internal/keycodes/testgen"
	"github.com/chatter/remap/internal/labellang"
	"github.com/chatter/remap/internal/logger"
)

func key(label, meta string, keywords ...string) *keycodes.Key {
	info := hid.KeycodeInfo{Name: meta, Label: label, Keywords: keywords}
	return &keycodes.Key{Label: label, Meta: meta, Keymap: hid.Keymap{Info: info}}
}

func metas(keys []*keycodes.Key) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.Meta
	}
	return out
}

// =============================================================================
// Unit Tests
// =============================================================================

func TestFilter_EmptyQueryReturnsActiveCategory(t *testing.T) {
	basic := []*keycodes.Key{key("A", "KC_A"), key("B", "KC_B")}
	m := keycodes.NewCategoryMap()
	m.Set(keycodes.Basic, basic)
	m.Set(keycodes.Symbol, []*keycodes.Key{key("-", "KC_MINS")})

	got := keycodes.Filter(m, "", keycodes.Basic)
	if len(got) != len(basic) || got[0] != basic[0] || got[1] != basic[1] {
		t.Errorf("empty query should return the active list itself, got %v", metas(got))
	}

	missing := keycodes.Filter(m, "", "Nope")
	if missing == nil || len(missing) != 0 {
		t.Errorf("empty query with unknown category should return an empty list, got %v", missing)
	}
}

func TestFilter_PriorityAndRank(t *testing.T) {
	enter := key("Enter", "KC_ENT", "enter", "return")
	center := key("Center", "KC_CTR")
	ret := key("Ret", "KC_RT", "enterkey")
	metaOnly := key("X", "KC_XENTER")

	m := keycodes.NewCategoryMap()
	m.Set(keycodes.Basic, []*keycodes.Key{metaOnly, center, ret, enter})

	got := keycodes.Filter(m, "ENT", keycodes.Basic)

	// Label matches by index ("Enter"@0, "Center"@1), then keyword
	// matches not yet seen ("enterkey"@0), then meta matches ("KC_XENTER").
	want := []string{"KC_ENT", "KC_CTR", "KC_RT", "KC_XENTER"}
	if diff := cmp.Diff(want, metas(got)); diff != "" {
		t.Errorf("result order mismatch (-want +got):\n%s", diff)
	}
}

func TestFilter_TiesKeepCategoryOrder(t *testing.T) {
	a := key("Fa", "KC_1")
	b := key("Fb", "KC_2")
	c := key("Fc", "KC_3")

	m := keycodes.NewCategoryMap()
	m.Set("First", []*keycodes.Key{b})
	m.Set("Second", []*keycodes.Key{c, a})

	got := keycodes.Filter(m, "f", "First")
	if diff := cmp.Diff([]string{"KC_2", "KC_3", "KC_1"}, metas(got)); diff != "" {
		t.Errorf("tie order mismatch (-want +got):\n%s", diff)
	}
}

func TestFilter_DedupesSharedKeys(t *testing.T) {
	shared := key("Tab", "KC_TAB", "tab")

	m := keycodes.NewCategoryMap()
	m.Set(keycodes.Basic, []*keycodes.Key{shared})
	m.Set(keycodes.Any, []*keycodes.Key{shared})

	got := keycodes.Filter(m, "tab", keycodes.Basic)
	if len(got) != 1 {
		t.Errorf("shared key should appear once, got %v", metas(got))
	}
}

func TestFilter_Catalog(t *testing.T) {
	b := keycodes.NewBuilder(hid.NewCatalog(), logger.Nop())
	m := b.Rebuild(keycodes.Params{Lang: labellang.EnUS, LayerCount: 4})

	got := keycodes.Filter(m, "esc", keycodes.Basic)
	if len(got) == 0 || got[0].Meta != "KC_ESC" {
		t.Errorf("expected KC_ESC first for \"esc\", got %v", metas(got))
	}
}

func TestSuggest(t *testing.T) {
	m := keycodes.NewCategoryMap()
	m.Set(keycodes.Basic, []*keycodes.Key{
		key("Enter", "KC_ENT"),
		key("Esc", "KC_ESC"),
		key("Space", "KC_SPC"),
	})

	tests := []struct {
		query  string
		want   string
		wantOk bool
	}{
		{"kc_spx", "KC_SPC", true},
		{"spc", "KC_SPC", true},
		{"esx", "KC_ESC", true},
		{"", "", false},
		{"completelyunrelated", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, ok := keycodes.Suggest(m, tt.query)
			if ok != tt.wantOk || got != tt.want {
				t.Errorf("Suggest(%q) = (%q, %v), want (%q, %v)", tt.query, got, ok, tt.want, tt.wantOk)
			}
		})
	}
}

// =============================================================================
// Property Tests
// =============================================================================

// Property: results never contain the same key twice
func TestFilter_NoDuplicates(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := testgen.CategoryMap().Draw(t, "map")
		// Share a key between two categories to exercise identity dedupe.
		if names := m.Names(); len(names) > 1 && m.Len(names[0]) > 0 {
			m.Set(names[1], append(m.Keys(names[1]), m.Keys(names[0])[0]))
		}
		query := testgen.Query().Draw(t, "query")

		seen := map[*keycodes.Key]bool{}
		for _, k := range keycodes.Filter(m, query, "") {
			if seen[k] {
				t.Fatalf("duplicate key %q in results", k.Meta)
			}
			seen[k] = true
		}
	})
}

// Property: a key is in the results iff one of its fields matches
func TestFilter_Complete(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := testgen.CategoryMap().Draw(t, "map")
		query := testgen.Query().Draw(t, "query")
		q := strings.ToLower(query)

		got := keycodes.Filter(m, query, "")
		for k := range m.All() {
			matches := strings.Contains(strings.ToLower(k.Label), q) ||
				strings.Contains(strings.ToLower(strings.Join(k.Keymap.Info.Keywords, "")), q) ||
				strings.Contains(strings.ToLower(k.Meta), q)
			if matches != slices.Contains(got, k) {
				t.Fatalf("key %q/%q: matches=%v but in results=%v", k.Label, k.Meta, matches, !matches)
			}
		}
	})
}

// Property: label matches come first, ordered by match index
func TestFilter_LabelRank(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := testgen.CategoryMap().Draw(t, "map")
		query := testgen.Query().Draw(t, "query")
		q := strings.ToLower(query)

		got := keycodes.Filter(m, query, "")

		prev := -1
		inLabels := true
		for _, k := range got {
			i := strings.Index(strings.ToLower(k.Label), q)
			if i < 0 {
				inLabels = false
				continue
			}
			if !inLabels {
				t.Fatalf("label match %q appears after a non-label match", k.Label)
			}
			if i < prev {
				t.Fatalf("label match %q at %d ranked after index %d", k.Label, i, prev)
			}
			prev = i
		}
	})
}

// Property: a key matching both label and meta sits at its label rank
func TestFilter_LabelAndMetaAtLabelRank(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := testgen.CategoryMap().Draw(t, "map")
		query := testgen.Query().Draw(t, "query")
		q := strings.ToLower(query)

		var labelMatches []*keycodes.Key
		for k := range m.All() {
			if strings.Contains(strings.ToLower(k.Label), q) {
				labelMatches = append(labelMatches, k)
			}
		}
		slices.SortStableFunc(labelMatches, func(a, b *keycodes.Key) int {
			return strings.Index(strings.ToLower(a.Label), q) - strings.Index(strings.ToLower(b.Label), q)
		})

		got := keycodes.Filter(m, query, "")
		for rank, k := range labelMatches {
			if got[rank] != k {
				t.Fatalf("label rank %d: got %q, want %q", rank, got[rank].Meta, k.Meta)
			}
		}
	})
}

// Property: an empty query returns exactly the active category list
func TestFilter_EmptyQuery_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := testgen.CategoryMap().Draw(t, "map")
		names := append(m.Names(), "Missing")
		active := rapid.SampledFrom(names).Draw(t, "active")

		got := keycodes.Filter(m, "", active)
		want := m.Keys(active)
		if len(got) != len(want) {
			t.Fatalf("expected %d keys, got %d", len(want), len(got))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("key %d differs", i)
			}
		}
	})
}
