package help

import (
	"slices"
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
	"pgregory.net/rapid"
)

const testVersion = "remap v1.0.0"

func newStatusBar(width int, bindings []Binding) *StatusBar {
	sb := NewStatusBar(testVersion)
	sb.SetWidth(width)
	sb.SetBindings(bindings)
	return sb
}

// =============================================================================
// Property Tests
// =============================================================================

// Property: the bar never exceeds its width and keeps the version at the end
// whenever the version fits.
func TestStatusBar_FitsWidth(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		width := rapid.IntRange(1, 200).Draw(t, "width")
		bindings, _ := drawBindings(t)
		sb := newStatusBar(width, bindings)
		sb.SetMessage(rapid.SampledFrom([]string{"", "copied KC_A", "saved keymap to ~/.config/remap/keymap.yaml"}).Draw(t, "message"))

		view := sb.View()

		if w := lipgloss.Width(view); w > width {
			t.Fatalf("view width %d exceeds %d: %q", w, width, view)
		}
		if width > lipgloss.Width(testVersion) && !strings.HasSuffix(view, testVersion) {
			t.Fatalf("version should end the bar at width %d: %q", width, view)
		}
	})
}

// Property: disabled bindings never appear.
func TestStatusBar_HidesDisabled(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		bindings, disabled := drawBindings(t)
		view := newStatusBar(400, bindings).View()

		for desc := range disabled {
			if strings.Contains(view, desc) {
				t.Fatalf("disabled binding %q rendered: %q", desc, view)
			}
		}
	})
}

// Property: pinned hints come first, the rest follow Order.
func TestStatusBar_HintOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		bindings := remapBindings()
		perm := rapid.Permutation(bindings).Draw(t, "bindings")
		view := stripANSI(newStatusBar(400, perm).View())

		type shown struct {
			pos int
			b   Binding
		}
		var hints []shown
		for _, b := range perm {
			if i := strings.Index(view, b.Key.Help().Desc); i >= 0 {
				hints = append(hints, shown{i, b})
			}
		}
		slices.SortFunc(hints, func(a, b shown) int { return a.pos - b.pos })

		for i := 1; i < len(hints); i++ {
			a, b := hints[i-1].b, hints[i].b
			if !a.Pinned && b.Pinned {
				t.Fatalf("pinned %q after unpinned %q: %q", b.Key.Help().Desc, a.Key.Help().Desc, view)
			}
			if a.Pinned == b.Pinned && a.Order > b.Order {
				t.Fatalf("%q (order %d) before %q (order %d): %q",
					a.Key.Help().Desc, a.Order, b.Key.Help().Desc, b.Order, view)
			}
		}
	})
}

// =============================================================================
// Unit Tests
// =============================================================================

func TestStatusBar_PinnedSurviveNarrowWidth(t *testing.T) {
	view := stripANSI(newStatusBar(36, remapBindings()).View())

	if !strings.HasPrefix(view, "q quit") {
		t.Errorf("pinned quit should lead: %q", view)
	}
	if strings.Contains(view, "search") {
		t.Errorf("unpinned hints should be cut first: %q", view)
	}
}

func TestStatusBar_Separators(t *testing.T) {
	bindings := remapBindings()[:3]
	view := stripANSI(newStatusBar(200, bindings).View())

	if n := strings.Count(view, "•"); n != len(bindings)-1 {
		t.Errorf("want %d separators, got %d: %q", len(bindings)-1, n, view)
	}
}

func TestStatusBar_Messages(t *testing.T) {
	sb := newStatusBar(80, []Binding{pinned(bind("q", "quit", CategoryActions, 99))})
	sb.SetMessage("copied KC_A")

	view := sb.View()
	if sb.Message() != "copied KC_A" {
		t.Errorf("Message() = %q", sb.Message())
	}
	quit, msg := strings.Index(view, "quit"), strings.Index(view, "copied KC_A")
	if quit < 0 || msg < quit {
		t.Errorf("expected hints then message, got %q", view)
	}

	sb.SetMessage("")
	if strings.Contains(sb.View(), "copied") {
		t.Error("cleared message should not render")
	}

	sb.SetWidth(24)
	sb.SetMessage("a very long message that cannot possibly fit")
	if strings.Contains(sb.View(), "very long") {
		t.Errorf("message wider than the bar should be dropped: %q", sb.View())
	}
}

func TestStatusBar_DuplicateKeysShownOnce(t *testing.T) {
	view := newStatusBar(100, []Binding{
		bind("esc", "cancel", CategoryMacro, 1),
		bind("esc", "close search", CategoryKeycodes, 2),
	}).View()

	if strings.Contains(view, "close search") {
		t.Errorf("second binding for the same key should be hidden: %q", view)
	}
}

func TestStatusBar_EmptyAndZeroWidth(t *testing.T) {
	if got := newStatusBar(0, remapBindings()).View(); got != "" {
		t.Errorf("zero width should render nothing, got %q", got)
	}

	view := newStatusBar(40, nil).View()
	if !strings.HasSuffix(view, testVersion) || lipgloss.Width(view) != 40 {
		t.Errorf("empty bar should pad to the version: %q", view)
	}
}
