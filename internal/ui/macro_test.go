package ui

import (
	"strings"
	"testing"
)

func newTestMacroEditor(t *testing.T) *MacroEditor {
	t.Helper()
	e := NewMacroEditor(DefaultStyles())
	e.SetSize(60, 12)
	e.SetFocused(true)
	return &e
}

// =============================================================================
// Unit Tests
// =============================================================================

func TestMacroEditor_ClosedIgnoresInput(t *testing.T) {
	e := newTestMacroEditor(t)

	if cmd := e.Update(press("a")); cmd != nil {
		t.Error("closed editor should not react to keys")
	}
	if e.Capturing() {
		t.Error("closed editor should not capture keys")
	}
	if e.HelpBindings() != nil {
		t.Error("closed editor should not show bindings")
	}
}

func TestMacroEditor_OpenTypeSave(t *testing.T) {
	e := newTestMacroEditor(t)
	e.Open("QK_MACRO_0", "M0", "hi")

	if !e.Capturing() {
		t.Fatal("open focused editor should capture keys")
	}
	typeText(e.Update, "!")
	e.AppendKey("KC_ENT")

	msg, ok := run(e.Update(press("ctrl+s"))).(MacroSavedMsg)
	if !ok {
		t.Fatalf("expected MacroSavedMsg, got %T", msg)
	}
	if msg.Name != "QK_MACRO_0" || msg.Text != "hi!{KC_ENT}" {
		t.Errorf("saved %+v", msg)
	}
	if e.IsOpen() {
		t.Error("saving should close the editor")
	}
}

func TestMacroEditor_SaveRejectsBadText(t *testing.T) {
	e := newTestMacroEditor(t)
	e.Open("QK_MACRO_1", "M1", "{KC_NOPE}")

	msg, ok := run(e.Update(press("ctrl+s"))).(StatusMsg)
	if !ok || !strings.Contains(msg.Text, "KC_NOPE") {
		t.Fatalf("expected status about the bad keycode, got %#v", msg)
	}
	if !e.IsOpen() {
		t.Error("editor should stay open on a syntax error")
	}
}

func TestMacroEditor_EscCloses(t *testing.T) {
	e := newTestMacroEditor(t)
	e.Open("QK_MACRO_0", "M0", "")

	if _, ok := run(e.Update(press("esc"))).(MacroClosedMsg); !ok {
		t.Error("esc should close without saving")
	}
	if e.IsOpen() || e.Name() != "" {
		t.Error("editor should be closed")
	}
}

func TestMacroEditor_Check(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    int
		wantErr bool
	}{
		{"empty", "", 0, false},
		{"text", "ab", 2, false},
		{"tap", "{KC_A}", 3, false},
		{"unclosed", "{KC_A", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestMacroEditor(t)
			e.Open("QK_MACRO_0", "M0", tt.text)

			n, err := e.Check()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Check(%q) error = %v, wantErr %v", tt.text, err, tt.wantErr)
			}
			if n != tt.want {
				t.Errorf("Check(%q) = %d bytes, want %d", tt.text, n, tt.want)
			}
		})
	}
}

func TestMacroEditor_ViewShowsStatus(t *testing.T) {
	e := newTestMacroEditor(t)
	e.Open("QK_MACRO_0", "M0", "{KC_A")

	view := e.View()
	if !strings.Contains(view, "Macro: M0") {
		t.Errorf("view should name the macro:\n%s", view)
	}
	if !strings.Contains(view, "unclosed") {
		t.Errorf("view should show the syntax error:\n%s", view)
	}

	e.Open("QK_MACRO_0", "M0", "ab")
	if !strings.Contains(e.View(), "2 bytes") {
		t.Errorf("view should show the encoded size:\n%s", e.View())
	}
}

func TestMacroEditor_UnfocusedOpenDoesNotCapture(t *testing.T) {
	e := NewMacroEditor(DefaultStyles())
	e.Open("QK_MACRO_0", "M0", "")

	if e.Capturing() {
		t.Error("an unfocused editor should not capture keys")
	}
	e.SetFocused(true)
	if !e.Capturing() {
		t.Error("focusing an open editor should capture keys")
	}
}
