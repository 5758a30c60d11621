package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examly/internal/assessment"
)

func key(s string) tea.KeyPressMsg {
	switch s {
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

func TestMenuSkipsDisabled(t *testing.T) {
	fired := ""
	m := NewMenu([]MenuItem{
		{Label: "off", Disabled: true},
		{Label: "one", Action: func() tea.Cmd { fired = "one"; return nil }},
		{Label: "off2", Disabled: true},
		{Label: "two", Action: func() tea.Cmd { fired = "two"; return nil }},
	})
	if m.Selected != 1 {
		t.Fatalf("expected first enabled item selected, got %d", m.Selected)
	}

	m, _ = m.Update(key("down"))
	if m.Selected != 3 {
		t.Fatalf("expected disabled item skipped, got %d", m.Selected)
	}
	m, _ = m.Update(key("enter"))
	if fired != "two" {
		t.Errorf("expected action of 'two', got %q", fired)
	}

	item, ok := m.Current()
	if !ok || item.Label != "two" {
		t.Errorf("Current = %+v, %v", item, ok)
	}
}

func TestOptionList(t *testing.T) {
	opts := []assessment.Option{{ID: "x", Text: "1"}, {ID: "y", Text: "2"}, {ID: "z", Text: "3"}}

	l := NewOptionList(opts, "y")
	if l.Cursor != 1 {
		t.Fatalf("cursor should start on chosen option, got %d", l.Cursor)
	}
	l, _ = l.Update(key("down"))
	l, _ = l.Update(key("down"))
	if l.Cursor != 2 {
		t.Errorf("cursor should stop at last option, got %d", l.Cursor)
	}

	l.Locked = true
	l, _ = l.Update(key("up"))
	if l.Cursor != 2 {
		t.Errorf("locked list moved to %d", l.Cursor)
	}

	view := l.View(60)
	if !strings.Contains(view, "● B)") {
		t.Errorf("chosen option not marked:\n%s", view)
	}
}

func TestIndexOfKey(t *testing.T) {
	tests := []struct {
		key  string
		want int
		ok   bool
	}{
		{"1", 0, true},
		{"4", 3, true},
		{"0", 0, false},
		{"enter", 0, false},
		{"a", 0, false},
	}
	for _, tt := range tests {
		got, ok := IndexOfKey(tt.key)
		if got != tt.want || ok != tt.ok {
			t.Errorf("IndexOfKey(%q) = %d, %v; want %d, %v", tt.key, got, ok, tt.want, tt.ok)
		}
	}
	if Label(2) != "C" {
		t.Errorf("Label(2) = %q", Label(2))
	}
}

func TestProgressBarFraction(t *testing.T) {
	tests := []struct {
		done, total int
		want        float64
	}{
		{0, 0, 0},
		{3, 4, 0.75},
		{5, 4, 1},
		{-1, 4, 0},
	}
	for _, tt := range tests {
		p := NewProgressBar("", tt.done, tt.total, true, 40)
		if got := p.Fraction(); got != tt.want {
			t.Errorf("Fraction(%d/%d) = %v, want %v", tt.done, tt.total, got, tt.want)
		}
	}
	if !strings.Contains(NewProgressBar("Answered", 3, 4, true, 40).View(), "3/4") {
		t.Error("count missing from view")
	}
}

func TestTextInputMatches(t *testing.T) {
	in := NewTextInput("filter", 20)
	if !in.Matches("Anything") {
		t.Error("empty filter should match")
	}
	in.Model.SetValue("MAT")
	if !in.Matches("Mathematics") {
		t.Error("filter should ignore case")
	}
	if in.Matches("Physics") {
		t.Error("filter should not match Physics")
	}
}

func TestConfirmAnswer(t *testing.T) {
	c := Confirm{Question: "Finish?", Yes: "Submit", No: "Keep going"}
	if c.Answer(key("y")) != ConfirmYes {
		t.Error("y should confirm")
	}
	if c.Answer(tea.KeyPressMsg{Code: tea.KeyEscape}) != ConfirmNo {
		t.Error("esc should cancel")
	}
	if c.Answer(key("x")) != ConfirmNone {
		t.Error("x should be ignored")
	}
	if !strings.Contains(c.View(40), "[Y] Submit") {
		t.Error("yes label missing")
	}
}
