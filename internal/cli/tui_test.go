package cli

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/graphsnap/pkg/snapshot"
)

func testInfos(n int) []snapshot.Info {
	infos := make([]snapshot.Info, n)
	for i := range infos {
		infos[i] = snapshot.Info{
			ID:        string(rune('a'+i)) + "-snap",
			RootType:  "*scene.Node",
			Size:      100 * (i + 1),
			CreatedAt: time.Now().Add(-time.Duration(i) * time.Hour),
		}
	}
	return infos
}

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m SnapshotListModel, keys ...string) (SnapshotListModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(SnapshotListModel)
	}
	return m, cmd
}

func TestSnapshotListNavigation(t *testing.T) {
	tests := []struct {
		name       string
		keys       []string
		wantCursor int
	}{
		{"down", []string{"down"}, 1},
		{"vim keys", []string{"j", "j", "k"}, 1},
		{"clamped at top", []string{"up", "k"}, 0},
		{"clamped at bottom", []string{"j", "j", "j", "j", "j"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := press(NewSnapshotListModel(testInfos(3)), tt.keys...)
			if m.Cursor != tt.wantCursor {
				t.Errorf("Cursor = %d, want %d", m.Cursor, tt.wantCursor)
			}
		})
	}
}

func TestSnapshotListSelect(t *testing.T) {
	m, cmd := press(NewSnapshotListModel(testInfos(3)), "down", "enter")
	if m.Selected == nil || m.Selected.ID != "b-snap" {
		t.Fatalf("Selected = %+v, want b-snap", m.Selected)
	}
	if cmd == nil {
		t.Error("enter should quit the program")
	}
}

func TestSnapshotListQuit(t *testing.T) {
	m, cmd := press(NewSnapshotListModel(testInfos(2)), "esc")
	if m.Selected != nil || cmd == nil {
		t.Errorf("esc: Selected = %+v, cmd = %v", m.Selected, cmd)
	}
}

func TestSnapshotListScrolls(t *testing.T) {
	m := NewSnapshotListModel(testInfos(10))
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 4})
	m = next.(SnapshotListModel)
	if m.Height != 5 {
		t.Fatalf("Height = %d, want minimum 5", m.Height)
	}

	keys := make([]string, 7)
	for i := range keys {
		keys[i] = "down"
	}
	m, _ = press(m, keys...)
	if m.Cursor != 7 || m.Offset != 3 {
		t.Errorf("Cursor, Offset = %d, %d, want 7, 3", m.Cursor, m.Offset)
	}

	view := m.View()
	if !strings.Contains(view, "h-snap") || strings.Contains(view, "a-snap") {
		t.Errorf("view should show the scrolled window:\n%s", view)
	}
	if !strings.Contains(view, "[8/10]") {
		t.Errorf("view missing position indicator:\n%s", view)
	}
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Now()
	tests := []struct {
		t    time.Time
		want string
	}{
		{time.Time{}, "—"},
		{now.Add(-10 * time.Second), "just now"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{now.Add(-49 * time.Hour), "2d ago"},
	}
	for _, tt := range tests {
		if got := formatRelativeTime(tt.t); got != tt.want {
			t.Errorf("formatRelativeTime(%v) = %q, want %q", tt.t, got, tt.want)
		}
	}
}
