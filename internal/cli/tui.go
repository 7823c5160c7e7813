package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/graphsnap/pkg/snapshot"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// SnapshotListModel - Interactive snapshot selection
// =============================================================================

// SnapshotListModel is the bubbletea model for interactive snapshot selection.
type SnapshotListModel struct {
	Snapshots []snapshot.Info
	Cursor    int
	Selected  *snapshot.Info
	Height    int
	Offset    int
}

// NewSnapshotListModel creates a new snapshot list model.
func NewSnapshotListModel(infos []snapshot.Info) SnapshotListModel {
	return SnapshotListModel{Snapshots: infos, Height: 15}
}

func (m SnapshotListModel) Init() tea.Cmd {
	return nil
}

func (m SnapshotListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Snapshots)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Snapshots) == 0 {
				return m, nil
			}
			info := m.Snapshots[m.Cursor]
			m.Selected = &info
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
		if m.Cursor >= m.Offset+m.Height {
			m.Offset = m.Cursor - m.Height + 1
		}
	}
	return m, nil
}

func (m SnapshotListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Snapshot"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Snapshots))
	b.WriteString(snapshotTable(m.Snapshots, m.Cursor, m.Offset, end))
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Snapshots))))

	return b.String()
}

// snapshotTable renders infos[start:end] as a table. The row at cursor is
// highlighted; a negative cursor renders a plain listing.
func snapshotTable(infos []snapshot.Info, cursor, start, end int) string {
	rows := make([][]string, 0, end-start)
	for i := start; i < end; i++ {
		info := infos[i]
		row := []string{info.ID, info.RootType, formatSize(info.Size), formatRelativeTime(info.CreatedAt)}
		if cursor >= 0 {
			marker := "  "
			if i == cursor {
				marker = "▸ "
			}
			row = append([]string{marker}, row...)
		}
		rows = append(rows, row)
	}

	headers := []string{"ID", "Root", "Size", "Created"}
	if cursor >= 0 {
		headers = append([]string{""}, headers...)
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if cursor >= 0 && start+row == cursor {
				return base.Foreground(colorGreen).Bold(true)
			}
			if headers[col] == "Size" || headers[col] == "Created" {
				return base.Foreground(colorDim)
			}
			return base
		})

	return t.Render()
}

// =============================================================================
// Helpers
// =============================================================================

func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
