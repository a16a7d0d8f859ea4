// Package tui renders the display model's visible window as plain ANSI
// text styled with lipgloss. It owns no event loop of its own — the
// application's hand-rolled event loop in internal/eventloop drives
// when a frame is drawn; this package only knows how to turn a Model
// snapshot into a string.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/cache-sweep/cachesweep/internal/display"
	"github.com/cache-sweep/cachesweep/internal/model"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	cursorStyle    = lipgloss.NewStyle().Bold(true).Background(lipgloss.Color("237")).Foreground(lipgloss.Color("255"))
	markStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	deletingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	deletedStyle   = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("240"))
	failedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	sensitiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("201"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
)

// Progress summarizes in-flight scan and size-computation work for the
// status line.
type Progress struct {
	ScanComplete bool
	MatchesFound int
	SizesPending int
}

// Frame renders one full frame: a header, the view window clamped to
// height rows around the cursor, and a footer with progress indicators.
func Frame(m *display.Model, width, height int, marks map[int]struct{}, progress Progress) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("cache-sweep — %d matches", m.Len())))
	b.WriteString("\n\n")

	view := m.View()
	rows := height - 4
	if rows < 1 {
		rows = 1
	}
	start, end := window(len(view), m.Cursor(), rows)

	for i := start; i < end; i++ {
		idx := view[i]
		b.WriteString(renderRow(m, idx, i == m.Cursor(), marks))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(footerStyle.Render(renderFooter(progress, width)))
	return b.String()
}

func window(total, cursor, rows int) (start, end int) {
	if total <= rows {
		return 0, total
	}
	start = cursor - rows/2
	if start < 0 {
		start = 0
	}
	end = start + rows
	if end > total {
		end = total
		start = end - rows
	}
	return start, end
}

func renderRow(m *display.Model, idx int, isCursor bool, marks map[int]struct{}) string {
	r := m.Result(idx)
	sizeStr := sizeCell(m.SizeState(idx))
	deleteStr := deleteCell(m.DeleteState(idx))

	marker := " "
	if _, ok := marks[idx]; ok {
		marker = markStyle.Render("*")
	}

	path := r.Path
	if r.Sensitive {
		path = sensitiveStyle.Render(path)
	}

	line := fmt.Sprintf("%s %-10s %-8s %s", marker, sizeStr, deleteStr, path)
	if isCursor {
		return cursorStyle.Render(line)
	}
	return line
}

func sizeCell(s model.SizeState) string {
	switch s.Kind {
	case model.SizeReady:
		return humanize.Bytes(uint64(s.Bytes))
	case model.SizeFailed:
		return failedStyle.Render("failed")
	case model.SizeComputing:
		return dimStyle.Render("...")
	default:
		return dimStyle.Render("pending")
	}
}

func deleteCell(s model.DeleteState) string {
	switch s.Kind {
	case model.DeleteDeleting:
		return deletingStyle.Render("deleting")
	case model.DeleteDeleted:
		return deletedStyle.Render("deleted")
	case model.DeleteFailed:
		return failedStyle.Render("failed")
	case model.DeleteRefused:
		return sensitiveStyle.Render("refused")
	default:
		return ""
	}
}

func renderFooter(p Progress, width int) string {
	status := "scanning"
	if p.ScanComplete {
		status = "scan complete"
	}
	line := fmt.Sprintf("%s — %d found, %d sizes pending  [q]uit [d]elete [D]elete marked [space]mark [X]protected sort: [S]ize [P]ath [A]ge", status, p.MatchesFound, p.SizesPending)
	if width > 0 && len(line) > width {
		line = line[:width]
	}
	return line
}
