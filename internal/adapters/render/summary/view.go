package summary

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/apex-activities-cli/internal/application"
	"github.com/bnema/apex-activities-cli/internal/domain"
)

const timeLayout = "2006-01-02 15:04"

type RenderOptions struct {
	// DryRun marks results that were fetched but not written to the host.
	DryRun bool
}

func renderView(result application.SyncResult, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Apex Activity Sync"),
		s.header.Render(fmt.Sprintf("run %s", result.RunID)),
	}

	details := []string{
		field(s, "target", result.Target),
		field(s, "window", result.Window.String()),
		field(s, "session", sessionLabel(result.Origin, result.Attempts)),
	}
	lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, details...)))

	table := result.Table
	if table.Len() == 0 {
		lines = append(lines, s.section.Render(s.empty.Render("No new activities.")))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	first, last, _ := table.Span()
	rows := []string{
		lipgloss.JoinHorizontal(lipgloss.Top, s.key.Render("rows"), s.count.Render(fmt.Sprintf("%d", table.Len()))),
		field(s, "span", fmt.Sprintf("%s .. %s", first.Format(timeLayout), last.Format(timeLayout))),
	}
	rows = append(rows, categoryLines(table, s)...)
	lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))

	if opts.DryRun {
		lines = append(lines, s.section.Render(s.warning.Render("[dry run] nothing written")))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func field(s styles, key, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, s.key.Render(key), s.value.Render(value))
}

func sessionLabel(origin domain.SessionOrigin, attempts int) string {
	label := string(origin)
	if label == "" {
		label = "none"
	}
	if attempts > 1 {
		label += fmt.Sprintf(" (after %d attempts)", attempts)
	}
	return label
}

func categoryLines(table domain.ActivityTable, s styles) []string {
	counts := map[string]int{}
	for _, record := range table.Records {
		category := "UNKNOWN"
		if record.ActivityType != nil {
			category = *record.ActivityType
		}
		counts[category]++
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, s.header.Render(fmt.Sprintf("  %-22s %d", name, counts[name])))
	}
	return lines
}
