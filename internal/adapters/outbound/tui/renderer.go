package tui

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/openkraft/kraftlint/internal/domain"
)

// ── warm palette ──
var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
	info    = lipgloss.Color("#8B949E") // soft blue-gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	warnStyle     = lipgloss.NewStyle().Foreground(warning)
	errorTagStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	warnTagStyle  = lipgloss.NewStyle().Foreground(warning).Bold(true)
	infoTagStyle  = lipgloss.NewStyle().Foreground(info)
	fileStyle     = lipgloss.NewStyle().Foreground(dim)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// RenderRunReport formats a run report for terminal output: header box,
// diagnostics grouped by file, the run log and a timing footer.
func RenderRunReport(report *domain.RunReport) string {
	var b strings.Builder

	// ── Header ──
	title := headerStyle.Render("kraftlint")
	status := passStyle.Render("completed")
	switch {
	case report.State == domain.StateAborted:
		status = failStyle.Render("aborted")
	case !report.Summary.Valid:
		status = warnStyle.Render("completed with errors")
	}
	counts := dimStyle.Render(fmt.Sprintf("%d files · %d rules · %d violations",
		report.Statistics.FilesScanned, report.Statistics.RulesProcessed, report.Statistics.TotalViolations))
	b.WriteString(boxStyle.Render(title + "\n" + status + "\n\n" + counts))
	b.WriteString("\n\n")

	// ── Diagnostics ──
	if len(report.Diagnostics) == 0 {
		if report.State != domain.StateAborted {
			b.WriteString("  " + passStyle.Render("No violations found.") + "\n")
		}
	} else {
		errs, warns, infos := countSeverities(report.Diagnostics)
		b.WriteString("  " + titleStyle.Render("Violations") + "  ")
		if errs > 0 {
			b.WriteString(errorTagStyle.Render(fmt.Sprintf("%d errors", errs)) + "  ")
		}
		if warns > 0 {
			b.WriteString(warnTagStyle.Render(fmt.Sprintf("%d warnings", warns)) + "  ")
		}
		if infos > 0 {
			b.WriteString(infoTagStyle.Render(fmt.Sprintf("%d info", infos)))
		}
		b.WriteString("\n")
		renderDiagnostics(&b, report.Diagnostics)
	}

	// ── Run log ──
	renderLog(&b, "Errors", report.Errors, errorTagStyle)
	renderLog(&b, "Warnings", report.Warnings, warnTagStyle)

	// ── Footer ──
	b.WriteString("\n  " + separatorLine + "\n")
	b.WriteString("  " + dimStyle.Render(footer(report)) + "\n")
	return b.String()
}

func renderDiagnostics(b *strings.Builder, diags []domain.Diagnostic) {
	byFile := map[string][]domain.Diagnostic{}
	var files []string
	for _, d := range diags {
		if _, ok := byFile[d.File]; !ok {
			files = append(files, d.File)
		}
		byFile[d.File] = append(byFile[d.File], d)
	}
	sort.Strings(files)

	for _, f := range files {
		group := byFile[f]
		sortBySeverity(group)
		b.WriteString("\n    " + fileStyle.Render(shortenPath(f)) + "\n")
		for _, d := range group {
			loc := "     "
			if d.Line > 0 {
				loc = fmt.Sprintf("%5d", d.Line)
			}
			fmt.Fprintf(b, "    %s %s %s  %s\n",
				faintStyle.Render(loc), severityTag(d.Severity), d.Message, faintStyle.Render(d.RuleID))
			if d.Good != "" {
				fmt.Fprintf(b, "                 %s\n", dimStyle.Render("→ "+firstLine(d.Good)))
			}
		}
	}
}

func renderLog(b *strings.Builder, title string, entries []domain.LogEntry, tag lipgloss.Style) {
	if len(entries) == 0 {
		return
	}
	fmt.Fprintf(b, "\n  %s %s\n", titleStyle.Render(title), dimStyle.Render(fmt.Sprintf("(%d)", len(entries))))
	for _, e := range entries {
		line := fmt.Sprintf("    %s %s", tag.Render(string(e.Category)), e.Message)
		var ctx []string
		if e.RuleID != "" {
			ctx = append(ctx, e.RuleID)
		}
		if e.File != "" {
			ctx = append(ctx, shortenPath(e.File))
		}
		if e.Fault != "" {
			ctx = append(ctx, e.Fault)
		}
		if len(ctx) > 0 {
			line += "  " + faintStyle.Render(strings.Join(ctx, " · "))
		}
		b.WriteString(line + "\n")
	}
}

func footer(report *domain.RunReport) string {
	p := report.Performance
	parts := []string{
		"total " + round(p.TotalTime),
		"scan " + round(p.ScanTime),
		fmt.Sprintf("discovery cache %d hit / %d miss", p.Discovery.Hits, p.Discovery.Misses),
	}
	if p.ParseCache != nil {
		parts = append(parts, fmt.Sprintf("parse cache %d hit / %d miss", p.ParseCache.Hits, p.ParseCache.Misses))
	}
	if report.RunID != "" {
		parts = append(parts, "run "+shortID(report.RunID))
	}
	return strings.Join(parts, "  ·  ")
}

func round(d time.Duration) string {
	switch {
	case d >= time.Second:
		return d.Round(10 * time.Millisecond).String()
	case d >= time.Millisecond:
		return d.Round(100 * time.Microsecond).String()
	default:
		return d.String()
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}

func severityTag(severity string) string {
	switch severity {
	case domain.SeverityError:
		return errorTagStyle.Render("error")
	case domain.SeverityWarning:
		return warnTagStyle.Render("warn ")
	case domain.SeveritySuggestion:
		return infoTagStyle.Render("hint ")
	default:
		return infoTagStyle.Render("info ")
	}
}

func countSeverities(diags []domain.Diagnostic) (errors, warnings, infos int) {
	for _, d := range diags {
		switch d.Severity {
		case domain.SeverityError:
			errors++
		case domain.SeverityWarning:
			warnings++
		default:
			infos++
		}
	}
	return
}

var severityOrder = map[string]int{
	domain.SeverityError:      0,
	domain.SeverityWarning:    1,
	domain.SeverityInfo:       2,
	domain.SeveritySuggestion: 3,
}

// sortBySeverity orders errors first, keeping line order within a severity.
func sortBySeverity(diags []domain.Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		si, sj := severityOrder[diags[i].Severity], severityOrder[diags[j].Severity]
		if si != sj {
			return si < sj
		}
		return diags[i].Line < diags[j].Line
	})
}

func shortenPath(path string) string {
	if idx := strings.Index(path, "internal/"); idx >= 0 {
		return path[idx:]
	}
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) > 3 {
		return strings.Join(parts[len(parts)-3:], "/")
	}
	return path
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// RenderHistory formats run history for terminal output.
func RenderHistory(entries []domain.RunEntry) string {
	if len(entries) == 0 {
		return "  " + dimStyle.Render("No run history found.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Run History") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")

	for i, e := range entries {
		hash := e.CommitHash
		if len(hash) > 7 {
			hash = hash[:7]
		}
		if hash == "" {
			hash = "·······"
		}
		date := e.Timestamp
		if len(date) > 10 {
			date = date[:10]
		}

		style := passStyle
		if e.Violations > 0 || e.Errors > 0 {
			style = warnStyle
		}
		line := fmt.Sprintf("  %s  %s  %s  %s",
			dimStyle.Render(date),
			faintStyle.Render(hash),
			style.Render(fmt.Sprintf("%d violations", e.Violations)),
			dimStyle.Render(fmt.Sprintf("%d files", e.Files)),
		)
		if e.Branch != "" {
			line += "  " + faintStyle.Render(e.Branch)
		}

		if i > 0 {
			// fewer violations is an improvement
			diff := e.Violations - entries[i-1].Violations
			if diff < 0 {
				line += "  " + passStyle.Render(fmt.Sprintf("↓%d", -diff))
			} else if diff > 0 {
				line += "  " + failStyle.Render(fmt.Sprintf("↑%d", diff))
			}
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}
