package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/openkraft/kraftlint/internal/domain"
)

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle          = lipgloss.NewStyle().Foreground(dim).Italic(true)
)

// RenderRules lists rules grouped by category. Results that failed
// validation are shown with their first error instead of metadata.
func RenderRules(results []domain.ValidationResult, defaults map[string]bool) string {
	if len(results) == 0 {
		return "  " + dimStyle.Render("No rules registered.") + "\n"
	}

	groups := map[domain.Category][]domain.ValidationResult{}
	var broken []domain.ValidationResult
	for _, r := range results {
		if r.Descriptor == nil {
			broken = append(broken, r)
			continue
		}
		groups[r.Descriptor.Category] = append(groups[r.Descriptor.Category], r)
	}

	var b strings.Builder
	b.WriteString("\n")
	for _, cat := range domain.ValidRuleCategories {
		rs := groups[cat]
		delete(groups, cat)
		renderRuleGroup(&b, string(cat), rs, defaults)
	}
	other := make([]string, 0, len(groups))
	for cat := range groups {
		other = append(other, string(cat))
	}
	sort.Strings(other)
	for _, cat := range other {
		renderRuleGroup(&b, cat, groups[domain.Category(cat)], defaults)
	}

	if len(broken) > 0 {
		fmt.Fprintf(&b, "\n  %s\n", sectionHeaderStyle.Render("unavailable"))
		for _, r := range broken {
			msg := ""
			if len(r.Errors) > 0 {
				msg = r.Errors[0].Message
			}
			fmt.Fprintf(&b, "    %s %s  %s\n", failStyle.Render("●"), r.RuleID, faintStyle.Render(msg))
		}
	}

	b.WriteString("\n  " + hintStyle.Render("● enabled by default   ○ opt-in; add to rules: in .kraftlint.yaml") + "\n")
	return b.String()
}

func renderRuleGroup(b *strings.Builder, title string, rs []domain.ValidationResult, defaults map[string]bool) {
	if len(rs) == 0 {
		return
	}
	fmt.Fprintf(b, "\n  %s %s\n", sectionHeaderStyle.Render(title), dimStyle.Render(fmt.Sprintf("(%d)", len(rs))))
	for _, r := range rs {
		icon := dimStyle.Render("○")
		if defaults[r.RuleID] {
			icon = passStyle.Render("●")
		}
		fmt.Fprintf(b, "    %s %s %s  %s\n",
			icon,
			titleStyle.Render(padRight(r.RuleID, 34)),
			severityTag(r.Descriptor.Severity),
			dimStyle.Render(r.Descriptor.Description),
		)
	}
}

// RenderValidation formats per-rule validation results.
func RenderValidation(results []domain.ValidationResult) string {
	var b strings.Builder
	valid := 0
	for _, r := range results {
		if r.Valid {
			valid++
		}
	}

	header := titleStyle.Render("Rule validation") + "  "
	if valid == len(results) {
		header += passStyle.Render(fmt.Sprintf("%d/%d valid", valid, len(results)))
	} else {
		header += failStyle.Render(fmt.Sprintf("%d/%d valid", valid, len(results)))
	}
	b.WriteString(boxStyle.Render(header))
	b.WriteString("\n")

	for _, r := range results {
		icon := passStyle.Render("✓")
		if !r.Valid {
			icon = failStyle.Render("✗")
		}
		fmt.Fprintf(&b, "\n  %s %s\n", icon, titleStyle.Render(r.RuleID))
		renderIssues(&b, r.Errors, errorTagStyle.Render("error"))
		renderIssues(&b, r.Warnings, warnTagStyle.Render("warn "))
	}
	b.WriteString("\n")
	return b.String()
}

func renderIssues(b *strings.Builder, issues []domain.ValidationIssue, tag string) {
	for _, is := range issues {
		fmt.Fprintf(b, "    %s %s  %s\n", tag, is.Message, faintStyle.Render(is.Type))
		if is.Suggestion != "" {
			fmt.Fprintf(b, "          %s\n", hintStyle.Render(is.Suggestion))
		}
	}
}
