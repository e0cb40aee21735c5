package ui

import (
	"fmt"
	"strings"

	"mimesync/internal/diff"
	"mimesync/internal/reconcile"
)

// DiffContext is the number of unchanged lines shown around changes
const DiffContext = 3

// RenderDiff renders result in unified format. With color set, markers are
// colored and line content is syntax highlighted.
func RenderDiff(result *diff.DiffResult, oldLabel, newLabel string, color bool) string {
	if result.Identical {
		return ""
	}
	if !color {
		return result.Unified(oldLabel, newLabel, DiffContext)
	}

	hl := NewHighlighter()
	var b strings.Builder
	b.WriteString(FileHeaderStyle.Render("--- "+oldLabel) + "\n")
	b.WriteString(FileHeaderStyle.Render("+++ "+newLabel) + "\n")

	for _, h := range result.Hunks(DiffContext) {
		b.WriteString(HunkStyle.Render(h.Header()) + "\n")
		for _, l := range h.Lines {
			switch l.Type {
			case diff.DiffInsert:
				b.WriteString(AddedStyle.Render("+" + l.Content))
			case diff.DiffDelete:
				b.WriteString(RemovedStyle.Render("-" + l.Content))
			default:
				b.WriteString(" " + hl.HighlightLine(l.Content))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// RenderReport summarizes the associations a run removed and added
func RenderReport(report *reconcile.Report, color bool) string {
	if !report.Changed() {
		return RenderNotification("success", "Associations already up to date", color) + "\n"
	}

	var b strings.Builder
	if len(report.Removed) > 0 {
		b.WriteString(paint(TitleStyle, fmt.Sprintf("Removed (%d)", len(report.Removed)), color) + "\n")
		for _, c := range report.Removed {
			fmt.Fprintf(&b, "  - %s %s %s\n",
				paint(MimeStyle, c.Mime, color),
				paint(DescriptorStyle, c.ID, color),
				paint(ReasonStyle, "("+c.Reason.String()+")", color))
		}
	}
	if len(report.Added) > 0 {
		b.WriteString(paint(TitleStyle, fmt.Sprintf("Added (%d)", len(report.Added)), color) + "\n")
		for _, c := range report.Added {
			fmt.Fprintf(&b, "  + %s %s\n",
				paint(MimeStyle, c.Mime, color),
				paint(DescriptorStyle, c.ID, color))
		}
	}
	return b.String()
}
