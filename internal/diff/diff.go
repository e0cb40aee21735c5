// Package diff computes line diffs between the current association file and
// the reconciled content, for dry-run previews and interactive review.
package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffType represents the type of diff operation
type DiffType int

const (
	DiffEqual DiffType = iota
	DiffInsert
	DiffDelete
)

// Prefix returns the unified diff marker for the type
func (t DiffType) Prefix() string {
	switch t {
	case DiffInsert:
		return "+"
	case DiffDelete:
		return "-"
	default:
		return " "
	}
}

// DiffLine represents a single line in the diff
type DiffLine struct {
	Type    DiffType
	Content string
	OldNum  int // Line number in the old text, 0 for inserts
	NewNum  int // Line number in the new text, 0 for deletes
}

// DiffHunk represents a group of changes with surrounding context
type DiffHunk struct {
	StartOld int
	StartNew int
	CountOld int
	CountNew int
	Lines    []DiffLine
}

// Header returns the unified diff hunk header
func (h DiffHunk) Header() string {
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.StartOld, h.CountOld, h.StartNew, h.CountNew)
}

// DiffResult contains the complete diff between two texts
type DiffResult struct {
	Lines        []DiffLine
	Identical    bool
	LinesAdded   int
	LinesRemoved int
}

// Compute computes a line diff between oldText and newText using go-diff
func Compute(oldText, newText string) *DiffResult {
	result := &DiffResult{}

	if oldText == newText {
		result.Identical = true
		result.Lines = linesToDiff(splitLines(oldText))
		return result
	}

	// Use line mode diff for better results on text files
	dmp := diffmatchpatch.New()
	chars1, chars2, lineArray := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffMain(chars1, chars2, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	oldNum, newNum := 1, 1
	for _, d := range diffs {
		for _, line := range splitLines(d.Text) {
			dl := DiffLine{Content: line}
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				dl.Type = DiffEqual
				dl.OldNum, dl.NewNum = oldNum, newNum
				oldNum++
				newNum++
			case diffmatchpatch.DiffDelete:
				dl.Type = DiffDelete
				dl.OldNum = oldNum
				oldNum++
				result.LinesRemoved++
			case diffmatchpatch.DiffInsert:
				dl.Type = DiffInsert
				dl.NewNum = newNum
				newNum++
				result.LinesAdded++
			}
			result.Lines = append(result.Lines, dl)
		}
	}

	result.Identical = result.LinesAdded == 0 && result.LinesRemoved == 0
	return result
}

// Hunks groups changed lines with up to context unchanged lines around them
func (r *DiffResult) Hunks(context int) []DiffHunk {
	var hunks []DiffHunk
	if r.Identical {
		return hunks
	}

	// Mark which lines fall inside a hunk
	include := make([]bool, len(r.Lines))
	for i, l := range r.Lines {
		if l.Type == DiffEqual {
			continue
		}
		for j := max(0, i-context); j <= min(len(r.Lines)-1, i+context); j++ {
			include[j] = true
		}
	}

	var current *DiffHunk
	// Old and new lines consumed before the current position
	oldSeen, newSeen := 0, 0
	flush := func() {
		// An empty side points at the line the change follows
		if current.CountOld > 0 {
			current.StartOld++
		}
		if current.CountNew > 0 {
			current.StartNew++
		}
		hunks = append(hunks, *current)
		current = nil
	}

	for i, l := range r.Lines {
		if include[i] {
			if current == nil {
				current = &DiffHunk{StartOld: oldSeen, StartNew: newSeen}
			}
			switch l.Type {
			case DiffEqual:
				current.CountOld++
				current.CountNew++
			case DiffDelete:
				current.CountOld++
			case DiffInsert:
				current.CountNew++
			}
			current.Lines = append(current.Lines, l)
		} else if current != nil {
			flush()
		}

		if l.Type != DiffInsert {
			oldSeen++
		}
		if l.Type != DiffDelete {
			newSeen++
		}
	}
	if current != nil {
		flush()
	}

	return hunks
}

// Unified renders the diff in unified format with the given file labels
func (r *DiffResult) Unified(oldLabel, newLabel string, context int) string {
	if r.Identical {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n+++ %s\n", oldLabel, newLabel)
	for _, h := range r.Hunks(context) {
		b.WriteString(h.Header())
		b.WriteString("\n")
		for _, l := range h.Lines {
			b.WriteString(l.Type.Prefix())
			b.WriteString(l.Content)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// splitLines splits text into lines without a phantom empty last line
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

// linesToDiff converts lines to unchanged DiffLines
func linesToDiff(lines []string) []DiffLine {
	result := make([]DiffLine, len(lines))
	for i, line := range lines {
		result[i] = DiffLine{
			Type:    DiffEqual,
			Content: line,
			OldNum:  i + 1,
			NewNum:  i + 1,
		}
	}
	return result
}
