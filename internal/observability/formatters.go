// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/jobcraft/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

// pad right-pads s with spaces to n runes.
func pad(s string, n int) string {
	if c := utf8.RuneCountInString(s); c < n {
		return s + strings.Repeat(" ", n-c)
	}
	return s
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(title, inner), inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, inner), inner))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func writeList(sb *strings.Builder, label string, items []string, limit int) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(label + ":\n")
	count := min(len(items), limit)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > limit {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-limit))
	}
}

// PrintJobProfile outputs a human-readable summary of a generated job profile.
func (p *Printer) PrintJobProfile(profile *types.JobProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title:    %s\n", profile.Title))
	sb.WriteString(fmt.Sprintf("Level:    %s\n", profile.Level))
	if profile.IsStandardized() {
		sb.WriteString(fmt.Sprintf("Origin:   %s -> %s\n", profile.TitleOrigin, profile.OfficialTitle))
	} else {
		sb.WriteString(fmt.Sprintf("Origin:   %s (not in catalog)\n", profile.TitleOrigin))
	}
	sb.WriteString("\n")

	for _, list := range profile.Lists() {
		writeList(&sb, list.Label, list.Items, maxItemsToShow)
	}

	p.printBox("GENERATED JOB PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintReferenceSnapshot summarizes the reference tables sent with a prompt.
func (p *Printer) PrintReferenceSnapshot(refs types.ReferenceSnapshot) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Competency families: %d\n", len(refs.Competencies)))
	sb.WriteString(fmt.Sprintf("Catalog titles:      %d\n", len(refs.Catalog)))

	if len(refs.Catalog) > 0 {
		titles := make([]string, len(refs.Catalog))
		for i, e := range refs.Catalog {
			titles[i] = e.Title
			if e.Level != "" {
				titles[i] += " (" + e.Level + ")"
			}
		}
		sb.WriteString("\n")
		writeList(&sb, "Catalog", titles, maxItemsToShow)
	}

	p.printBox("REFERENCE DATA", strings.TrimSuffix(sb.String(), "\n"))
}

// BatchLine is one row of a batch summary.
type BatchLine struct {
	Index  int
	Title  string
	Origin types.TitleOrigin
	Err    error
}

// PrintBatchSummary outputs per-item status lines followed by totals.
func (p *Printer) PrintBatchSummary(lines []BatchLine, notified bool) {
	var sb strings.Builder
	failed := 0
	for _, l := range lines {
		if l.Err != nil {
			failed++
			sb.WriteString(fmt.Sprintf("✗ %d. %s: %v\n", l.Index, l.Title, l.Err))
			continue
		}
		sb.WriteString(fmt.Sprintf("✓ %d. %s [%s]\n", l.Index, l.Title, l.Origin))
	}
	sb.WriteString(fmt.Sprintf("\n%d processed, %d succeeded, %d failed", len(lines), len(lines)-failed, failed))
	if notified {
		sb.WriteString("\nNotification sent for the first item")
	}

	p.printBox("BATCH SUMMARY", sb.String())
}
