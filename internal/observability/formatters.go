// Package observability provides structured logging, Prometheus metrics and
// formatted CLI output for the lead engine.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/leadgen/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted CLI output
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len([]rune(line)) > boxWidth-4 {
			line = string([]rune(line)[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}

// sortedKeys returns map keys in a stable order for display.
func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PrintRunReport outputs the outcome of one acquisition run.
func (p *Printer) PrintRunReport(report *types.RunReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:        %s\n", report.RunID))
	sb.WriteString(fmt.Sprintf("Status:     %s\n", report.Status))
	if report.Error != "" {
		sb.WriteString(fmt.Sprintf("Error:      %s\n", report.Error))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Found:      %d\n", report.TotalFound))
	sb.WriteString(fmt.Sprintf("Batch dups: %d\n", report.DuplicatesRemoved))
	sb.WriteString(fmt.Sprintf("Store dups: %d\n", report.StoreDuplicates))
	sb.WriteString(fmt.Sprintf("Inserted:   %d\n", report.SuccessfullyInserted))

	if len(report.LeadsPerSource) > 0 {
		sb.WriteString("\nPer source:\n")
		for _, source := range sortedKeys(report.LeadsPerSource) {
			sb.WriteString(fmt.Sprintf("  • %s: %d", source, report.LeadsPerSource[source]))
			if msg, failed := report.Errors[source]; failed {
				sb.WriteString(fmt.Sprintf(" (failed: %s)", msg))
			}
			sb.WriteString("\n")
		}
	}

	p.printBox("LEAD GENERATION REPORT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintStats outputs aggregate store statistics.
func (p *Printer) PrintStats(stats *types.Stats) {
	if stats == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total leads:  %d\n", stats.TotalLeads))
	sb.WriteString(fmt.Sprintf("Last 7 days:  %d\n", stats.RecentLeads))

	if len(stats.LeadsBySource) > 0 {
		sb.WriteString("\nBy source:\n")
		for _, source := range sortedKeys(stats.LeadsBySource) {
			sb.WriteString(fmt.Sprintf("  • %s: %d\n", source, stats.LeadsBySource[source]))
		}
	}
	writeBuckets(&sb, "Top cities:", stats.LeadsByCity)
	writeBuckets(&sb, "Top niches:", stats.LeadsByNiche)

	p.printBox("LEAD STORE STATISTICS", strings.TrimSuffix(sb.String(), "\n"))
}

func writeBuckets(sb *strings.Builder, heading string, buckets []types.Bucket) {
	if len(buckets) == 0 {
		return
	}
	sb.WriteString("\n" + heading + "\n")
	count := min(len(buckets), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  %d. %s (%d)\n", i+1, buckets[i].Key, buckets[i].Count))
	}
	if len(buckets) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(buckets)-maxItemsToShow))
	}
}

// PrintLeads outputs up to limit leads. A limit of zero or less prints them all.
func (p *Printer) PrintLeads(leads []types.Lead, limit int) {
	if len(leads) == 0 {
		p.printBox("LEADS", "No leads found")
		return
	}

	count := len(leads)
	if limit > 0 {
		count = min(count, limit)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Showing %d of %d leads:\n\n", count, len(leads)))
	for i := 0; i < count; i++ {
		lead := leads[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", lead.ID, truncate(lead.Name, 45)))
		sb.WriteString(fmt.Sprintf("    %s\n", truncate(lead.Address, 45)))
		contact := strings.TrimSpace(strings.Join([]string{lead.Phone, lead.Email}, " "))
		if contact != "" {
			sb.WriteString(fmt.Sprintf("    %s\n", contact))
		}
		sb.WriteString(fmt.Sprintf("    [%s]\n", lead.Source))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}
	if len(leads) > count {
		sb.WriteString(fmt.Sprintf("\n... and %d more leads", len(leads)-count))
	}

	p.printBox("LEADS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCleanup outputs the outcome of a duplicate cleanup.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintCleanup(result *types.CleanupResult) {
	if result == nil || result.DuplicatesFound == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO DUPLICATES FOUND")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	content := fmt.Sprintf("Duplicate groups: %d\nRows removed:     %d",
		result.DuplicatesFound, result.DuplicatesRemoved)
	p.printBox("DUPLICATE CLEANUP", content)
}

// PrintDedupLog outputs dedup log entries in the order given.
func (p *Printer) PrintDedupLog(entries []types.DedupLogEntry) {
	if len(entries) == 0 {
		p.printBox("DEDUP LOG", "No entries")
		return
	}

	var sb strings.Builder
	for i, e := range entries {
		sb.WriteString(fmt.Sprintf("%s  %s\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Operation))
		sb.WriteString(fmt.Sprintf("  total=%d found=%d removed=%d final=%d\n",
			e.TotalProcessed, e.DuplicatesFound, e.DuplicatesRemoved, e.FinalCount))
		if i < len(entries)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("DEDUP LOG", strings.TrimSuffix(sb.String(), "\n"))
}
