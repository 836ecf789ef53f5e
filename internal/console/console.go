// Package console renders the human-facing output of the capture CLI.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"uicapture/internal/core/domain"
)

// Printer writes styled output to w.
type Printer struct {
	w       io.Writer
	title   lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	muted   lipgloss.Style
}

// NewPrinter creates a Printer. Colors are dropped when NO_COLOR is set.
func NewPrinter(w io.Writer) *Printer {
	p := &Printer{
		w:       w,
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		failure: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
	if os.Getenv("NO_COLOR") != "" {
		p.title = lipgloss.NewStyle()
		p.success = lipgloss.NewStyle()
		p.failure = lipgloss.NewStyle()
		p.muted = lipgloss.NewStyle()
	}
	return p
}

func (p *Printer) rule() string {
	return strings.Repeat("=", 80)
}

// Usage prints the catalog and the accepted arguments.
func (p *Printer) Usage(prog string, jobs []domain.Job) {
	fmt.Fprintln(p.w, p.title.Render("Agent B Task Runner"))
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, "Available tasks:")
	for i, job := range jobs {
		fmt.Fprintf(p.w, "  %d: [%s] %s\n", i, job.Application, job.Description)
	}
	fmt.Fprintln(p.w)
	p.UsageLines(prog)
}

// UsageLines prints only the accepted arguments.
func (p *Printer) UsageLines(prog string) {
	fmt.Fprintln(p.w, "Usage:")
	fmt.Fprintf(p.w, "  %s          %s\n", prog, p.muted.Render("# Show help"))
	fmt.Fprintf(p.w, "  %s all      %s\n", prog, p.muted.Render("# Run all tasks"))
	fmt.Fprintf(p.w, "  %s 0        %s\n", prog, p.muted.Render("# Run specific task by index"))
}

// InvalidSelection reports an out of range task index.
func (p *Printer) InvalidSelection(err *domain.InvalidSelectionError) {
	if err.Size == 0 {
		fmt.Fprintln(p.w, p.failure.Render("Invalid task index. No tasks available."))
		return
	}
	fmt.Fprintln(p.w, p.failure.Render(fmt.Sprintf("Invalid task index. Available tasks: 0-%d", err.Size-1)))
}

// Banner prints the header shown before a batch starts.
func (p *Printer) Banner(taskCount int) {
	fmt.Fprintln(p.w, p.rule())
	fmt.Fprintln(p.w, p.title.Render("AGENT B: UI STATE CAPTURE SYSTEM"))
	fmt.Fprintln(p.w, p.rule())
	fmt.Fprintf(p.w, "\nPreparing to capture %d tasks across multiple apps\n\n", taskCount)
}

// Outcome prints one line for a finished job.
func (p *Printer) Outcome(index int, o domain.JobOutcome) {
	if o.Status == domain.StatusSuccess {
		fmt.Fprintln(p.w, p.success.Render(fmt.Sprintf("✓ Task %d completed: %s", index, o.Manifest)))
		return
	}
	fmt.Fprintln(p.w, p.failure.Render(fmt.Sprintf("✗ Task %d failed: %s", index, o.Error)))
}

// Summary prints the final tally of a batch.
func (p *Printer) Summary(report domain.BatchReport, datasetDir, reportPath string) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, p.rule())
	fmt.Fprintln(p.w, p.title.Render("ALL TASKS COMPLETED"))
	fmt.Fprintln(p.w, p.rule())
	fmt.Fprintf(p.w, "\nTotal tasks: %d\n", report.TotalTasks)
	fmt.Fprintln(p.w, p.success.Render(fmt.Sprintf("Successful: %d", report.SuccessfulTasks)))
	fmt.Fprintln(p.w, p.failure.Render(fmt.Sprintf("Failed: %d", report.FailedTasks)))
	fmt.Fprintf(p.w, "\nDataset location: %s\n", datasetDir)
	fmt.Fprintf(p.w, "Summary report: %s\n", reportPath)
}
