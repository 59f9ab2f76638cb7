package verify

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sarchlab/pimdriver/burst"
)

// Report is the outcome of one verification run.
type Report struct {
	Title     string
	Tolerance burst.Tolerance

	// Checked is the number of outputs compared.
	Checked int

	// MismatchCount counts every output outside the tolerance. Mismatches
	// holds all of them unless the verifier set MaxRecorded.
	MismatchCount int
	Mismatches    []Mismatch
}

// Passed reports whether every output was within the tolerance.
func (r *Report) Passed() bool {
	return r.MismatchCount == 0
}

// WriteReport writes a formatted report to a writer
func (r *Report) WriteReport(w io.Writer) {
	separator := strings.Repeat("=", 60)

	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "VERIFICATION REPORT: %s\n", r.Title)
	fmt.Fprintln(w, separator)

	fmt.Fprintf(w, "Outputs checked: %d\n", r.Checked)
	fmt.Fprintf(w, "Tolerance: %d ULPs, slack %g\n",
		r.Tolerance.Scale, r.Tolerance.Slack)

	if r.Passed() {
		fmt.Fprintln(w, "✓ All outputs match the reference")
		fmt.Fprintln(w, separator)

		return
	}

	fmt.Fprintf(w, "⚠ %d outputs differ from the reference\n\n", r.MismatchCount)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Index", "Actual", "Expected", "Diff"})

	for _, m := range r.Mismatches {
		a := m.Actual.Float32()
		e := m.Expected.Float32()
		t.AppendRow(table.Row{m.Index, a, e, a - e})
	}

	if hidden := r.MismatchCount - len(r.Mismatches); hidden > 0 {
		t.AppendFooter(table.Row{"", "", "not shown", hidden})
	}

	t.Render()
	fmt.Fprintln(w, separator)
}

// SaveReportToFile saves the report to a file.
func (r *Report) SaveReportToFile(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	r.WriteReport(file)

	return nil
}
