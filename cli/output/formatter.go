// Package output formats CLI output.
package output

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// TableData holds rows for table output
type TableData struct {
	Headers []string
	Rows    [][]string
}

// Formatter handles output formatting
type Formatter struct {
	Writer    io.Writer
	NoHeaders bool
	Quiet     bool
}

// NewFormatter creates a formatter writing to w
func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{Writer: w}
}

// PrintTable prints formatted table output
func (f *Formatter) PrintTable(data TableData) {
	if f.Quiet {
		return
	}

	table := tablewriter.NewWriter(f.Writer)

	if !f.NoHeaders && len(data.Headers) > 0 {
		table.SetHeader(data.Headers)
	}

	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)

	table.AppendBulk(data.Rows)
	table.Render()
}

// PrintSuccess prints a success message
func (f *Formatter) PrintSuccess(message string) {
	if f.Quiet {
		return
	}
	_, _ = fmt.Fprintln(f.Writer, message)
}
