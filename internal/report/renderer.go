package report

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// Renderer provides table rendering utilities
type Renderer interface {
	RenderToWriter(w io.Writer, headers []string, rows [][]string)
}

// renderer implements Renderer interface
type renderer struct{}

// NewRenderer creates a new table renderer
func NewRenderer() Renderer {
	return &renderer{}
}

func (r *renderer) RenderToWriter(w io.Writer, headers []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)

	// Apply default styling
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("│")
	table.SetRowSeparator("─")
	table.SetHeaderLine(true)
	table.SetBorder(true)
	table.SetTablePadding(" ")
	table.SetNoWhiteSpace(false)

	table.AppendBulk(rows)
	table.Render()
}

// Compile-time interface compliance check
var _ Renderer = (*renderer)(nil)
