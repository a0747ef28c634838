package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"docket/internal/audit"
)

// emitJSON writes v as indented JSON for scripting consumers.
func emitJSON(w io.Writer, v any) error {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(payload))
	return err
}

// queueTable renders rows in the house table style: rounded borders,
// left-aligned headers, and right alignment for count columns.
func queueTable(w io.Writer, headers []string, rows [][]string) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	configs := make([]table.ColumnConfig, 0, len(headers))
	for i, name := range headers {
		header[i] = name
		align := text.AlignLeft
		if name == "Count" {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(row))
		for i, cell := range row {
			r[i] = cell
		}
		tw.AppendRow(r)
	}

	tw.Render()
}

// renderRecordTable prints review records in the shared column layout.
func renderRecordTable(w io.Writer, records []*audit.Record) {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		reviewed := ""
		if record.ReviewedAt != nil {
			reviewed = record.ReviewedAt.Format(time.RFC3339)
		}
		rows = append(rows, []string{
			record.MemoryID,
			string(record.Status),
			record.CreatedAt.Format(time.RFC3339),
			reviewed,
			truncate(record.UserQuery, 48),
		})
	}
	queueTable(w, []string{"Memory ID", "Status", "Created", "Reviewed", "Query"}, rows)
}

// renderMetricsTable prints the per-status breakdown with the total last.
func renderMetricsTable(w io.Writer, metrics audit.Metrics) {
	queueTable(w, []string{"Status", "Count"}, [][]string{
		{"Pending", fmt.Sprintf("%d", metrics.Pending)},
		{"Approved", fmt.Sprintf("%d", metrics.Approved)},
		{"Rejected", fmt.Sprintf("%d", metrics.Rejected)},
		{"Total", fmt.Sprintf("%d", metrics.Total)},
	})
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}
