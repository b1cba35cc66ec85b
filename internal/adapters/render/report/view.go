// Package report renders fixed-width text tables and status count summaries.
package report

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bnema/amxbpm-admin-cli/internal/domain"
)

const DefaultWidth = 110

type Options struct {
	Styled bool
}

// Column is one fixed-width cell. Truncate cuts the value to that many
// characters; zero keeps it whole.
type Column struct {
	Field      string
	Title      string
	Width      int
	Truncate   int
	AlignRight bool
}

// Summary counts records by the value of Field.
type Summary struct {
	Field      string
	LabelWidth int
}

// Table is a header line followed by one line per record. Prefix is put in
// front of every record line.
type Table struct {
	Columns  []Column
	Records  []domain.Record
	SortBy   string
	Prefix   string
	NoHeader bool
	HideRows bool
	Summary  *Summary
}

// Block is an optional heading, literal lines and an optional table.
type Block struct {
	Heading string
	Lines   []string
	Table   *Table
	Rule    bool
}

type Report struct {
	Banner string
	Blocks []Block
	Width  int
}

// Count is the number of records sharing one status value.
type Count struct {
	Value string
	Count int
}

func renderView(r Report, s styles) string {
	width := r.Width
	if width <= 0 {
		width = DefaultWidth
	}

	lines := make([]string, 0, 16)
	if r.Banner != "" {
		lines = append(lines, s.render(s.heading, r.Banner))
	}

	for _, block := range r.Blocks {
		if block.Heading != "" {
			lines = append(lines, s.render(s.heading, block.Heading))
		}
		lines = append(lines, block.Lines...)
		if block.Table != nil {
			lines = append(lines, tableLines(*block.Table, s)...)
		}
		if block.Rule {
			lines = append(lines, s.render(s.rule, Rule(width)))
		}
	}

	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func tableLines(t Table, s styles) []string {
	records := t.Records
	if t.SortBy != "" {
		records = SortedBy(records, t.SortBy)
	}

	lines := make([]string, 0, len(records)+2)
	if !t.HideRows {
		if !t.NoHeader {
			lines = append(lines, s.render(s.header, strings.TrimRight(HeaderRow(t.Prefix, t.Columns), " ")))
		}
		for _, record := range records {
			lines = append(lines, t.Prefix+FormatRow(t.Columns, record))
		}
	}

	if t.Summary != nil {
		label := t.Summary.LabelWidth
		if label <= 0 {
			label = 25
		}
		for _, count := range CountBy(records, t.Summary.Field) {
			lines = append(lines, CountLine(label, count.Value, count.Count))
		}
		lines = append(lines, s.render(s.total, CountLine(label, "Total", len(records))))
	}

	return lines
}

// FormatRow lays out the record fields named by columns. Missing fields
// render as blanks.
func FormatRow(columns []Column, record domain.Record) string {
	var b strings.Builder
	for _, column := range columns {
		b.WriteString(cell(column, record.Get(column.Field)))
	}
	return b.String()
}

// HeaderRow lays out the column titles with the widths of the record lines.
func HeaderRow(prefix string, columns []Column) string {
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", len(prefix)))
	for _, column := range columns {
		b.WriteString(cell(Column{Width: column.Width, AlignRight: column.AlignRight}, column.Title))
	}
	return b.String()
}

func cell(column Column, value string) string {
	if column.Truncate > 0 {
		runes := []rune(value)
		if len(runes) > column.Truncate {
			value = string(runes[:column.Truncate])
		}
	}

	if column.AlignRight {
		return fmt.Sprintf("%*s", column.Width, value)
	}
	return fmt.Sprintf("%-*s", column.Width, value)
}

// CountBy groups records by field in order of first appearance.
func CountBy(records []domain.Record, field string) []Count {
	counts := make([]Count, 0, 4)
	index := make(map[string]int, 4)
	for _, record := range records {
		value := record.Get(field)
		position, seen := index[value]
		if !seen {
			index[value] = len(counts)
			counts = append(counts, Count{Value: value, Count: 1})
			continue
		}
		counts[position].Count++
	}
	return counts
}

// SortedBy returns a copy of records in stable ascending order of field.
func SortedBy(records []domain.Record, field string) []domain.Record {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b domain.Record) int {
		return strings.Compare(a.Get(field), b.Get(field))
	})
	return sorted
}

func CountLine(labelWidth int, label string, count int) string {
	return fmt.Sprintf("%-*s%3d", labelWidth, label, count)
}

func Rule(width int) string {
	return strings.Repeat("=", width)
}

// Header frames message between two rules.
func Header(message string, width int) []string {
	if width <= 0 {
		width = DefaultWidth
	}
	return []string{Rule(width), message, Rule(width)}
}
