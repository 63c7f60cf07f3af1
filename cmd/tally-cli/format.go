package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

func formatJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func formatTable(headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	printRow := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			w := 0
			if i < len(widths) {
				w = widths[i]
			}
			parts[i] = fmt.Sprintf("%-*s", w, cell)
		}
		fmt.Println(strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	printRow(headers)
	seps := make([]string, len(headers))
	for i, w := range widths {
		seps[i] = strings.Repeat("-", w)
	}
	printRow(seps)
	for _, row := range rows {
		printRow(row)
	}
}

// view describes how one record type renders as a table row.
// The first column is the record id, which quiet mode prints alone.
type view[T any] struct {
	headers []string
	row     func(*T) []string
}

// outputOne prints a single record in the selected format.
func outputOne[T any](v view[T], rec *T) error {
	switch flagFmt {
	case "quiet":
		fmt.Println(v.row(rec)[0])
		return nil
	case "table":
		formatTable(v.headers, [][]string{v.row(rec)})
		return nil
	default:
		return formatJSON(rec)
	}
}

// outputList prints a list of records in the selected format.
func outputList[T any](v view[T], recs []T, total int64) error {
	switch flagFmt {
	case "quiet":
		for i := range recs {
			fmt.Println(v.row(&recs[i])[0])
		}
		return nil
	case "table":
		rows := make([][]string, 0, len(recs))
		for i := range recs {
			rows = append(rows, v.row(&recs[i]))
		}
		formatTable(v.headers, rows)
		fmt.Printf("\n%d of %d\n", len(recs), total)
		return nil
	default:
		return formatJSON(map[string]any{"count": total, "rows": recs})
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
