package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/dovermoor/cinefetch/internal/formatter"
)

var _ list.Item = formatItem("")

// formatItem wraps an export format name so the format picker can render it.
type formatItem string

func (i formatItem) FilterValue() string { return string(i) }

func (i formatItem) Title() string { return strings.ToUpper(string(i)) }

func (i formatItem) Description() string {
	switch string(i) {
	case formatter.FormatCSV:
		return "Comma-separated values"
	case formatter.FormatJSON:
		return "Pretty-printed JSON array"
	case formatter.FormatXLSX:
		return "Excel workbook"
	case formatter.FormatSQLite:
		return "Standalone database file"
	default:
		return ""
	}
}

func newFormatList() list.Model {
	formats := formatter.Formats()
	items := make([]list.Item, 0, len(formats))
	for _, format := range formats {
		items = append(items, formatItem(format))
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Export format"
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.SetShowStatusBar(false)
	return l
}
