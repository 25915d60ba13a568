package cli

import (
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"go.hackfix.me/vestibule/db/models"
)

// plainTable is a borderless, left-aligned ASCII table that is easy to parse
// with standard text tools.
var plainTable = []tablewriter.Option{
	tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
		Borders: tw.BorderNone,
		Symbols: tw.NewSymbols(tw.StyleASCII),
		Settings: tw.Settings{
			Lines:      tw.Lines{ShowHeaderLine: tw.Off, ShowFooterLine: tw.Off, ShowTop: tw.Off, ShowBottom: tw.Off},
			Separators: tw.Separators{ShowHeader: tw.Off, ShowFooter: tw.Off, BetweenRows: tw.Off, BetweenColumns: tw.Off},
		},
	})),
	tablewriter.WithConfig(tablewriter.Config{
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignLeft}},
		Row: tw.CellConfig{
			Formatting:   tw.CellFormatting{AutoWrap: tw.WrapNone},
			Alignment:    tw.CellAlignment{Global: tw.AlignLeft},
			ColMaxWidths: tw.CellWidth{Global: 50},
		},
	}),
}

// renderUsers writes users as a table to w. Timestamps are shown in local
// time. Nothing is written if there are no users.
func renderUsers(w io.Writer, users []*models.User) error {
	if len(users) == 0 {
		return nil
	}

	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{
			u.Name, u.UUID,
			u.CreatedAt.Local().Format(time.DateTime),
			u.UpdatedAt.Local().Format(time.DateTime),
		})
	}

	table := tablewriter.NewTable(w, plainTable...)
	table.Header([]string{"Name", "ID", "Created", "Updated"})
	if err := table.Bulk(rows); err != nil {
		return err //nolint:wrapcheck // Wrapped by the caller.
	}

	return table.Render() //nolint:wrapcheck // Wrapped by the caller.
}
