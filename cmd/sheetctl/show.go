package main

import (
	"fmt"
	"strconv"

	"github.com/JonMunkholm/sheets/internal/sheetio"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	indexStyle  = lipgloss.NewStyle().Faint(true).Padding(0, 1).Align(lipgloss.Right)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func newShowCmd(opts *globalOptions) *cobra.Command {
	var (
		sheet   int
		maxRows int
		list    bool
	)

	cmd := &cobra.Command{
		Use:   "show FILE",
		Short: "Print a sheet as a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wb, err := loadWorkbook(opts.codec(), args[0])
			if err != nil {
				return err
			}

			if list {
				for i, name := range wb.SheetNames() {
					fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", i+1, name)
				}
				return nil
			}

			idx, err := sheetIndex(sheet)
			if err != nil {
				return err
			}
			if err := wb.SetActiveSheet(idx); err != nil {
				return err
			}

			data := wb.ActiveSheet()
			rows := data.Rows
			truncated := 0
			if maxRows > 0 && len(rows) > maxRows {
				truncated = len(rows) - maxRows
				rows = rows[:maxRows]
			}

			fmt.Fprintln(cmd.OutOrStdout(), headerStyle.Render(data.Name))
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(rows))
			if truncated > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "... %d more rows\n", truncated)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&sheet, "sheet", 1, "Sheet number")
	cmd.Flags().IntVar(&maxRows, "max-rows", 50, "Rows to print (0 for all)")
	cmd.Flags().BoolVar(&list, "list", false, "List sheet names instead of printing cells")
	return cmd
}

// renderTable lays out rows under spreadsheet column letters, with row
// numbers in the first column.
func renderTable(rows [][]string) string {
	cols := 0
	if len(rows) > 0 {
		cols = len(rows[0])
	}

	headers := make([]string, cols+1)
	for c := 0; c < cols; c++ {
		headers[c+1] = sheetio.ColumnName(c)
	}

	body := make([][]string, len(rows))
	for r, row := range rows {
		body[r] = append([]string{strconv.Itoa(r + 1)}, row...)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(body...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return indexStyle
			default:
				return cellStyle
			}
		})
	return t.String()
}
