package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

func newSortCmd(opts *globalOptions) *cobra.Command {
	var (
		row, col, sheet int
		output          string
	)

	cmd := &cobra.Command{
		Use:   "sort FILE (--row N | --col N) -o OUT",
		Short: "Sort the values of one row or column in ascending order",
		Long: `Sort reorders the values inside a single row or column; every other cell
stays where it is. Numbers compare by value, everything else in natural
text order, and equal values keep their relative order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (row == 0) == (col == 0) {
				return errors.New("exactly one of --row or --col is required")
			}
			if row < 0 || col < 0 {
				return errors.New("rows and columns are numbered from 1")
			}
			if output == "" {
				output = args[0]
			}

			codec := opts.codec()
			wb, err := loadWorkbook(codec, args[0])
			if err != nil {
				return err
			}
			idx, err := sheetIndex(sheet)
			if err != nil {
				return err
			}
			if err := wb.SetActiveSheet(idx); err != nil {
				return err
			}

			if row > 0 {
				err = wb.SelectRow(row - 1)
				if err == nil {
					err = wb.SortRow()
				}
			} else {
				err = wb.SelectColumn(col - 1)
				if err == nil {
					err = wb.SortColumn()
				}
			}
			if err != nil {
				return fmt.Errorf("sort: %w", err)
			}

			if err := saveWorkbook(codec, wb, output); err != nil {
				return err
			}
			slog.Info("sorted", "file", args[0], "sheet", wb.ActiveSheet().Name, "row", row, "col", col, "output", output)
			return nil
		},
	}

	cmd.Flags().IntVar(&row, "row", 0, "Row number to sort")
	cmd.Flags().IntVar(&col, "col", 0, "Column number to sort")
	cmd.Flags().IntVar(&sheet, "sheet", 1, "Sheet number")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file; the extension selects the format (default: overwrite FILE)")
	cmd.MarkFlagsMutuallyExclusive("row", "col")
	return cmd
}
