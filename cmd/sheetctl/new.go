package main

import (
	"errors"
	"log/slog"

	"github.com/JonMunkholm/sheets/internal/core"
	"github.com/spf13/cobra"
)

func newNewCmd(opts *globalOptions) *cobra.Command {
	var (
		output string
		sheets int
	)

	cmd := &cobra.Command{
		Use:   "new -o OUT",
		Short: "Write a blank workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if sheets < 1 {
				return errors.New("--sheets must be at least 1")
			}
			wb := core.NewWorkbook()
			for i := 1; i < sheets; i++ {
				wb.AddSheet()
			}
			if err := wb.SetActiveSheet(0); err != nil {
				return err
			}
			if err := saveWorkbook(opts.codec(), wb, output); err != nil {
				return err
			}
			slog.Info("workbook created", "output", output, "sheets", sheets)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file; the extension selects the format")
	cmd.Flags().IntVar(&sheets, "sheets", 1, "Number of sheets")
	cmd.MarkFlagRequired("output")
	return cmd
}
