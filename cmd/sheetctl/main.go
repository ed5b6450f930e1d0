// Command sheetctl inspects, sorts and converts spreadsheet files with the
// same workbook rules as the web editor.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/JonMunkholm/sheets/internal/core"
	"github.com/JonMunkholm/sheets/internal/logging"
	"github.com/JonMunkholm/sheets/internal/sheetio"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// globalOptions are shared by every subcommand.
type globalOptions struct {
	logLevel     string
	csvCharset   string
	maxUnzipSize int64
}

func (o *globalOptions) codec() *sheetio.Codec {
	return sheetio.NewCodec(sheetio.Options{
		CSVCharset:   o.csvCharset,
		MaxUnzipSize: o.maxUnzipSize,
	})
}

func main() {
	// Optional: lets IMPORT_CSV_CHARSET and LOG_LEVEL come from a .env file.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describeError(err))
		os.Exit(1)
	}
}

// describeError appends the editor's user-facing hint when err maps to one.
func describeError(err error) string {
	if !core.IsUserFacing(err) {
		return err.Error()
	}
	return err.Error() + "\n  " + core.FormatUserError(err)
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "sheetctl",
		Short: "Inspect, sort and convert spreadsheet files",
		Long: `sheetctl works on .xlsx, .xlsm, .xls and .csv files using the same
workbook rules as the web editor. Rows, columns and sheets are numbered from 1.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger := logging.New(cmd.ErrOrStderr(), opts.logLevel, "text")
			slog.SetDefault(logger)
		},
	}

	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", envOr("LOG_LEVEL", "warn"), "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&opts.csvCharset, "csv-charset", envOr("IMPORT_CSV_CHARSET", "utf-8"), "Encoding of CSV input without a BOM: utf-8, windows-1252, iso-8859-1")
	root.PersistentFlags().Int64Var(&opts.maxUnzipSize, "max-unzip-size", 0, "Cap on the uncompressed size of xlsx input in bytes (0 for the library default)")

	root.AddCommand(
		newShowCmd(opts),
		newSortCmd(opts),
		newConvertCmd(opts),
		newNewCmd(opts),
	)
	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// sheetIndex converts a 1-based sheet flag to an index.
func sheetIndex(n int) (int, error) {
	if n < 1 {
		return 0, fmt.Errorf("sheet numbers start at 1, got %d", n)
	}
	return n - 1, nil
}
