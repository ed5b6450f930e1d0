package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/JonMunkholm/sheets/internal/grid"
	"github.com/JonMunkholm/sheets/internal/sheetio"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newConvertCmd(opts *globalOptions) *cobra.Command {
	var (
		to     string
		outDir string
		jobs   int
	)

	cmd := &cobra.Command{
		Use:   "convert FILE... --to FORMAT",
		Short: "Convert files to another format",
		Long: `Convert reads every FILE and writes it next to the input (or into
--out-dir) with the extension of the target format. Converting a workbook
with several sheets to a single-sheet format writes one file per sheet,
named FILE-SHEET.EXT. The first failure stops the remaining conversions.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := outputFormat("." + to)
			if err != nil {
				return err
			}
			if outDir != "" {
				if err := os.MkdirAll(outDir, 0o755); err != nil {
					return err
				}
			}

			codec := opts.codec()
			var written atomic.Int64

			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(max(jobs, 1))
			for _, path := range args {
				g.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					n, err := convertFile(codec, path, target, outDir)
					if err != nil {
						return err
					}
					written.Add(int64(n))
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "converted %d file(s), wrote %d\n", len(args), written.Load())
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Target format: xlsx or csv")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Output directory (default: next to each input)")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "Files converted in parallel")
	cmd.MarkFlagRequired("to")
	return cmd
}

// convertFile writes path in the target format and returns the number of
// files written.
func convertFile(codec *sheetio.Codec, path string, target sheetio.Format, outDir string) (int, error) {
	wb, err := loadWorkbook(codec, path)
	if err != nil {
		return 0, err
	}

	dir := outDir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	if target.MultiSheet || wb.SheetCount() == 1 {
		out := filepath.Join(dir, base+"."+target.Name)
		if err := writeSheets(codec, target.Name, wb.Sheets(), out); err != nil {
			return 0, fmt.Errorf("%s: %w", path, err)
		}
		slog.Info("converted", "file", path, "output", out)
		return 1, nil
	}

	for i, sheet := range wb.Sheets() {
		out := filepath.Join(dir, fmt.Sprintf("%s-%s.%s", base, fileSafe(sheet.Name, i), target.Name))
		if err := writeSheets(codec, target.Name, []grid.SheetData{sheet}, out); err != nil {
			return i, fmt.Errorf("%s: %w", path, err)
		}
		slog.Info("converted", "file", path, "sheet", sheet.Name, "output", out)
	}
	return wb.SheetCount(), nil
}

// fileSafe makes a sheet name usable in a file name.
func fileSafe(name string, index int) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" || name == "." || name == ".." {
		return fmt.Sprintf("Sheet%d", index+1)
	}
	return name
}
