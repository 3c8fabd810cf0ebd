package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/SscSPs/twoline_ledger/internal/csvkit"
)

func csvCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "csv",
		Short: "Export ledger data as CSV",
	}
	cmd.AddCommand(csvExportCmd())
	return cmd
}

func csvExportCmd() *cobra.Command {
	var (
		householdID string
		outDir      string
		flat        bool
		bom         bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the canonical bundle (or a flat CSV) of a household",
		RunE: func(cmd *cobra.Command, _ []string) error {
			container, closeRepos, err := newContainer(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer closeRepos()

			var files []csvkit.File
			if flat {
				content, err := container.CSVImport.ExportFlat(cmd.Context(), householdID, bom)
				if err != nil {
					return err
				}
				files = []csvkit.File{{Path: "ledger.csv", Content: content}}
			} else {
				files, err = container.CSVImport.ExportCanonical(cmd.Context(), householdID, csvkit.SerializeOptions{ExcelBOM: bom})
				if err != nil {
					return err
				}
			}

			if err := writeFiles(outDir, files); err != nil {
				return err
			}
			slog.Info("Export written", slog.String("household_id", householdID), slog.String("dir", outDir), slog.Int("files", len(files)))
			return nil
		},
	}
	cmd.Flags().StringVar(&householdID, "household", "", "household to export")
	cmd.Flags().StringVar(&outDir, "out", ".", "output directory")
	cmd.Flags().BoolVar(&flat, "flat", false, "write a single flat CSV instead of the canonical bundle")
	cmd.Flags().BoolVar(&bom, "bom", false, "prefix files with a UTF-8 BOM for Excel")
	_ = cmd.MarkFlagRequired("household")
	return cmd
}

func writeFiles(dir string, files []csvkit.File) error {
	for _, f := range files {
		target := filepath.Join(dir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Dir(target), err)
		}
		if err := os.WriteFile(target, []byte(f.Content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
	}
	return nil
}
