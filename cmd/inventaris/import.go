package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/erazemk/inventaris/internal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import <file.xlsx|file.csv>",
	Short: "Import items from a spreadsheet",
	Long: `Import items from the first sheet of an .xlsx workbook or from a .csv file.
Rows without an item name are skipped. Imported items get no QR image until
they are next edited.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := importer.ReadRows(f, args[0])
	if err != nil {
		return err
	}

	res, err := importer.NewReconciler(a.Inventory, slog.Default()).Import(cmd.Context(), rows)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	color.New(color.FgGreen).Fprintf(out, "Imported %d item(s)\n", res.ImportedCount)
	if res.Skipped > 0 {
		color.New(color.FgYellow).Fprintf(out, "Skipped %d row(s) without a name\n", res.Skipped)
	}
	for _, rowErr := range res.Failed {
		color.New(color.FgRed).Fprintf(out, "Row %d failed: %s\n", rowErr.Row, rowErr.Reason)
	}
	if len(res.Failed) > 0 {
		return fmt.Errorf("%d row(s) failed", len(res.Failed))
	}
	return nil
}
