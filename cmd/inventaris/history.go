package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/erazemk/inventaris/internal/model"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the audit trail, most recent first",
	RunE:  runHistory,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of entries to show (0 for all)")
}

var actionColors = map[model.Action]*color.Color{
	model.ActionCreate: color.New(color.FgGreen),
	model.ActionUpdate: color.New(color.FgYellow),
	model.ActionDelete: color.New(color.FgRed),
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.Close()

	entries, err := a.Inventory.ListHistory(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No history yet")
		return nil
	}

	for _, e := range entries {
		fmt.Fprintf(out, "%s ", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
		actionColors[e.Action].Fprintf(out, "%-6s ", e.Action)
		fmt.Fprintln(out, e.Details)
	}
	return nil
}
