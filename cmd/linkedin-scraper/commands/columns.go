package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/export"
)

func init() {
	rootCmd.AddCommand(columnsCmd)
}

var columnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "Prints the export column schema.",
	Run: func(cmd *cobra.Command, args []string) {
		t := newTable()
		t.AppendHeader(table.Row{"#", "Key", "Label"})
		for i, c := range export.DefaultColumns() {
			t.AppendRow(table.Row{i + 1, c.Key, c.Label})
		}
		t.Render()
	},
}
