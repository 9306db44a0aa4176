package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/components/serviceutil"
	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/config"
)

var (
	configPath *string
	verbose    *bool
)

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "config.json5", "The config file, a sibling <name>.local.<ext> overrides it.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enables debug logging.")
}

var rootCmd = &cobra.Command{
	Use:   "linkedin-scraper",
	Short: "linkedin-scraper collects people from a LinkedIn people search.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		serviceutil.InitSlog(*verbose)
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() config.Config {
	cfg, err := config.Load(*configPath)
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	return cfg
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}
