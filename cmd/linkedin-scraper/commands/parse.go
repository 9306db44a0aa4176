package commands

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/components/serviceutil"
	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/locator"
	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/person"
	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/profile"
)

var parseProfile *bool

func init() {
	parseProfile = parseCmd.Flags().Bool("profile", false, "Treats the payload as a profile cards response instead of a listing page.")
	rootCmd.AddCommand(parseCmd)
}

func renderCandidates(root *locator.Value) {
	t := newTable()
	t.AppendHeader(table.Row{"#", "Name", "Profile", "Followers", "Verdict"})
	i := 0
	for candidate := range person.Candidates(root) {
		i++
		p, err := person.Explain(candidate)
		verdict := "accepted"
		if err != nil {
			verdict = err.Error()
			p.Name = candidate.Path("title", "text").Text()
		}
		t.AppendRow(table.Row{i, p.Name, p.ProfileURL, p.Followers, verdict})
	}
	t.Render()
}

func renderSections(root *locator.Value) {
	sections := profile.Parse(root)

	t := newTable()
	t.SetTitle("About")
	if sections.HasAbout {
		t.AppendRow(table.Row{sections.About})
	} else {
		t.AppendRow(table.Row{"(none)"})
	}
	t.Render()

	t = newTable()
	t.SetTitle("Experience")
	t.AppendHeader(table.Row{"Company", "Position", "Duration", "Position Duration", "Description"})
	for _, e := range sections.Experiences {
		t.AppendRow(table.Row{e.Company, e.Position, e.Duration, e.PositionDuration, e.Description})
	}
	t.Render()

	t = newTable()
	t.SetTitle("Education")
	t.AppendHeader(table.Row{"Institution", "Degree", "Grade", "Description"})
	for _, e := range sections.Education {
		t.AppendRow(table.Row{e.Institution, e.Degree, e.Grade, e.Description})
	}
	t.Render()
}

var parseCmd = &cobra.Command{
	Use:   "parse <payload.json> [--profile]",
	Short: "Runs the extraction over a saved response body and prints what it finds.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		f, err := os.Open(args[0])
		if err != nil {
			serviceutil.Fatal("failed to open payload", err)
		}
		defer f.Close()

		root, err := locator.Decode(f)
		if err != nil {
			serviceutil.Fatal("failed to decode payload", err)
		}
		if *parseProfile {
			renderSections(root)
			return
		}
		renderCandidates(root)
	},
}
