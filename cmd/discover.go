package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/internal/store"
)

var (
	discoverLocation string
	discoverType     string
	discoverConfig   string
	discoverTop      int
	discoverFilters  = model.DefaultFilters()
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Run one discovery job and print the qualified leads",
	Example: `  lead-scout discover --location "Austin, TX" --type cafe
  lead-scout discover --config search.yaml --verified-owner`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		search, err := resolveSearch(cmd.Flags())
		if err != nil {
			return err
		}

		a, err := initApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		job, runErr := a.Orchestrator.Execute(ctx, search)
		if job == nil {
			return runErr
		}

		out := cmd.OutOrStdout()
		printJobSummary(out, job)

		leads, err := a.Store.ListLeads(ctx, store.LeadFilter{JobID: job.ID, Limit: discoverTop})
		if err != nil {
			return eris.Wrap(err, "list leads")
		}
		if len(leads) > 0 {
			fmt.Fprintln(out)
			printLeadTable(out, leads)
		}
		return runErr
	},
}

// resolveSearch builds the search from --config, then applies --location,
// --type and any filter flag that was set explicitly.
func resolveSearch(flags *pflag.FlagSet) (model.SearchConfig, error) {
	search := model.NewSearchConfig("", "")
	if discoverConfig != "" {
		data, err := os.ReadFile(discoverConfig)
		if err != nil {
			return search, eris.Wrap(err, "read search config")
		}
		if err := yaml.Unmarshal(data, &search); err != nil {
			return search, eris.Wrap(err, "parse search config")
		}
	}

	if discoverLocation != "" {
		search.Location = discoverLocation
	}
	if discoverType != "" {
		search.BusinessType = discoverType
	}

	override := func(name string, dst *bool, v bool) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	override("no-website", &search.Filters.NoWebsite, discoverFilters.NoWebsite)
	override("social-only", &search.Filters.SocialOnly, discoverFilters.SocialOnly)
	override("outdated-site", &search.Filters.OutdatedSite, discoverFilters.OutdatedSite)
	override("independent-only", &search.Filters.IndependentOnly, discoverFilters.IndependentOnly)
	override("verified-owner", &search.Filters.VerifiedOwner, discoverFilters.VerifiedOwner)
	override("active-social", &search.Filters.ActiveSocial, discoverFilters.ActiveSocial)

	return search, nil
}

func printJobSummary(w io.Writer, job *model.DiscoveryJob) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetTitle("Discovery job %s", job.ID)
	tw.AppendRows([]table.Row{
		{"Search", fmt.Sprintf("%s in %s", job.BusinessType, job.Location)},
		{"Status", job.Status},
		{"Found", job.TotalFound},
		{"Qualified", job.QualifiedLeads},
		{"High score", job.HighScoreLeads},
		{"Verified owners", job.VerifiedOwners},
	})
	if job.Error != "" {
		tw.AppendRow(table.Row{"Error", job.Error})
	}
	tw.Render()
}

func printLeadTable(w io.Writer, leads []model.BusinessLead) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"ID", "Business", "Website", "Score", "Confidence", "Owner", "Phone", "City"})
	for _, l := range leads {
		owner := l.OwnerName
		if l.OwnerVerified {
			owner += " ✓"
		}
		tw.AppendRow(table.Row{l.ID, l.BusinessName, l.WebsiteStatus, l.LeadScore, l.Confidence, owner, l.PhonePrimary, l.City})
	}
	tw.Render()
}

func init() {
	f := discoverCmd.Flags()
	f.StringVar(&discoverLocation, "location", "", "search location, e.g. \"Austin, TX\"")
	f.StringVar(&discoverType, "type", "", "business type, e.g. cafe")
	f.StringVar(&discoverConfig, "config", "", "YAML file with a search (location, business_type, filters)")
	f.IntVar(&discoverTop, "top", 20, "number of leads to print")
	f.BoolVar(&discoverFilters.NoWebsite, "no-website", true, "keep businesses without a website")
	f.BoolVar(&discoverFilters.SocialOnly, "social-only", true, "keep businesses with only social profiles")
	f.BoolVar(&discoverFilters.OutdatedSite, "outdated-site", true, "keep businesses with an outdated website")
	f.BoolVar(&discoverFilters.IndependentOnly, "independent-only", false, "drop chain locations")
	f.BoolVar(&discoverFilters.VerifiedOwner, "verified-owner", false, "require a verified owner")
	f.BoolVar(&discoverFilters.ActiveSocial, "active-social", false, "require social activity within 30 days")
	rootCmd.AddCommand(discoverCmd)
}
