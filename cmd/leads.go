package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/lead-scout/internal/export"
	"github.com/sells-group/lead-scout/internal/model"
	"github.com/sells-group/lead-scout/internal/outreach"
	"github.com/sells-group/lead-scout/internal/store"
)

var (
	leadsJobID    string
	leadsMinScore int
	leadsLimit    int
	exportFormat  string
	exportOut     string
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Inspect and export stored leads",
}

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List leads by score",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := initLeadStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		leads, err := st.ListLeads(cmd.Context(), store.LeadFilter{JobID: leadsJobID, MinScore: leadsMinScore, Limit: leadsLimit})
		if err != nil {
			return eris.Wrap(err, "list leads")
		}
		if len(leads) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No leads found.")
			return nil
		}
		printLeadTable(cmd.OutOrStdout(), leads)
		return nil
	},
}

var leadsShowCmd = &cobra.Command{
	Use:   "show <lead-id>",
	Short: "Print one lead as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := initLeadStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		lead, err := st.GetLead(cmd.Context(), args[0])
		if err != nil {
			return eris.Wrapf(err, "get lead %s", args[0])
		}
		return printJSON(cmd.OutOrStdout(), lead)
	},
}

var leadsOutreachCmd = &cobra.Command{
	Use:   "outreach <lead-id>",
	Short: "Regenerate outreach drafts for a lead and print them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := initLeadStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		composer := outreach.NewComposer(cfg.Outreach.Sender)
		lead, err := st.GetLead(cmd.Context(), args[0])
		if err != nil {
			return eris.Wrapf(err, "get lead %s", args[0])
		}

		messages := composer.Compose(lead)
		if _, err := st.UpdateLead(cmd.Context(), lead.ID, model.LeadPatch{Outreach: &messages}); err != nil {
			return eris.Wrap(err, "save outreach")
		}
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"messages":     messages,
			"alternatives": composer.ComposeAlternatives(lead),
		})
	},
}

var leadsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export leads as CSV or XLSX",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := initLeadStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		leads, err := st.ListLeads(cmd.Context(), store.LeadFilter{JobID: leadsJobID, MinScore: leadsMinScore})
		if err != nil {
			return eris.Wrap(err, "list leads")
		}

		var w io.Writer = cmd.OutOrStdout()
		if exportOut != "" && exportOut != "-" {
			f, err := os.Create(exportOut)
			if err != nil {
				return eris.Wrap(err, "create export file")
			}
			defer f.Close()
			w = f
		}

		switch exportFormat {
		case "csv":
			err = export.WriteCSV(w, leads)
		case "xlsx":
			err = export.WriteXLSX(w, leads)
		default:
			return eris.Errorf("unsupported export format: %s", exportFormat)
		}
		if err != nil {
			return err
		}
		if exportOut != "" && exportOut != "-" {
			fmt.Fprintf(cmd.ErrOrStderr(), "exported %d leads to %s\n", len(leads), exportOut)
		}
		return nil
	},
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	for _, c := range []*cobra.Command{leadsListCmd, leadsExportCmd} {
		c.Flags().StringVar(&leadsJobID, "job", "", "only leads from this job")
		c.Flags().IntVar(&leadsMinScore, "min-score", 0, "minimum lead score")
	}
	leadsListCmd.Flags().IntVar(&leadsLimit, "limit", 50, "maximum leads to list (0 = all)")
	leadsExportCmd.Flags().StringVar(&exportFormat, "format", "csv", "export format: csv or xlsx")
	leadsExportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")

	leadsCmd.AddCommand(leadsListCmd, leadsShowCmd, leadsOutreachCmd, leadsExportCmd)
	rootCmd.AddCommand(leadsCmd)
}
