package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"claimsportal/adapters/api"
	"claimsportal/domain/claim"
	"claimsportal/internal/views"

	"github.com/spf13/cobra"
)

func (c *cli) newClaimsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claims",
		Short: "List, inspect and delete claims",
	}
	cmd.AddCommand(c.newClaimsListCmd(), c.newClaimsShowCmd(), c.newClaimsDeleteCmd())
	return cmd
}

func (c *cli) newClaimsListCmd() *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your claims, or your company's incoming claims",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			claims, err := a.listClaims(cmd)
			if err != nil {
				return err
			}

			s := views.DashboardStats(claims)
			fmt.Fprintf(a.out, "📊 %d claims · %d approved · %d rejected · %d pending · avg damage %d%%\n\n",
				s.Total, s.Approved, s.Rejected, s.Pending, s.AvgDamage)

			rows := views.FilterClaims(claims, query)
			if len(rows) == 0 {
				fmt.Fprintln(a.out, "No claims found.")
				return nil
			}
			return printClaimsTable(a, rows)
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Filter by id, policy, registration or status")
	return cmd
}

func printClaimsTable(a *app, rows []claim.Claim) error {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tVEHICLE\tREGISTRATION\tPOLICY\tSTATUS\tDAMAGE")
	for _, cl := range rows {
		damage := "N/A"
		if cl.AIAnalysis != nil {
			damage = fmt.Sprintf("%.0f%%", cl.AIAnalysis.DamagePercent)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			cl.ID, views.FormatDate(cl), cl.VehicleDetails.VehicleType, cl.VehicleDetails.RegistrationNumber,
			cl.PolicyNumber, cl.Status.Label(), damage)
	}
	return tw.Flush()
}

func (c *cli) newClaimsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [claim-id]",
		Short: "Show one claim with its AI assessment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			if _, err := a.session.RequireIdentity(); err != nil {
				return err
			}
			cl, err := a.backend.GetClaim(cmd.Context(), claim.ID(args[0]))
			if err != nil {
				return fmt.Errorf("failed to load claim: %s", api.Message(err))
			}
			printClaim(a, cl)
			return nil
		},
	}
}

func printClaim(a *app, cl *claim.Claim) {
	fmt.Fprintf(a.out, "Claim #%s  [%s]\n", cl.ID, cl.Status.Label())
	fmt.Fprintf(a.out, "Created:   %s\n", views.FormatDateTime(*cl))
	fmt.Fprintf(a.out, "Incident:  %s %s, %s, %s\n", cl.IncidentDetails.AccidentDate, cl.IncidentDetails.AccidentTime,
		cl.IncidentDetails.LocationType, cl.AccidentSpecifics.AccidentType)
	fmt.Fprintf(a.out, "Vehicle:   %s %s\n", cl.VehicleDetails.VehicleType, cl.VehicleDetails.RegistrationNumber)
	fmt.Fprintf(a.out, "Insurer:   %s\n", views.InsurerLabel(cl.VehicleDetails.InsurerName))
	fmt.Fprintf(a.out, "Policy:    %s\n", cl.PolicyNumber)

	an := cl.AIAnalysis
	if an == nil {
		fmt.Fprintln(a.out, "\nNo AI assessment yet.")
		return
	}
	fmt.Fprintf(a.out, "\n🤖 AI ASSESSMENT\n")
	fmt.Fprintf(a.out, "Damage: %.0f%%  Confidence: %s  Severity: %s  Claimability: %s\n",
		an.DamagePercent, views.Percent(an.Confidence), orNA(an.Severity), orNA(an.Claimability))

	ex := views.ParseExplanation(views.ExplanationText(an))
	fmt.Fprintf(a.out, "\n%s\n", ex.Summary)
	if v := an.VisualAnalysis; v != "" || ex.VisualAnalysis != "" {
		if v == "" {
			v = ex.VisualAnalysis
		}
		fmt.Fprintf(a.out, "\nVisual analysis: %s\n", v)
	}
	evidence := []string(an.EvidenceList)
	if len(evidence) == 0 {
		evidence = ex.Evidence
	}
	if len(evidence) > 0 {
		fmt.Fprintln(a.out, "\nEvidence used:")
		for _, e := range evidence {
			fmt.Fprintf(a.out, "  • %s\n", e)
		}
	}
	for _, m := range an.RAGMatches {
		fmt.Fprintf(a.out, "\n📄 %s (%s p.%d, %s)\n", m.Text, m.Source, m.Page, views.Percent(m.Score))
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func (c *cli) newClaimsDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete [claim-id]",
		Short: "Delete a claim on the backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			if _, err := a.session.RequireIdentity(); err != nil {
				return err
			}
			if !yes {
				ok, err := a.confirm("Are you sure you want to delete this claim?")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(a.out, "Nothing deleted.")
					return nil
				}
			}

			id := claim.ID(args[0])
			if _, err := views.DeleteClaim(cmd.Context(), a.backend, nil, id); err != nil {
				a.log.Warn("delete of claim %s failed: %v", id, err)
				return views.ErrDeleteFailed
			}
			fmt.Fprintf(a.out, "🗑️  Claim %s deleted\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func (c *cli) newRAGCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rag [query...]",
		Short: "Search policy wording",
		Long: `Search the policy clause index.

Example: claimsctl rag is flood damage covered`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			if _, err := a.session.RequireIdentity(); err != nil {
				return err
			}
			matches, err := a.backend.RAGQuery(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("search failed: %s", api.Message(err))
			}
			if len(matches) == 0 {
				fmt.Fprintln(a.out, "No matching clauses.")
				return nil
			}
			for i, m := range matches {
				fmt.Fprintf(a.out, "%d. %s\n   %s p.%d · %s\n", i+1, m.Text, m.Source, m.Page, views.Percent(m.Score))
			}
			return nil
		},
	}
}
