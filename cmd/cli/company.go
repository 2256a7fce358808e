package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"claimsportal/internal/errors"
	"claimsportal/internal/views"

	"github.com/spf13/cobra"
)

func (c *cli) newCustomersCmd() *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "customers",
		Short: "List the policyholders behind your company's claims",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			if _, err := a.requireCompany(); err != nil {
				return err
			}
			claims, err := a.listClaims(cmd)
			if err != nil {
				return err
			}

			roster := views.BuildRoster(claims)
			fmt.Fprintf(a.out, "👥 %d customers\n", len(roster))
			for _, cust := range views.FilterRoster(roster, query) {
				fmt.Fprintf(a.out, "\n%s <%s> (ID %s)\n", cust.Name, cust.Email, cust.ID)
				fmt.Fprintf(a.out, "  %d claims, %d active\n", cust.TotalClaims, cust.ActiveClaims)
				fmt.Fprintf(a.out, "  Policies: %s\n", strings.Join(cust.Policies, ", "))
				fmt.Fprintf(a.out, "  Vehicles: %s\n", strings.Join(cust.Vehicles, ", "))
				for _, ref := range cust.Claims {
					fmt.Fprintf(a.out, "  - %s %s %s\n", views.ShortID(ref.ID), ref.Vehicle, ref.Status.Label())
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Filter by customer name or id")
	return cmd
}

func (c *cli) newAnalyticsCmd() *cobra.Command {
	var benchmarks bool

	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show portfolio analytics or market benchmarks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			id, err := a.requireCompany()
			if err != nil {
				return err
			}

			if benchmarks {
				b, err := views.FetchBenchmarks(cmd.Context(), a.backend)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, "🏁 STRICTNESS LEADERBOARD")
				tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "INSURER\tSTRICTNESS\tEXCLUSIONS\tRISK")
				for _, r := range b.Ranking {
					fmt.Fprintf(tw, "%s\t%.1f\t%d/%d\t%s\n", views.InsurerLabel(r.Insurer), r.StrictnessScore*100,
						r.ExclusionCount, r.TotalClauses, views.RiskBand(r.RiskScore))
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				fmt.Fprintln(a.out, "\n🔗 MOST SIMILAR POLICIES")
				for _, s := range b.Similarity {
					fmt.Fprintf(a.out, "%s ↔ %s  %s\n", views.InsurerLabel(s.InsurerA), views.InsurerLabel(s.InsurerB), views.Percent(s.SimilarityScore))
				}
				return nil
			}

			claims, err := a.listClaims(cmd)
			if err != nil {
				return err
			}
			valid := views.Reportables(claims)
			s := views.DashboardStats(valid)

			company := id.Company
			if company == "" {
				company = "Global"
			}
			fmt.Fprintf(a.out, "📈 Analytics for %s\n", company)
			fmt.Fprintf(a.out, "Total: %d  Approval rate: %s%%  Rejected: %d\n", s.Total, s.ApprovalRate(), s.Rejected)

			fmt.Fprintln(a.out, "\nStatus distribution:")
			for _, sl := range views.StatusDistribution(valid) {
				fmt.Fprintf(a.out, "  %-16s %d\n", sl.Name, sl.Value)
			}
			fmt.Fprintln(a.out, "\nVehicle types:")
			for _, sl := range views.VehicleDistribution(valid) {
				fmt.Fprintf(a.out, "  %-16s %d\n", sl.Name, sl.Value)
			}
			fmt.Fprintln(a.out, "\nMonthly trend:")
			for _, m := range views.MonthlyTrend(valid) {
				fmt.Fprintf(a.out, "  %-16s %d\n", m.Label, m.Claims)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&benchmarks, "benchmarks", false, "Show market benchmarks instead of your own claims")
	return cmd
}

func (c *cli) newExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write your company's claims to an .xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.app
			id, err := a.requireCompany()
			if err != nil {
				return err
			}
			claims, err := a.listClaims(cmd)
			if err != nil {
				return err
			}

			if out == "" {
				out = fmt.Sprintf("claims-%s-%s.xlsx", id.Company, a.clock.Now().Format("20060102"))
			}
			f, err := os.Create(out)
			if err != nil {
				return errors.Wrapf(err, "failed to create %s", out)
			}
			if err := views.ExportClaims(f, claims); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return errors.Wrapf(err, "failed to write %s", out)
			}
			fmt.Fprintf(a.out, "💾 %d claims written to %s\n", len(claims), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default claims-<company>-<date>.xlsx)")
	return cmd
}
