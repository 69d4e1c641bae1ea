package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lexdash/internal/export/sheets"
	"lexdash/internal/ports"
	"lexdash/internal/services"
)

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export practice data",
	}

	var (
		user   string
		months int
	)
	revenue := &cobra.Command{
		Use:   "revenue",
		Short: "Append the monthly revenue of a user to the configured Google Sheet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(user) == "" {
				return errors.New("--user is required")
			}
			if !a.cfg.ExportEnabled() {
				return errors.New("revenue export is not configured: set GOOGLE_SPREADSHEET_ID")
			}
			if months <= 0 {
				months = a.cfg.RevenueMonths
			}

			ctx := cmd.Context()
			res, err := a.openBackend(ctx)
			if err != nil {
				return err
			}
			defer a.closeBackend(res)

			invoices, err := res.Practice.ListInvoices(ctx, user, ports.InvoiceFilter{})
			if err != nil {
				return fmt.Errorf("list invoices: %w", err)
			}
			buckets := services.RevenueByMonth(invoices, months, res.Practice.Today())

			exp, err := sheets.New(ctx, sheets.Config{
				SpreadsheetID:      a.cfg.GoogleSpreadsheetID,
				SheetName:          a.cfg.GoogleSheetName,
				ServiceAccountFile: a.cfg.GoogleServiceAccountFile,
				ServiceAccountJSON: a.cfg.GoogleServiceAccountJSON,
			}, a.logger)
			if err != nil {
				return err
			}
			n, err := exp.ExportRevenue(ctx, user, buckets)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d month(s) to %s\n", n, a.cfg.GoogleSheetName)
			return nil
		},
	}
	revenue.Flags().StringVar(&user, "user", "", "user whose paid invoices are exported")
	revenue.Flags().IntVar(&months, "months", 0, "number of months, newest first (default: REVENUE_MONTHS)")

	cmd.AddCommand(revenue)
	return cmd
}
