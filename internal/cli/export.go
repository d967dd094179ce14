package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/safad/worklog/internal/core/dashboard"
	"github.com/safad/worklog/internal/core/domain"
	"github.com/safad/worklog/internal/infrastructure/export"
)

func (c *cli) exportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write records to a spreadsheet or a printable report",
	}
	cmd.AddCommand(c.exportXLSXCommand(), c.exportPDFCommand())
	return cmd
}

func (c *cli) exportXLSXCommand() *cobra.Command {
	var (
		form     recordFilterForm
		recordID string
		out      string
	)
	cmd := &cobra.Command{
		Use:   "xlsx",
		Short: "Export one record or a filtered list to an .xlsx file",
		Args:  usageArgs(cobra.NoArgs),
		RunE: c.requireRole(func(cmd *cobra.Command, _ []string, me *domain.User) error {
			loc := c.app.Location()
			var records []domain.Record
			if recordID != "" {
				r, err := c.app.Ledger.RecordByID(recordID)
				if err != nil {
					return err
				}
				if !canManageRecord(me, r) {
					return domain.ErrForbidden
				}
				records = []domain.Record{*r}
				if out == "" {
					out = export.RecordFileName(*r, loc)
				}
			} else {
				if err := c.validate.Validate(&form); err != nil {
					return err
				}
				var err error
				if records, err = c.visibleRecords(me, form); err != nil {
					return err
				}
				if out == "" {
					out = fmt.Sprintf("Records_%s.xlsx", domain.DayKey(c.app.Now(), loc))
				}
			}

			var buf bytes.Buffer
			if err := export.WriteXLSX(&buf, records, loc); err != nil {
				return err
			}
			return c.writeExport(cmd, out, buf.Bytes(), len(records))
		}),
	}
	f := cmd.Flags()
	f.StringVar(&recordID, "record", "", "export a single record")
	f.StringVar(&form.User, "user", "", "only records of this user id (admins only)")
	f.StringVar(&form.Department, "department", "", "only records of this department")
	f.StringVar(&form.Date, "date", "", "only records of this day, YYYY-MM-DD")
	f.StringVarP(&out, "out", "o", "", "output file")
	return cmd
}

func (c *cli) exportPDFCommand() *cobra.Command {
	var (
		form recordFilterForm
		out  string
	)
	cmd := &cobra.Command{
		Use:   "pdf",
		Short: "Print records grouped by day to a PDF report",
		Args:  usageArgs(cobra.NoArgs),
		RunE: c.requireRole(func(cmd *cobra.Command, _ []string, me *domain.User) error {
			if err := c.validate.Validate(&form); err != nil {
				return err
			}
			records, err := c.visibleRecords(me, form)
			if err != nil {
				return err
			}

			loc := c.app.Location()
			now := c.app.Now()
			rep := export.Report{
				Title:       "Work records",
				GeneratedBy: me.Name,
				GeneratedAt: now,
				Location:    loc,
				Records:     records,
			}
			if me.IsAdmin() {
				s := dashboard.AdminSummary(records, c.app.Directory.AllUsers(), now, loc)
				rep.Summary = &s
			}
			if out == "" {
				out = fmt.Sprintf("Report_%s.pdf", domain.DayKey(now, loc))
			}

			data, err := export.PDF(rep)
			if err != nil {
				return err
			}
			return c.writeExport(cmd, out, data, len(records))
		}),
	}
	f := cmd.Flags()
	f.StringVar(&form.User, "user", "", "only records of this user id (admins only)")
	f.StringVar(&form.Department, "department", "", "only records of this department")
	f.StringVar(&form.Date, "date", "", "only records of this day, YYYY-MM-DD")
	f.StringVarP(&out, "out", "o", "", "output file")
	return cmd
}

func (c *cli) writeExport(cmd *cobra.Command, path string, data []byte, n int) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	c.deps.Log.Debug().Str("path", path).Int("records", n).Msg("export written")
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d record(s) to %s\n", n, path)
	return nil
}
