package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/safad/worklog/internal/core/dashboard"
	"github.com/safad/worklog/internal/core/domain"
)

func (c *cli) dashboardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show today's overview for the logged-in user",
		Args:  usageArgs(cobra.NoArgs),
		RunE: c.requireRole(func(cmd *cobra.Command, _ []string, me *domain.User) error {
			if me.IsAdmin() {
				return c.adminDashboard(cmd.OutOrStdout())
			}
			return c.employeeDashboard(cmd.OutOrStdout(), me)
		}),
	}
}

func (c *cli) adminDashboard(w io.Writer) error {
	loc := c.app.Location()
	now := c.app.Now()
	s := dashboard.AdminSummary(c.app.Ledger.Records(), c.app.Directory.AllUsers(), now, loc)

	tw := newTable(w)
	fmt.Fprintf(tw, "Date:\t%s\n", domain.DayKey(now, loc))
	fmt.Fprintf(tw, "Total records:\t%d\n", s.TotalRecords)
	fmt.Fprintf(tw, "Total users:\t%d\n", s.TotalUsers)
	fmt.Fprintf(tw, "Departments:\t%d\n", s.Departments)
	fmt.Fprintf(tw, "Logged today:\t%d\n", s.Active)
	fmt.Fprintf(tw, "Not logged today:\t%d\n", s.Inactive)
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(s.PerDepartment) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	tw = newTable(w)
	fmt.Fprintln(tw, "DEPARTMENT\tRECORDS")
	for _, d := range s.PerDepartment {
		fmt.Fprintf(tw, "%s\t%d\n", d.Department, d.Count)
	}
	return tw.Flush()
}

func (c *cli) employeeDashboard(w io.Writer, me *domain.User) error {
	loc := c.app.Location()
	s := dashboard.EmployeeSummary(c.app.Ledger.Records(), me.ID, c.app.Now(), loc)

	tw := newTable(w)
	fmt.Fprintf(tw, "Name:\t%s\n", me.Name)
	fmt.Fprintf(tw, "Department:\t%s\n", me.RecordDepartment())
	fmt.Fprintf(tw, "Total records:\t%d\n", s.Total)
	status := "not logged yet"
	if s.LoggedToday {
		status = fmt.Sprintf("logged (%d)", len(s.Today))
	}
	fmt.Fprintf(tw, "Today:\t%s\n", status)
	if err := tw.Flush(); err != nil {
		return err
	}

	if !s.LoggedToday {
		return nil
	}
	fmt.Fprintln(w)
	return printRecords(w, c.app.Ledger.EmployeeRecordsToday(me.ID), loc)
}

func (c *cli) attendanceCommand() *cobra.Command {
	var (
		day        string
		department string
	)
	cmd := &cobra.Command{
		Use:   "attendance",
		Short: "Show who has and has not logged a record on a day",
		Args:  usageArgs(cobra.NoArgs),
		RunE: c.requireRole(func(cmd *cobra.Command, _ []string, _ *domain.User) error {
			form := recordFilterForm{Date: day, Department: department}
			if err := c.validate.Validate(&form); err != nil {
				return err
			}

			loc := c.app.Location()
			today := domain.DayKey(c.app.Now(), loc)
			var view dashboard.AttendanceView
			if form.Date == "" || form.Date == today {
				view = dashboard.AttendanceView{
					Day:       today,
					Logged:    c.app.Ledger.UsersLoggedToday(),
					NotLogged: c.app.Ledger.UsersNotLoggedToday(),
				}
			} else {
				view = dashboard.Attendance(c.app.Ledger.Records(), c.app.Directory.AllUsers(), form.Date, loc)
			}
			if form.Department != "" && form.Department != "all" {
				view.Logged = usersInDepartment(view.Logged, form.Department)
				view.NotLogged = usersInDepartment(view.NotLogged, form.Department)
			}

			w := cmd.OutOrStdout()
			tw := newTable(w)
			fmt.Fprintf(tw, "Date:\t%s\n", view.Day)
			fmt.Fprintf(tw, "Logged (%d):\t%s\n", len(view.Logged), userNames(view.Logged))
			fmt.Fprintf(tw, "Not logged (%d):\t%s\n", len(view.NotLogged), userNames(view.NotLogged))
			return tw.Flush()
		}, domain.RoleAdmin),
	}
	f := cmd.Flags()
	f.StringVar(&day, "date", "", "day to check, YYYY-MM-DD; defaults to today")
	f.StringVar(&department, "department", "", "only users of this department")
	return cmd
}

func usersInDepartment(users []domain.User, department string) []domain.User {
	out := []domain.User{}
	for _, u := range users {
		if u.RecordDepartment() == department {
			out = append(out, u)
		}
	}
	return out
}
