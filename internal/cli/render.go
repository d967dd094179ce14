package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/safad/worklog/internal/core/dashboard"
	"github.com/safad/worklog/internal/core/domain"
	"github.com/safad/worklog/internal/infrastructure/export"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func printUsers(w io.Writer, users []domain.User) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tUSERNAME\tNAME\tROLE\tDEPARTMENT\tAVATAR")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			u.ID, u.Username, u.Name, u.Role, orDash(u.Department), u.AvatarURL)
	}
	return tw.Flush()
}

func printRecords(w io.Writer, records []domain.Record, loc *time.Location) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No records found")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tDATE\tTIME\tEMPLOYEE\tDEPARTMENT\tPROJECT\tFILES")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			r.ID, r.Day(loc), export.TimeRange(r), r.UserName, r.Department, r.ProjectName, len(r.Attachments))
	}
	return tw.Flush()
}

func printGroups(w io.Writer, groups []dashboard.DayGroup, loc *time.Location) error {
	if len(groups) == 0 {
		_, err := fmt.Fprintln(w, "No records found")
		return err
	}
	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "== %s (%d) ==\n", g.Day, len(g.Records))
		if err := printRecords(w, g.Records, loc); err != nil {
			return err
		}
	}
	return nil
}

func printRecord(w io.Writer, r domain.Record, loc *time.Location) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "ID:\t%s\n", r.ID)
	fmt.Fprintf(tw, "Project:\t%s\n", r.ProjectName)
	fmt.Fprintf(tw, "Employee:\t%s (%s)\n", r.UserName, r.UserID)
	fmt.Fprintf(tw, "Department:\t%s\n", r.Department)
	fmt.Fprintf(tw, "Date:\t%s\n", r.Date.In(loc).Format("January 2, 2006"))
	fmt.Fprintf(tw, "Time:\t%s\n", export.TimeRange(r))
	fmt.Fprintf(tw, "Description:\t%s\n", r.Description)
	for _, a := range r.Attachments {
		fmt.Fprintf(tw, "Attachment:\t%s\t%s\t%s\n", a.Name, a.URL, orDash(a.MimeType))
	}
	return tw.Flush()
}

func userNames(users []domain.User) string {
	if len(users) == 0 {
		return "-"
	}
	names := make([]string, len(users))
	for i, u := range users {
		names[i] = u.Name
	}
	return strings.Join(names, ", ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
