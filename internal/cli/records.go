package cli

import (
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/safad/worklog/internal/core/dashboard"
	"github.com/safad/worklog/internal/core/domain"
	"github.com/safad/worklog/internal/core/ports"
)

type recordForm struct {
	Project     string `flag:"project" validate:"required,max=200"`
	Description string `flag:"description" validate:"required,max=5000"`
}

type recordPatchForm struct {
	Project     string `flag:"project" validate:"omitempty,max=200"`
	Description string `flag:"description" validate:"omitempty,max=5000"`
}

type recordFilterForm struct {
	User       string `flag:"user"`
	Department string `flag:"department"`
	Date       string `flag:"date" validate:"omitempty,datetime=2006-01-02"`
}

func (c *cli) recordsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "records",
		Aliases: []string{"record"},
		Short:   "Log and review work records",
	}
	cmd.AddCommand(
		c.recordsAddCommand(),
		c.recordsShowCommand(),
		c.recordsUpdateCommand(),
		c.recordsDeleteCommand(),
		c.recordsListCommand(),
	)
	return cmd
}

func (c *cli) recordsAddCommand() *cobra.Command {
	var (
		form    recordForm
		attachs []string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Log a work record for today",
		Args:  usageArgs(cobra.NoArgs),
		RunE: c.requireRole(func(cmd *cobra.Command, _ []string, me *domain.User) error {
			if err := c.validate.Validate(&form); err != nil {
				return err
			}
			files, err := parseAttachments(attachs)
			if err != nil {
				return err
			}

			r, err := c.app.Ledger.AddRecord(cmd.Context(), ports.NewRecord{
				UserID:      me.ID,
				UserName:    me.Name,
				ProjectName: form.Project,
				Description: form.Description,
				Attachments: files,
				Department:  me.RecordDepartment(),
			})
			if err != nil {
				return err
			}
			return printRecord(cmd.OutOrStdout(), *r, c.app.Location())
		}),
	}
	f := cmd.Flags()
	f.StringVar(&form.Project, "project", "", "project name")
	f.StringVar(&form.Description, "description", "", "what was done")
	f.StringArrayVar(&attachs, "attach", nil, "attachment as NAME=URL; repeatable")
	return cmd
}

func (c *cli) recordsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one record",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: c.requireRole(func(cmd *cobra.Command, args []string, me *domain.User) error {
			r, err := c.app.Ledger.RecordByID(args[0])
			if err != nil {
				return err
			}
			if !canManageRecord(me, r) {
				return domain.ErrForbidden
			}
			return printRecord(cmd.OutOrStdout(), *r, c.app.Location())
		}),
	}
}

func (c *cli) recordsUpdateCommand() *cobra.Command {
	var (
		form       recordPatchForm
		attachs    []string
		clearFiles bool
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit the project, description or attachments of a record",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: c.requireRole(func(cmd *cobra.Command, args []string, me *domain.User) error {
			r, err := c.app.Ledger.RecordByID(args[0])
			if err != nil {
				return err
			}
			if !canManageRecord(me, r) {
				return domain.ErrForbidden
			}
			if err := c.validate.Validate(&form); err != nil {
				return err
			}

			var patch ports.RecordPatch
			flags := cmd.Flags()
			if flags.Changed("project") {
				patch.ProjectName = &form.Project
			}
			if flags.Changed("description") {
				patch.Description = &form.Description
			}
			switch {
			case clearFiles && len(attachs) > 0:
				return &usageError{err: errors.New("--attach and --clear-attachments are mutually exclusive")}
			case clearFiles:
				none := []domain.Attachment{}
				patch.Attachments = &none
			case len(attachs) > 0:
				files, err := parseAttachments(attachs)
				if err != nil {
					return err
				}
				patch.Attachments = &files
			}

			updated, err := c.app.Ledger.UpdateRecord(cmd.Context(), r.ID, patch)
			if err != nil {
				return err
			}
			return printRecord(cmd.OutOrStdout(), *updated, c.app.Location())
		}),
	}
	f := cmd.Flags()
	f.StringVar(&form.Project, "project", "", "new project name")
	f.StringVar(&form.Description, "description", "", "new description")
	f.StringArrayVar(&attachs, "attach", nil, "replace attachments with NAME=URL; repeatable")
	f.BoolVar(&clearFiles, "clear-attachments", false, "remove every attachment")
	return cmd
}

func (c *cli) recordsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a record",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: c.requireRole(func(cmd *cobra.Command, args []string, me *domain.User) error {
			r, err := c.app.Ledger.RecordByID(args[0])
			switch {
			case err == nil:
				if !canManageRecord(me, r) {
					return domain.ErrForbidden
				}
			case !me.IsAdmin():
				return err
			}
			if err := c.app.Ledger.DeleteRecord(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted record %s\n", args[0])
			return nil
		}),
	}
}

func (c *cli) recordsListCommand() *cobra.Command {
	var (
		form    recordFilterForm
		today   bool
		grouped bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records, newest first; employees see their own",
		Args:  usageArgs(cobra.NoArgs),
		RunE: c.requireRole(func(cmd *cobra.Command, _ []string, me *domain.User) error {
			if err := c.validate.Validate(&form); err != nil {
				return err
			}
			if today {
				form.Date = domain.DayKey(c.app.Now(), c.app.Location())
			}
			records, err := c.visibleRecords(me, form)
			if err != nil {
				return err
			}

			loc := c.app.Location()
			if grouped {
				return printGroups(cmd.OutOrStdout(), dashboard.GroupByDate(records, loc), loc)
			}
			return printRecords(cmd.OutOrStdout(), records, loc)
		}),
	}
	f := cmd.Flags()
	f.StringVar(&form.User, "user", "", "only records of this user id (admins only)")
	f.StringVar(&form.Department, "department", "", "only records of this department; \"all\" keeps every department")
	f.StringVar(&form.Date, "date", "", "only records of this day, YYYY-MM-DD")
	f.BoolVar(&today, "today", false, "only today's records")
	f.BoolVar(&grouped, "by-day", false, "group the output by day")
	return cmd
}

// visibleRecords applies the role scope and then the filters in form.
func (c *cli) visibleRecords(me *domain.User, form recordFilterForm) ([]domain.Record, error) {
	var records []domain.Record
	switch {
	case !me.IsAdmin():
		if form.User != "" && form.User != me.ID {
			return nil, domain.ErrForbidden
		}
		records = c.app.Ledger.EmployeeRecords(me.ID)
	case form.User != "":
		records = c.app.Ledger.EmployeeRecords(form.User)
	case form.Department != "" && form.Department != "all":
		records = c.app.Ledger.RecordsByDepartment(form.Department)
	case form.Date != "":
		records = c.app.Ledger.RecordsOn(form.Date)
	default:
		records = c.app.Ledger.Records()
	}

	records = dashboard.FilterByDepartment(records, form.Department)
	records = dashboard.FilterByDay(records, form.Date, c.app.Location())
	return records, nil
}

// parseAttachments reads NAME=URL pairs. The MIME type is guessed from the
// name's extension.
func parseAttachments(values []string) ([]domain.Attachment, error) {
	files := make([]domain.Attachment, 0, len(values))
	for _, v := range values {
		name, url, ok := strings.Cut(v, "=")
		name, url = strings.TrimSpace(name), strings.TrimSpace(url)
		if !ok || name == "" || url == "" {
			return nil, fmt.Errorf("%w: --attach %q must be NAME=URL", domain.ErrInvalidInput, v)
		}
		files = append(files, domain.Attachment{
			Name:     name,
			URL:      url,
			MimeType: mime.TypeByExtension(strings.ToLower(filepath.Ext(name))),
		})
	}
	return files, nil
}
