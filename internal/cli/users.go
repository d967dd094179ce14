package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/safad/worklog/internal/core/domain"
)

type userForm struct {
	Username   string `flag:"username" validate:"omitempty,max=64,nospace"`
	Name       string `flag:"name" validate:"omitempty,max=100"`
	Department string `flag:"department" validate:"max=64"`
	Role       string `flag:"role" validate:"omitempty,oneof=admin employee"`
	Avatar     string `flag:"avatar" validate:"omitempty,max=256"`
}

func (c *cli) usersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(
		c.usersListCommand(),
		c.usersUpdateCommand(),
		c.usersPasswdCommand(),
		c.usersDeleteCommand(),
	)
	return cmd
}

func (c *cli) usersListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every account",
		Args:  usageArgs(cobra.NoArgs),
		RunE: c.requireRole(func(cmd *cobra.Command, _ []string, _ *domain.User) error {
			return printUsers(cmd.OutOrStdout(), c.app.Directory.AllUsers())
		}, domain.RoleAdmin),
	}
}

func (c *cli) usersUpdateCommand() *cobra.Command {
	var form userForm
	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Edit a profile; defaults to your own",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: c.requireRole(func(cmd *cobra.Command, args []string, me *domain.User) error {
			id := me.ID
			if len(args) == 1 {
				id = args[0]
			}
			if !canManageUser(me, id) {
				return domain.ErrForbidden
			}
			if err := c.validate.Validate(&form); err != nil {
				return err
			}

			u, err := c.app.Directory.UserByID(id)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("username") {
				u.Username = form.Username
			}
			if flags.Changed("name") {
				u.Name = form.Name
			}
			if flags.Changed("department") {
				u.Department = form.Department
			}
			if flags.Changed("avatar") {
				u.AvatarURL = form.Avatar
			}
			if flags.Changed("role") {
				if !me.IsAdmin() {
					return domain.ErrForbidden
				}
				u.Role = domain.Role(form.Role)
			}

			updated, err := c.app.Directory.UpdateUser(cmd.Context(), *u)
			if err != nil {
				return err
			}
			return printUsers(cmd.OutOrStdout(), []domain.User{*updated})
		}),
	}
	f := cmd.Flags()
	f.StringVar(&form.Username, "username", "", "new login name")
	f.StringVar(&form.Name, "name", "", "new display name")
	f.StringVar(&form.Department, "department", "", "new department; empty clears it")
	f.StringVar(&form.Role, "role", "", "admin or employee (admins only)")
	f.StringVar(&form.Avatar, "avatar", "", "avatar text or URL")
	return cmd
}

func (c *cli) usersPasswdCommand() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "passwd [id]",
		Short: "Change a password; defaults to your own",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: c.requireRole(func(cmd *cobra.Command, args []string, me *domain.User) error {
			id := me.ID
			if len(args) == 1 {
				id = args[0]
			}
			if !canManageUser(me, id) {
				return domain.ErrForbidden
			}
			pw, err := readSecret(cmd, password, "New password: ")
			if err != nil {
				return err
			}
			if err := c.app.Directory.SetPassword(cmd.Context(), id, pw); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Password updated")
			return nil
		}),
	}
	cmd.Flags().StringVar(&password, "password", "", "new password; read from stdin when omitted")
	return cmd
}

func (c *cli) usersDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account; its records are kept",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: c.requireRole(func(cmd *cobra.Command, args []string, _ *domain.User) error {
			if err := c.app.Directory.DeleteUser(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %s\n", args[0])
			return nil
		}, domain.RoleAdmin),
	}
}
