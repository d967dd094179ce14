package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/safad/worklog/internal/core/domain"
	"github.com/safad/worklog/internal/core/ports"
)

type registerForm struct {
	Username   string `flag:"username" validate:"required,max=64,nospace"`
	Password   string `flag:"password" validate:"required"`
	Name       string `flag:"name" validate:"required,max=100"`
	Department string `flag:"department" validate:"max=64"`
}

type loginForm struct {
	Username string `flag:"username" validate:"required"`
	Password string `flag:"password" validate:"required"`
}

func (c *cli) registerCommand() *cobra.Command {
	var form registerForm
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an employee account",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := readSecret(cmd, form.Password, "Password: ")
			if err != nil {
				return err
			}
			form.Password = pw
			if err := c.validate.Validate(&form); err != nil {
				return err
			}

			u, err := c.app.Directory.Register(cmd.Context(), ports.RegisterInput{
				Username:   form.Username,
				Password:   form.Password,
				Name:       form.Name,
				Department: form.Department,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (%s). Log in with: worklog login --username %s\n", u.Name, u.ID, u.Username)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&form.Username, "username", "", "login name, unique regardless of case")
	f.StringVar(&form.Password, "password", "", "password; read from stdin when omitted")
	f.StringVar(&form.Name, "name", "", "display name")
	f.StringVar(&form.Department, "department", "", "department, stored lowercase")
	return cmd
}

func (c *cli) loginCommand() *cobra.Command {
	var form loginForm
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Start a session",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := readSecret(cmd, form.Password, "Password: ")
			if err != nil {
				return err
			}
			form.Password = pw
			if err := c.validate.Validate(&form); err != nil {
				return err
			}

			u, err := c.app.Directory.Login(cmd.Context(), form.Username, form.Password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s (%s)\n", u.Name, u.Role)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&form.Username, "username", "", "login name")
	f.StringVar(&form.Password, "password", "", "password; read from stdin when omitted")
	return cmd
}

func (c *cli) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Directory.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func (c *cli) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  usageArgs(cobra.NoArgs),
		RunE: c.requireRole(func(cmd *cobra.Command, _ []string, me *domain.User) error {
			return printUsers(cmd.OutOrStdout(), []domain.User{*me})
		}),
	}
}

// readSecret returns value, or the first line of the command's input when
// value is empty.
func readSecret(cmd *cobra.Command, value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
