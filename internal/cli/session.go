package cli

import (
	"github.com/spf13/cobra"

	"github.com/safad/worklog/internal/core/domain"
)

// sessionRunE is a command body that receives the logged-in user.
type sessionRunE func(cmd *cobra.Command, args []string, me *domain.User) error

// requireRole runs fn only for a logged-in user holding one of roles. With
// no roles any logged-in user passes.
func (c *cli) requireRole(fn sessionRunE, roles ...domain.Role) func(*cobra.Command, []string) error {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(cmd *cobra.Command, args []string) error {
		me, ok := c.app.Directory.Current()
		if !ok {
			return domain.ErrNotAuthenticated
		}
		if len(allowed) > 0 {
			if _, ok := allowed[me.Role]; !ok {
				return domain.ErrForbidden
			}
		}
		return fn(cmd, args, me)
	}
}

// canManageRecord reports whether me may edit or delete r: its owner or
// any admin.
func canManageRecord(me *domain.User, r *domain.Record) bool {
	return me.IsAdmin() || r.UserID == me.ID
}

// canManageUser reports whether me may edit the profile of id.
func canManageUser(me *domain.User, id string) bool {
	return me.IsAdmin() || me.ID == id
}
