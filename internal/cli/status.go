package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/safad/worklog/internal/core/ports"
)

const pingTimeout = 3 * time.Second

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type statusReport struct {
	Status  string           `json:"status"`
	Store   string           `json:"store"`
	Backend dependencyStatus `json:"backend"`
	Users   int              `json:"users"`
	Records int              `json:"records"`
	Session string           `json:"session,omitempty"`
}

// statusCommand reports whether the configured store answers and how much
// state it holds. It needs no session.
func (c *cli) statusCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check the store and show what it holds",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			rep := c.status(cmd.Context())

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				if err := enc.Encode(rep); err != nil {
					return err
				}
			} else {
				tw := newTable(w)
				fmt.Fprintf(tw, "Status:\t%s\n", rep.Status)
				fmt.Fprintf(tw, "Store:\t%s (%s)\n", rep.Store, rep.Backend.Status)
				if rep.Backend.Error != "" {
					fmt.Fprintf(tw, "Error:\t%s\n", rep.Backend.Error)
				}
				fmt.Fprintf(tw, "Users:\t%d\n", rep.Users)
				fmt.Fprintf(tw, "Records:\t%d\n", rep.Records)
				fmt.Fprintf(tw, "Session:\t%s\n", orDash(rep.Session))
				if err := tw.Flush(); err != nil {
					return err
				}
			}

			if rep.Status != "ok" {
				return errUnhealthy
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func (c *cli) status(ctx context.Context) statusReport {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	rep := statusReport{
		Status:  "ok",
		Store:   c.cfg.Store,
		Backend: dependencyStatus{Status: "ok"},
		Users:   len(c.app.Directory.AllUsers()),
		Records: len(c.app.Ledger.Records()),
	}
	if p, ok := c.app.Store().(ports.Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			rep.Status = "degraded"
			rep.Backend = dependencyStatus{Status: "unhealthy", Error: err.Error()}
		}
	}
	if me, ok := c.app.Directory.Current(); ok {
		rep.Session = me.Username
	}
	return rep
}
