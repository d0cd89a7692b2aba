package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"kouri/internal/preflight"
)

var errPreflightFailed = errors.New("one or more checks failed")

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, credentials, and endpoint readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			opCtx := operationContext(cmd, "doctor")
			cfg := ctx.configValue()
			results := preflight.RunAll(opCtx, ctx.store, cfg, ctx.loadErr)

			if ctx.flags.json {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				r := newRenderer(cmd.OutOrStdout(), cfg.Theme)
				out := cmd.OutOrStdout()
				for _, line := range r.sectionHeader("kouri doctor") {
					fmt.Fprintln(out, line)
				}
				for _, result := range results {
					kind := statusOK
					if !result.Passed {
						kind = statusError
					}
					fmt.Fprintln(out, r.statusLine(result.Name, kind, result.Detail))
				}
			}
			if !preflight.AllPassed(results) {
				return errPreflightFailed
			}
			return nil
		},
	}
}
