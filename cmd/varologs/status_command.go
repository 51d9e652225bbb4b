package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"varologs/internal/preflight"
)

type statusKind int

const (
	statusOK statusKind = iota
	statusWarn
	statusError
)

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	default:
		return ""
	}
}

func resultKind(r preflight.Result) (statusKind, string) {
	switch {
	case r.Passed:
		return statusOK, "ok"
	case r.Optional:
		return statusWarn, "warn"
	default:
		return statusError, "fail"
	}
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Run readiness checks against the configured paths and services",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)

			blocking := 0
			for _, r := range preflight.Failed(results) {
				if !r.Optional {
					blocking++
				}
			}

			if asJSON {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader("Readiness", colorize) {
					fmt.Fprintln(out, line)
				}
				rows := make([][]string, 0, len(results))
				for _, r := range results {
					kind, label := resultKind(r)
					rows = append(rows, []string{paint(label, statusKindColor(kind), colorize), r.Name, r.Detail})
				}
				fmt.Fprintln(out, renderTable([]string{"State", "Check", "Detail"}, rows))
			}
			if blocking > 0 {
				return errors.New("one or more required checks failed")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}
