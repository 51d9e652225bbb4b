package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"varologs/internal/autocomplete"
	"varologs/internal/config"
	"varologs/internal/daemonrun"
	"varologs/internal/logging"
	"varologs/internal/media"
)

func newAICommand(ctx *commandContext) *cobra.Command {
	aiCmd := &cobra.Command{
		Use:   "ai",
		Short: "AI key management and autocomplete lookups",
	}
	aiCmd.AddCommand(newAIStatusCommand(ctx))
	aiCmd.AddCommand(newAISetKeyCommand(ctx))
	aiCmd.AddCommand(newAIAutocompleteCommand(ctx))
	return aiCmd
}

func newAIStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether an AI client is configured",
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := ctx.keyManager()
			if err != nil {
				return err
			}
			cfg := ctx.config
			status := keys.Status()
			if asJSON {
				return writeJSON(cmd, map[string]any{
					"status":   status,
					"provider": cfg.AI.Provider,
					"models":   cfg.AI.Models,
				})
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("AI", colorize) {
				fmt.Fprintln(out, line)
			}
			state := paint("not configured", ansiYellow, colorize)
			if status.Configured {
				state = paint("configured", ansiGreen, colorize)
			}
			rows := [][]string{
				{"State", state},
				{"Provider", cfg.AI.Provider},
				{"Key source", string(status.Source)},
				{"Key env", status.KeyEnv},
				{"Cascade", strings.Join(cfg.AI.Models, " → ")},
				{"Schema", cfg.AI.Schema},
			}
			if status.KeyHint != "" {
				rows = append(rows, []string{"Key", status.KeyHint})
			}
			fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}

func newAISetKeyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set-key <api-key>",
		Short: "Install an AI API key and persist it to the settings file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := ctx.keyManager()
			if err != nil {
				return err
			}
			if err := keys.Configure(cmd.Context(), args[0]); err != nil {
				return err
			}
			status := keys.Status()
			fmt.Fprintf(cmd.OutOrStdout(), "AI key installed (%s); saved to %s\n", status.KeyHint, ctx.config.SettingsPath())
			return nil
		},
	}
}

func newAIAutocompleteCommand(ctx *commandContext) *cobra.Command {
	var typeFlag string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "autocomplete <query>",
		Short: "Resolve metadata for a title through the model cascade",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := media.Parse(typeFlag)
			if err != nil {
				return fmt.Errorf("%w (known: %s)", err, strings.Join(media.Names(), ", "))
			}
			keys, err := ctx.keyManager()
			if err != nil {
				return err
			}
			resolver, err := autocomplete.New(keys, daemonrun.ResolverConfig(ctx.config),
				autocomplete.WithLogger(logging.NewNop()))
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			meta, err := resolver.Resolve(cmd.Context(), autocomplete.Request{Query: query, Type: t})
			var exhausted *autocomplete.ExhaustedCascadeError
			switch {
			case errors.As(err, &exhausted):
				rows := make([][]string, 0, len(exhausted.Attempts))
				for _, a := range exhausted.Attempts {
					rows = append(rows, []string{a.Model, string(a.Stage), a.Err.Error()})
				}
				fmt.Fprintln(cmd.ErrOrStderr(), renderTable([]string{"Model", "Stage", "Error"}, rows))
				return fmt.Errorf("no model produced metadata for %q; enter it manually", query)
			case errors.Is(err, autocomplete.ErrNotConfigured):
				return fmt.Errorf("AI service not configured: export %s or run `varologs ai set-key`", ctx.config.AI.KeyEnv)
			case err != nil:
				return err
			}

			if asJSON {
				return writeJSON(cmd, meta)
			}
			rows := [][]string{
				{"Title", meta.Title},
				{"Year", deref(meta.Year)},
				{"Creator", deref(meta.Creator)},
				{"Genre", deref(meta.Genre)},
				{"Synopsis", deref(meta.Synopsis)},
			}
			extra := map[string]string{
				media.Platform.Name:    deref(meta.Platform),
				media.Developer.Name:   deref(meta.Developer),
				media.Publisher.Name:   deref(meta.Publisher),
				media.DurationMin.Name: deref(meta.DurationMin),
				media.Pages.Name:       deref(meta.Pages),
				media.Episodes.Name:    deref(meta.Episodes),
				media.Seasons.Name:     deref(meta.Seasons),
				media.ISBN.Name:        deref(meta.ISBN),
			}
			if ctx.config.AI.Schema == config.SchemaExtended {
				for _, f := range t.Fields() {
					rows = append(rows, []string{f.Name, extra[f.Name]})
				}
			}
			rows = append(rows, []string{"Model", meta.Model})
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows))
			return nil
		},
	}
	cmd.Flags().StringVarP(&typeFlag, "type", "t", "", "Media type ("+strings.Join(media.Names(), ", ")+")")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}
