package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"varologs/internal/catalog"
	"varologs/internal/media"
)

func newUsersCommand(ctx *commandContext) *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect catalog users",
	}

	var asJSON bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			users, err := store.Users(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, users)
			}
			if len(users) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No users yet")
				return nil
			}
			rows := make([][]string, 0, len(users))
			for _, u := range users {
				rows = append(rows, []string{
					strconv.FormatInt(u.ID, 10),
					u.Name,
					u.AvatarColor,
					u.CreatedAt.Local().Format("2006-01-02"),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Name", "Color", "Created"}, rows, 0))
			return nil
		},
	}
	listCmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	usersCmd.AddCommand(listCmd)
	return usersCmd
}

func newItemsCommand(ctx *commandContext) *cobra.Command {
	itemsCmd := &cobra.Command{
		Use:   "items",
		Short: "Inspect catalog items",
	}

	var typeFlag, search string
	var limit int
	var asJSON bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List items, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := catalog.ItemFilter{Search: search, Limit: limit}
			if typeFlag != "" {
				t, err := media.Parse(typeFlag)
				if err != nil {
					return err
				}
				filter.Type = t
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			items, err := store.Items(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, items)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No items match")
				return nil
			}
			rows := make([][]string, 0, len(items))
			for _, it := range items {
				rating := "-"
				if it.AvgRating != nil {
					rating = strconv.FormatFloat(*it.AvgRating, 'f', 1, 64)
				}
				rows = append(rows, []string{
					strconv.FormatInt(it.ID, 10),
					ctx.typeLabel(it.Type),
					it.Title,
					deref(it.Year),
					deref(it.Creator),
					rating,
					strconv.Itoa(it.ReviewCount),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Type", "Title", "Year", "Creator", "Rating", "Reviews"}, rows, 0, 3, 5, 6))
			return nil
		},
	}
	listCmd.Flags().StringVarP(&typeFlag, "type", "t", "", "Filter by media type")
	listCmd.Flags().StringVarP(&search, "search", "s", "", "Filter by title or creator")
	listCmd.Flags().IntVarP(&limit, "limit", "n", catalog.DefaultItemLimit, "Maximum rows")
	listCmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	itemsCmd.AddCommand(listCmd)
	return itemsCmd
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var userID int64
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			var user *int64
			if userID > 0 {
				user = &userID
			}
			stats, err := store.Stats(cmd.Context(), user)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, stats)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Catalog", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintf(out, "Items: %d\nUsers: %d\n", stats.TotalItems, stats.TotalUsers)
			if len(stats.ItemsByType) > 0 {
				rows := make([][]string, 0, len(stats.ItemsByType))
				for _, tc := range stats.ItemsByType {
					rows = append(rows, []string{ctx.typeLabel(tc.Type), strconv.Itoa(tc.Count)})
				}
				fmt.Fprintln(out, renderTable([]string{"Type", "Items"}, rows, 1))
			}
			if stats.UserStats != nil {
				for _, line := range renderSectionHeader("User", colorize) {
					fmt.Fprintln(out, line)
				}
				avg := "-"
				if stats.UserStats.AvgRating != nil {
					avg = strconv.FormatFloat(*stats.UserStats.AvgRating, 'f', 2, 64)
				}
				fmt.Fprintf(out, "Reviewed: %d\nCompleted: %d\nAverage rating: %s\n",
					stats.UserStats.Reviewed, stats.UserStats.Completed, avg)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "Include review stats for this user id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}
