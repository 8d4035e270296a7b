package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"innovator-portal/pkg/coordinator"
	"innovator-portal/pkg/models"
	"innovator-portal/pkg/store"
)

// viewFlags select what the list view shows.
type viewFlags struct {
	status string
	search string
	sort   string
}

func (v *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&v.status, "status", "all", "Filter by status: all, draft, active, pending, rejected")
	cmd.Flags().StringVar(&v.search, "search", "", "Case-insensitive search over title, description, category and tags")
	cmd.Flags().StringVar(&v.sort, "sort", "newest", "Sort: newest, oldest, alphabetical, most-viewed, most-interest")
}

func (v *viewFlags) apply(st *store.Store) error {
	filter, err := models.ParseStatusFilter(v.status)
	if err != nil {
		return err
	}
	key, err := models.ParseSortKey(v.sort)
	if err != nil {
		return err
	}
	st.SetFilter(filter)
	st.SetSearch(v.search)
	st.SetSort(key)
	return nil
}

var (
	listView viewFlags
	listJSON bool
)

// listCmd fetches the collection and prints the visible view
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your ideas",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newCoordinator()
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()

		if err := c.Refresh(ctx); err != nil {
			return err
		}
		st := c.Store()
		if err := listView.apply(st); err != nil {
			return err
		}

		visible := st.VisibleItems()
		if listJSON {
			return writeJSON(cmd.OutOrStdout(), visible)
		}
		printIdeas(cmd.OutOrStdout(), visible)
		printCounts(cmd.OutOrStdout(), st.Counts())
		return nil
	},
}

var draftFlags struct {
	title       string
	description string
	category    string
	tags        []string
	status      string
	visibility  string
}

// createCmd submits a new idea
var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Submit a new idea",
	Long: `Submits a new idea. A title or a description is required.

Example:
  ideas create --title "Solar kiosk" --category Energy --tag solar --tag retail`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newCoordinator()
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()

		created, err := c.Create(ctx, models.IdeaDraft{
			Title:       draftFlags.title,
			Description: draftFlags.description,
			Category:    draftFlags.category,
			Tags:        draftFlags.tags,
			Status:      models.IdeaStatus(draftFlags.status),
			Visibility:  models.Visibility(draftFlags.visibility),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created idea %s (%s)\n", created.ID, created.Status)
		return nil
	},
}

var patchFlags struct {
	title       string
	description string
	category    string
	tags        []string
	status      string
	visibility  string
}

// updateCmd sends only the fields whose flags were given
var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update fields of an idea",
	Long: `Sends a partial update. Only flags that are given are changed.

Example:
  ideas update 42 --status active`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newCoordinator()
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()

		var patch models.IdeaPatch
		flags := cmd.Flags()
		if flags.Changed("title") {
			patch.Title = &patchFlags.title
		}
		if flags.Changed("description") {
			patch.Description = &patchFlags.description
		}
		if flags.Changed("category") {
			patch.Category = &patchFlags.category
		}
		if flags.Changed("tag") {
			patch.Tags = &patchFlags.tags
		}
		if flags.Changed("status") {
			s := models.IdeaStatus(patchFlags.status)
			patch.Status = &s
		}
		if flags.Changed("visibility") {
			v := models.Visibility(patchFlags.visibility)
			patch.Visibility = &v
		}

		updated, err := c.Update(ctx, args[0], patch)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated idea %s\n", updated.ID)
		return nil
	},
}

// deleteCmd removes one idea
var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an idea",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newCoordinator()
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()

		if err := c.Delete(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted idea %s\n", args[0])
		return nil
	},
}

var (
	bulkView    viewFlags
	bulkVisible bool
)

// bulkDeleteCmd deletes the given ids, or every idea in the filtered view
var bulkDeleteCmd = &cobra.Command{
	Use:   "bulk-delete [id...]",
	Short: "Delete several ideas, reporting each failure",
	Long: `Issues one delete per idea and keeps going when one fails.

With --visible the current collection is fetched, narrowed with --status and
--search, and every visible idea is selected for deletion.

Examples:
  ideas bulk-delete 12 13 14
  ideas bulk-delete --visible --status rejected`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if bulkVisible == (len(args) > 0) {
			return fmt.Errorf("give either ids or --visible")
		}
		c, err := newCoordinator()
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()

		var res coordinator.BulkResult
		if bulkVisible {
			if err := c.Refresh(ctx); err != nil {
				return err
			}
			if err := bulkView.apply(c.Store()); err != nil {
				return err
			}
			c.Store().SelectAll()
			logger.Debug("selected visible ideas", zap.Int("count", len(c.Store().Selection())))
			res, err = c.DeleteSelected(ctx)
		} else {
			res, err = c.BulkDelete(ctx, args)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Deleted %d of %d ideas\n", len(res.Succeeded), res.Attempted())
		for _, id := range res.Failed {
			fmt.Fprintf(out, "  %s: %s\n", id, describe(res.Errors[id]))
		}
		if len(res.Failed) > 0 {
			return fmt.Errorf("%d ideas could not be deleted", len(res.Failed))
		}
		return nil
	},
}

func init() {
	listView.register(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print the visible ideas as JSON")

	createCmd.Flags().StringVar(&draftFlags.title, "title", "", "Idea title")
	createCmd.Flags().StringVar(&draftFlags.description, "description", "", "Idea description")
	createCmd.Flags().StringVar(&draftFlags.category, "category", "", "Category")
	createCmd.Flags().StringArrayVar(&draftFlags.tags, "tag", nil, "Tag (repeatable)")
	createCmd.Flags().StringVar(&draftFlags.status, "status", "", "Initial status (default draft)")
	createCmd.Flags().StringVar(&draftFlags.visibility, "visibility", "", "public or private (default public)")

	updateCmd.Flags().StringVar(&patchFlags.title, "title", "", "New title")
	updateCmd.Flags().StringVar(&patchFlags.description, "description", "", "New description")
	updateCmd.Flags().StringVar(&patchFlags.category, "category", "", "New category")
	updateCmd.Flags().StringArrayVar(&patchFlags.tags, "tag", nil, "Replacement tags (repeatable)")
	updateCmd.Flags().StringVar(&patchFlags.status, "status", "", "New status")
	updateCmd.Flags().StringVar(&patchFlags.visibility, "visibility", "", "New visibility")

	bulkView.register(bulkDeleteCmd)
	bulkDeleteCmd.Flags().BoolVar(&bulkVisible, "visible", false, "Delete every idea in the filtered view")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printIdeas(w io.Writer, list []models.Idea) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No ideas match.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tTITLE\tCATEGORY\tVIEWS\tINTEREST\tCREATED")
	for _, it := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			it.ID, it.Status, truncate(it.Title, 40), it.Category,
			it.Views, it.Interests, it.CreatedAt.Format("2006-01-02"))
	}
	_ = tw.Flush()
}

func printCounts(w io.Writer, counts map[models.StatusFilter]int) {
	parts := []string{fmt.Sprintf("all %d", counts[models.FilterAll])}
	for _, s := range models.Statuses {
		parts = append(parts, fmt.Sprintf("%s %d", s, counts[models.StatusFilter(s)]))
	}
	fmt.Fprintln(w, strings.Join(parts, " · "))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
