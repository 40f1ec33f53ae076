package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/amaumene/zoetrope/internal/app"
	"github.com/amaumene/zoetrope/internal/config"
	"github.com/amaumene/zoetrope/internal/controllers"
	"github.com/amaumene/zoetrope/internal/models"
)

var (
	carouselLimit int
	listType      string
	listSort      string
	listPage      int
	listPageSize  int
	carouselJSON  bool
	listJSON      bool
)

var carouselCmd = &cobra.Command{
	Use:   "carousel",
	Short: "Print the ranked carousel",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			limit := carouselLimit
			if limit == 0 {
				limit = a.Config.CarouselLimit
			}
			items, err := a.Collection.Carousel(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printItems(cmd.OutOrStdout(), items, carouselJSON)
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the browsing list",
	Long: `Print one page of the collection filtered by type and sorted by one of
recently_added, recently_updated, comment_count, user_score or popularity.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			result, err := a.Collection.List(cmd.Context(), controllers.ListQuery{
				Type:     listType,
				Sort:     listSort,
				Page:     listPage,
				PageSize: listPageSize,
			})
			if err != nil {
				return err
			}
			if err := printItems(cmd.OutOrStdout(), result.Items, listJSON); err != nil {
				return err
			}
			if !listJSON {
				fmt.Fprintf(cmd.OutOrStdout(), "\npage %d, %d of %d items, sorted by %s\n",
					result.Page, len(result.Items), result.Total, result.Sort)
			}
			return nil
		})
	},
}

var inboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "Inbox maintenance",
}

var inboxCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete expired inbox items",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			deleted, err := a.Inbox.Cleanup(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d expired inbox items\n", deleted)
			return nil
		})
	},
}

var inboxProcessCmd = &cobra.Command{
	Use:   "process",
	Short: "Process every pending inbox item now",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			processed, err := a.Inbox.ProcessPending(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "processed %d inbox items\n", processed)
			return nil
		})
	},
}

func init() {
	carouselCmd.Flags().IntVar(&carouselLimit, "limit", 0, "maximum number of items (default CAROUSEL_LIMIT)")
	carouselCmd.Flags().BoolVar(&carouselJSON, "json", false, "print JSON instead of a table")

	listCmd.Flags().StringVar(&listType, "type", "", "media type filter (movie, tv_show, novel, book, music)")
	listCmd.Flags().StringVar(&listSort, "sort", "", "sort order (default recently_added)")
	listCmd.Flags().IntVar(&listPage, "page", 1, "page number")
	listCmd.Flags().IntVar(&listPageSize, "page-size", 20, "items per page")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print JSON instead of a table")

	inboxCmd.AddCommand(inboxCleanupCmd, inboxProcessCmd)
}

// withApp loads config, builds the graph, runs fn and tears everything down
func withApp(fn func(a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	a, cleanup, err := app.Initialize(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	return fn(a)
}

func printItems(w io.Writer, items []*models.MediaItem, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tTYPE\tRELEASE\tEND\tMENTIONS\tSCORE")
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			item.Title, item.Type, formatDate(item.ReleaseDate), formatDate(item.EndDate),
			item.MentionCount, formatScore(item.UserScore))
	}
	return tw.Flush()
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

func formatScore(score *float64) string {
	if score == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *score)
}
