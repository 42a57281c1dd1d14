package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/phrazzld/progress-gallery/internal/config"
	"github.com/phrazzld/progress-gallery/internal/domain"
	"github.com/phrazzld/progress-gallery/internal/platform/logger"
	"github.com/phrazzld/progress-gallery/internal/platform/photosource"
	"github.com/phrazzld/progress-gallery/internal/platform/postgres"
	"github.com/phrazzld/progress-gallery/internal/platform/share"
	"github.com/phrazzld/progress-gallery/internal/platform/slot"
	"github.com/phrazzld/progress-gallery/internal/service/gallery"
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "gallery",
		Short: "Keep progress photos and compare two of them",
		Long: `gallery keeps an ordered collection of progress photos, newest batch
first, and shows a before/after comparison of two of them.

Configuration comes from an optional file (--config) and GALLERY_*
environment variables, e.g. GALLERY_STORE_DRIVER=sqlite.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (yaml, json or toml)")

	root.AddCommand(
		newListCmd(opts),
		newAddCmd(opts),
		newDeleteCmd(opts),
		newReplaceCmd(opts),
		newCompareCmd(opts),
		newShareCmd(opts),
		newStatsCmd(opts),
		newMigrateCmd(opts),
	)
	return root
}

// withApp runs fn against a freshly loaded gallery and tears it down after.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, a *app) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := initializeApp(ctx, opts.configPath, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	ctx = logger.WithLogger(ctx, a.logger)

	runErr := fn(ctx, a)
	if err := a.close(context.WithoutCancel(ctx)); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to flush gallery: %w", err)
	}
	return runErr
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the photos in display order and the current comparison",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(_ context.Context, a *app) error {
				snap := a.manager.Snapshot()
				if asJSON {
					return printJSON(cmd, snap)
				}
				printSnapshot(cmd, snap, a.cfg.Gallery)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full snapshot as JSON")
	return cmd
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <file-or-dir>...",
		Short: "Add image files as one batch at the front of the gallery",
		Long: `Adds image files (jpg, jpeg, png, gif, webp, heic) as a single batch.
Directories are scanned one level deep. At most gallery.import_limit
images are taken per call.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				before := a.manager.Snapshot().Collection.Len()
				snap := a.manager.AddFromSource(ctx, photosource.Paths{Inputs: args})
				fmt.Fprintf(cmd.OutOrStdout(), "added %d photo(s), %d total\n",
					snap.Collection.Len()-before, snap.Collection.Len())
				return nil
			})
		},
	}
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a photo by id",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				before := a.manager.Snapshot().Collection.Len()
				snap := a.manager.Remove(ctx, args[0])
				if snap.Collection.Len() == before {
					fmt.Fprintf(cmd.OutOrStdout(), "no photo with id %s\n", args[0])
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s, %d left\n", args[0], snap.Collection.Len())
				return nil
			})
		},
	}
}

func newReplaceCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "replace <index> <id>",
		Short: "Swap the photo at a grid index with another photo",
		Long: `Puts the photo with <id> at position <index> and moves the photo that
was there into <id>'s old position. Nothing else moves.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid index %q: %w", args[0], err)
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				snap := a.manager.ReplaceBySwap(ctx, index, args[1])
				if got, ok := snap.Collection.At(index); ok && got.ID == args[1] {
					fmt.Fprintf(cmd.OutOrStdout(), "placed %s at %d\n", args[1], index)
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to swap")
				return nil
			})
		},
	}
}

// selectionFlags picks compare slots through the chooser, the same way the
// compare view does.
type selectionFlags struct {
	left  string
	right string
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.left, "left", "", "photo id for the left (before) slot")
	cmd.Flags().StringVar(&f.right, "right", "", "photo id for the right (after) slot")
}

func (f *selectionFlags) apply(ctx context.Context, m *gallery.Manager) gallery.Snapshot {
	if f.left != "" {
		m.OpenForCompareSlot(domain.SideLeft)
		m.Resolve(ctx, f.left)
	}
	if f.right != "" {
		m.OpenForCompareSlot(domain.SideRight)
		m.Resolve(ctx, f.right)
	}
	return m.Snapshot()
}

func newCompareCmd(opts *rootOptions) *cobra.Command {
	var sel selectionFlags
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Show the before/after pair",
		Long: `Shows the two compared photos. Without flags the first and second
photos are compared. Unknown ids leave the slot unchanged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				snap := sel.apply(ctx, a.manager)
				out := cmd.OutOrStdout()
				loc := a.cfg.Gallery.Location()
				printSide(cmd, "before", snap.Compare.Left, loc)
				printSide(cmd, "after", snap.Compare.Right, loc)
				fmt.Fprintln(out, snap.CompareLabel)
				return nil
			})
		},
	}
	sel.register(cmd)
	return cmd
}

func newShareCmd(opts *rootOptions) *cobra.Command {
	var sel selectionFlags
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Print the share text for the current comparison",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				sel.apply(ctx, a.manager)
				a.manager.Share(ctx, share.Writer{Out: cmd.OutOrStdout()})
				return nil
			})
		},
	}
	sel.register(cmd)
	return cmd
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print gallery metrics gathered while loading",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(_ context.Context, a *app) error {
				samples, err := a.metrics.Snapshot()
				if err != nil {
					return fmt.Errorf("failed to gather metrics: %w", err)
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, s := range samples {
					name := s.Name
					if op, ok := s.Labels["op"]; ok {
						name += "{op=" + op + "}"
					}
					fmt.Fprintf(tw, "%s\t%g\n", name, s.Value)
				}
				return tw.Flush()
			})
		},
	}
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status|version]",
		Short:     "Run database migrations for the postgres store",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			command := "up"
			if len(args) == 1 {
				command = args[0]
			}

			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			log, err := logger.SetupWithWriter(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("failed to set up logger: %w", err)
			}

			s, db, err := slot.OpenPostgresDB(cmd.Context(), cfg.Store, log)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			if err := postgres.Migrate(cmd.Context(), db, command, log); err != nil {
				return fmt.Errorf("migration %s failed: %w", command, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: ok\n", command)
			return nil
		},
	}
}

func printSnapshot(cmd *cobra.Command, snap gallery.Snapshot, g config.GalleryConfig) {
	out := cmd.OutOrStdout()
	if snap.Collection.Len() == 0 {
		fmt.Fprintln(out, "no photos yet")
		return
	}

	loc := g.Location()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tDATE\tURI\tCOMPARE")
	for i, p := range snap.Collection {
		var mark string
		switch {
		case p.ID == snap.Selection.LeftID && p.ID == snap.Selection.RightID:
			mark = "before/after"
		case p.ID == snap.Selection.LeftID:
			mark = "before"
		case p.ID == snap.Selection.RightID:
			mark = "after"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i, p.ID, domain.FormatDate(p.CreatedAt, loc), p.URI, mark)
	}
	_ = tw.Flush()
	fmt.Fprintln(out, snap.CompareLabel)
}

func printSide(cmd *cobra.Command, label string, p *domain.Photo, loc *time.Location) {
	out := cmd.OutOrStdout()
	if p == nil {
		fmt.Fprintf(out, "%s: (none)\n", label)
		return
	}
	fmt.Fprintf(out, "%s: %s %s %s\n", label, p.ID, domain.FormatDate(p.CreatedAt, loc), p.URI)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
