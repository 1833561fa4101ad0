package cli

import (
	"moodboard/internal/publish"
	"moodboard/internal/render"
	"moodboard/internal/repo"
	"moodboard/internal/store"

	"github.com/spf13/cobra"
)

func newBoardsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "boards",
		Aliases: []string{"board"},
		Short:   "Board commands",
	}
	cmd.AddCommand(newBoardsCreateCmd(app))
	cmd.AddCommand(newBoardsListCmd(app))
	cmd.AddCommand(newBoardsShowCmd(app))
	cmd.AddCommand(newBoardsRenameCmd(app))
	cmd.AddCommand(newBoardsDeleteCmd(app))
	cmd.AddCommand(newBoardsThumbnailCmd(app))
	cmd.AddCommand(newBoardsUseCmd(app))
	cmd.AddCommand(newBoardsExportCmd(app))
	return cmd
}

func newBoardsCreateCmd(app *App) *cobra.Command {
	var name string
	var use bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a board",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := ctxOf(cmd)
			r, err := app.Repo(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			b, err := r.CreateBoard(ctx, name)
			if err != nil {
				return writeErr(cmd, err)
			}
			if use {
				if err := setCurrentBoard(app, b.ID); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, map[string]any{"data": b})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Board name")
	cmd.Flags().BoolVar(&use, "use", false, "Make the new board the current board")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newBoardsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List boards (oldest first)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := ctxOf(cmd)
			r, err := app.Repo(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			boards, err := r.Boards(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": boards,
				"meta": map[string]any{"count": len(boards)},
			})
		},
	}
}

func newBoardsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show [board-id]",
		Short: "Show a board with its sections, items and packed layout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := ctxOf(cmd)
			id, err := app.boardID(firstArg(args))
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := app.openSession(ctx, id)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()
			v := s.Snapshot()
			return writeOut(cmd, app, map[string]any{
				"data": v,
				"meta": map[string]any{"bounds": v.Bounds()},
			})
		},
	}
}

func newBoardsRenameCmd(app *App) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "rename <board-id>",
		Short: "Rename a board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := ctxOf(cmd)
			r, err := app.Repo(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			b, err := r.UpdateBoard(ctx, args[0], repo.BoardPatch{Name: &name})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": b})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New board name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newBoardsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <board-id>",
		Short: "Delete a board with all of its sections and items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := ctxOf(cmd)
			r, err := app.Repo(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := r.DeleteBoard(ctx, args[0]); err != nil {
				return writeErr(cmd, err)
			}
			if cfg, err := app.config(); err == nil && cfg.CurrentBoard == args[0] {
				if err := setCurrentBoard(app, ""); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": args[0], "deleted": true}})
		},
	}
}

func newBoardsThumbnailCmd(app *App) *cobra.Command {
	var maxSide int

	cmd := &cobra.Command{
		Use:   "thumbnail [board-id]",
		Short: "Render the board and store a 200x200 thumbnail",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := ctxOf(cmd)
			id, err := app.boardID(firstArg(args))
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := app.openSession(ctx, id)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()
			thumb, err := s.CaptureThumbnail(ctx, render.Snapshotter{MaxSide: maxSide})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": id, "thumbnail": thumb}})
		},
	}

	cmd.Flags().IntVar(&maxSide, "max-side", 2048, "Cap on the full-size render before downsampling")
	return cmd
}

func newBoardsUseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "use <board-id>",
		Short: "Set the current board used when --board is omitted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := ctxOf(cmd)
			r, err := app.Repo(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			b, err := r.Board(ctx, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := setCurrentBoard(app, b.ID); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": b})
		},
	}
}

func newBoardsExportCmd(app *App) *cobra.Command {
	var to string
	var html, overwrite bool

	cmd := &cobra.Command{
		Use:   "export [board-id]",
		Short: "Write the board as markdown (and HTML) with its images",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := ctxOf(cmd)
			id, err := app.boardID(firstArg(args))
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := app.openSession(ctx, id)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()
			res, err := publish.WriteBoard(s.Snapshot(), to, publish.WriteOptions{HTML: html, Overwrite: overwrite})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Output directory")
	cmd.Flags().BoolVar(&html, "html", false, "Also write index.html")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing files")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func setCurrentBoard(app *App, id string) error {
	cfg, err := app.config()
	if err != nil {
		return err
	}
	cfg.CurrentBoard = id
	return store.SaveConfig(cfg)
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
