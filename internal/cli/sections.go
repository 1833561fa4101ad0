package cli

import (
	"moodboard/internal/model"

	"github.com/spf13/cobra"
)

func newSectionsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sections",
		Aliases: []string{"section"},
		Short:   "Section commands",
	}
	cmd.AddCommand(newSectionsAddCmd(app))
	cmd.AddCommand(newSectionsListCmd(app))
	cmd.AddCommand(newSectionsMoveCmd(app))
	cmd.AddCommand(newSectionsRenameCmd(app))
	cmd.AddCommand(newSectionsDeleteCmd(app))
	return cmd
}

func newSectionsAddCmd(app *App) *cobra.Command {
	var boardID, title string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a section at the next grid slot",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := ctxOf(cmd)
			id, err := app.boardID(boardID)
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := app.openSession(ctx, id)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()
			sec, err := s.AddSection(ctx, title)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": sec})
		},
	}

	cmd.Flags().StringVar(&boardID, "board", "", "Board id (default: current board)")
	cmd.Flags().StringVar(&title, "title", "", "Section title")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newSectionsListCmd(app *App) *cobra.Command {
	var boardID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a board's sections (oldest first)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := ctxOf(cmd)
			id, err := app.boardID(boardID)
			if err != nil {
				return writeErr(cmd, err)
			}
			r, err := app.Repo(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := r.Board(ctx, id); err != nil {
				return writeErr(cmd, err)
			}
			secs, err := r.SectionsOf(ctx, id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": secs})
		},
	}

	cmd.Flags().StringVar(&boardID, "board", "", "Board id (default: current board)")
	return cmd
}

func newSectionsMoveCmd(app *App) *cobra.Command {
	var x, y float64

	cmd := &cobra.Command{
		Use:   "move <section-id>",
		Short: "Move a section to a board position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := ctxOf(cmd)
			s, err := app.sessionForSection(ctx, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()
			sec, err := s.MoveSection(ctx, args[0], model.Point{X: x, Y: y})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": sec})
		},
	}

	cmd.Flags().Float64Var(&x, "x", 0, "Board x")
	cmd.Flags().Float64Var(&y, "y", 0, "Board y")
	_ = cmd.MarkFlagRequired("x")
	_ = cmd.MarkFlagRequired("y")
	return cmd
}

func newSectionsRenameCmd(app *App) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "rename <section-id>",
		Short: "Rename a section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := ctxOf(cmd)
			s, err := app.sessionForSection(ctx, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()
			sec, err := s.RenameSection(ctx, args[0], title)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": sec})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newSectionsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <section-id>",
		Short: "Delete a section and its items (other sections keep their positions)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := ctxOf(cmd)
			s, err := app.sessionForSection(ctx, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()
			if err := s.DeleteSection(ctx, args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": args[0], "deleted": true}})
		},
	}
}
