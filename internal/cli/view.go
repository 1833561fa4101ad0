package cli

import (
	"path/filepath"

	"moodboard/internal/store"
	"moodboard/internal/tui"

	"github.com/spf13/cobra"
)

func newViewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "view [board-id]",
		Short: "Open the interactive canvas for a board",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd, app, firstArg(args))
		},
	}
}

func runView(cmd *cobra.Command, app *App, explicit string) error {
	ctx := ctxOf(cmd)
	id, err := app.boardID(explicit)
	if err != nil {
		return writeErr(cmd, err)
	}
	r, err := app.Repo(ctx)
	if err != nil {
		return writeErr(cmd, err)
	}
	opts := tui.Options{}
	if cfg, err := app.config(); err == nil && cfg.TUI != nil {
		opts.Theme = cfg.TUI.Theme
	}
	if dir, err := store.ConfigDir(); err == nil {
		opts.LogPath = filepath.Join(dir, "moodboard.log")
	}
	return tui.Run(ctx, r, id, opts)
}
