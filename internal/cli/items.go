package cli

import (
	"fmt"

	"moodboard/internal/media"
	"moodboard/internal/model"
	"moodboard/internal/tui"

	"github.com/spf13/cobra"
)

func newItemsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "items",
		Aliases: []string{"item"},
		Short:   "Item commands (images, text notes, links)",
	}
	cmd.AddCommand(newItemsAddTextCmd(app))
	cmd.AddCommand(newItemsAddLinkCmd(app))
	cmd.AddCommand(newItemsAddImageCmd(app))
	cmd.AddCommand(newItemsListCmd(app))
	cmd.AddCommand(newItemsShowCmd(app))
	cmd.AddCommand(newItemsMoveCmd(app))
	cmd.AddCommand(newItemsDeleteCmd(app))
	return cmd
}

// addItem appends content to a section at its next packed slot.
func addItem(cmd *cobra.Command, app *App, sectionID string, c model.Content) error {
	ctx := ctxOf(cmd)
	s, err := app.sessionForSection(ctx, sectionID)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer s.Close()
	it, err := s.AddItem(ctx, sectionID, c)
	if err != nil {
		return writeErr(cmd, err)
	}
	return writeOut(cmd, app, map[string]any{"data": it})
}

func newItemsAddTextCmd(app *App) *cobra.Command {
	var sectionID, body string

	cmd := &cobra.Command{
		Use:   "add-text",
		Short: "Add a text note (markdown)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return addItem(cmd, app, sectionID, model.TextContent{Body: body})
		},
	}

	cmd.Flags().StringVar(&sectionID, "section", "", "Section id")
	cmd.Flags().StringVar(&body, "body", "", "Note text")
	_ = cmd.MarkFlagRequired("section")
	_ = cmd.MarkFlagRequired("body")
	return cmd
}

func newItemsAddLinkCmd(app *App) *cobra.Command {
	var sectionID, url, title string

	cmd := &cobra.Command{
		Use:   "add-link",
		Short: "Add a link (title defaults to the URL host)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return addItem(cmd, app, sectionID, model.LinkContent{Title: title, URL: url})
		},
	}

	cmd.Flags().StringVar(&sectionID, "section", "", "Section id")
	cmd.Flags().StringVar(&url, "url", "", "Absolute URL")
	cmd.Flags().StringVar(&title, "title", "", "Link title")
	_ = cmd.MarkFlagRequired("section")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func newItemsAddImageCmd(app *App) *cobra.Command {
	var sectionID, file, caption string

	cmd := &cobra.Command{
		Use:   "add-image",
		Short: "Add an image or text file from disk",
		Long:  fmt.Sprintf("Accepted types: %v. Images are stored as data URLs; text files become notes.", media.AllowedUploadTypes),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := media.ItemFromFile(file)
			if err != nil {
				return writeErr(cmd, err)
			}
			if ic, ok := c.(model.ImageContent); ok && caption != "" {
				ic.Caption = caption
				c = ic
			}
			return addItem(cmd, app, sectionID, c)
		},
	}

	cmd.Flags().StringVar(&sectionID, "section", "", "Section id")
	cmd.Flags().StringVar(&file, "file", "", "Path to the file")
	cmd.Flags().StringVar(&caption, "caption", "", "Image caption (default: file name)")
	_ = cmd.MarkFlagRequired("section")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newItemsListCmd(app *App) *cobra.Command {
	var sectionID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a section's items (oldest first)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := ctxOf(cmd)
			r, err := app.Repo(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := r.Section(ctx, sectionID); err != nil {
				return writeErr(cmd, err)
			}
			items, err := r.ItemsOf(ctx, sectionID)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": items})
		},
	}

	cmd.Flags().StringVar(&sectionID, "section", "", "Section id")
	_ = cmd.MarkFlagRequired("section")
	return cmd
}

func newItemsShowCmd(app *App) *cobra.Command {
	var rendered bool
	var width int

	cmd := &cobra.Command{
		Use:   "show <item-id>",
		Short: "Show an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := ctxOf(cmd)
			r, err := app.Repo(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			it, err := r.Item(ctx, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if !rendered {
				return writeOut(cmd, app, map[string]any{"data": it})
			}
			// --render prints human text instead of the envelope.
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tui.ItemMarkdown(it, width))
			return err
		},
	}

	cmd.Flags().BoolVar(&rendered, "render", false, "Render the item for humans (markdown via glamour)")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width for --render")
	return cmd
}

func newItemsMoveCmd(app *App) *cobra.Command {
	var x, y float64

	cmd := &cobra.Command{
		Use:   "move <item-id>",
		Short: "Store a new section-local position (clamped to >= 0)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := ctxOf(cmd)
			s, err := app.sessionForItem(ctx, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()
			it, err := s.MoveItem(ctx, args[0], model.Point{X: x, Y: y})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": it})
		},
	}

	cmd.Flags().Float64Var(&x, "x", 0, "Section-local x")
	cmd.Flags().Float64Var(&y, "y", 0, "Section-local y")
	_ = cmd.MarkFlagRequired("x")
	_ = cmd.MarkFlagRequired("y")
	return cmd
}

func newItemsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <item-id>",
		Short: "Delete an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := ctxOf(cmd)
			s, err := app.sessionForItem(ctx, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()
			if err := s.DeleteItem(ctx, args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": args[0], "deleted": true}})
		},
	}
}
