package cli

import (
	"github.com/spf13/cobra"
)

func newImportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import items from external services",
	}
	cmd.AddCommand(newImportPinterestCmd(app))
	return cmd
}

func newImportPinterestCmd(app *App) *cobra.Command {
	var sectionID string

	cmd := &cobra.Command{
		Use:   "pinterest",
		Short: "Import pins into a section as links (not available yet)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := ctxOf(cmd)
			s, err := app.sessionForSection(ctx, sectionID)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()
			added, err := s.ImportPinterest(ctx, sectionID)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": added})
		},
	}

	cmd.Flags().StringVar(&sectionID, "section", "", "Target section id")
	_ = cmd.MarkFlagRequired("section")
	return cmd
}
