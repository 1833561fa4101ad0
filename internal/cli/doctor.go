package cli

import (
	"errors"

	"moodboard/internal/store"

	"github.com/spf13/cobra"
)

var errDoctorIssuesFound = errors.New("doctor found unfixed issues")

func newDoctorCmd(app *App) *cobra.Command {
	var fix, fail bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Find sections and items whose parent no longer exists",
		Long:  "Board and section deletes cascade child-first without transactions; an interrupted delete can leave orphans. --fix removes them.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := ctxOf(cmd)
			r, err := app.Repo(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			report, err := store.Doctor(ctx, r.Backend(), fix)
			if err != nil {
				return writeErr(cmd, err)
			}

			hints := []string{}
			if !fix && len(report.Issues) > 0 {
				hints = append(hints, "moodboard doctor --fix")
			}
			if err := writeOut(cmd, app, map[string]any{
				"data": report,
				"meta": map[string]any{
					"issues":    len(report.Issues),
					"hasErrors": report.HasErrors(),
				},
				"_hints": hints,
			}); err != nil {
				return err
			}

			if fail && report.HasErrors() {
				return errDoctorIssuesFound
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "Delete orphaned rows")
	cmd.Flags().BoolVar(&fail, "fail", false, "Exit with non-zero status if unfixed errors remain")
	return cmd
}
