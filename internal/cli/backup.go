package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"moodboard/internal/store"

	"github.com/spf13/cobra"
)

func newBackupCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Dump and restore every board as JSONL",
	}
	cmd.AddCommand(newBackupCreateCmd(app))
	cmd.AddCommand(newBackupRestoreCmd(app))
	return cmd
}

func newBackupCreateCmd(app *App) *cobra.Command {
	var to string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Write all boards, sections and items to a JSONL file",
		Example: "  moodboard backup create --to ./moodboard.jsonl\n" +
			"  moodboard --backend redis backup create --to ./redis.jsonl",
		RunE: func(cmd *cobra.Command, args []string) error {
			to = strings.TrimSpace(to)
			if to == "" {
				return writeErr(cmd, errors.New("--to is required"))
			}
			if !overwrite {
				if _, err := os.Stat(to); err == nil {
					return writeErr(cmd, fmt.Errorf("%s exists; pass --overwrite to replace it", to))
				}
			}
			ctx := ctxOf(cmd)
			r, err := app.Repo(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}

			if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
				return writeErr(cmd, err)
			}
			tmp, err := os.CreateTemp(filepath.Dir(to), ".backup.*.tmp")
			if err != nil {
				return writeErr(cmd, err)
			}
			tmpName := tmp.Name()
			defer func() { _ = os.Remove(tmpName) }()

			n, err := store.Dump(ctx, r.Backend(), tmp)
			if cerr := tmp.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := os.Rename(tmpName, to); err != nil {
				return writeErr(cmd, err)
			}

			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"path": to, "records": n},
				"_hints": []string{
					"moodboard backup restore --from " + to,
				},
			})
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Output file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

func newBackupRestoreCmd(app *App) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Upsert every record of a JSONL backup into the current backend",
		Long:  "Records are upserted by id; rows not in the backup are left alone. The whole file is validated before anything is written. Use --from - to read stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			from = strings.TrimSpace(from)
			if from == "" {
				return writeErr(cmd, errors.New("--from is required"))
			}
			var in io.Reader = cmd.InOrStdin()
			if from != "-" {
				f, err := os.Open(from)
				if err != nil {
					return writeErr(cmd, err)
				}
				defer f.Close()
				in = f
			}

			ctx := ctxOf(cmd)
			r, err := app.Repo(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			n, err := store.Restore(ctx, r.Backend(), in)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"records": n},
				"_hints": []string{
					"moodboard boards list",
					"moodboard doctor",
				},
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Backup file, or - for stdin")
	return cmd
}
