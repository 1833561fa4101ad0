package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"moodboard/internal/format"
	"moodboard/internal/repo"
	"moodboard/internal/session"
	"moodboard/internal/store"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	Backend    string
	RedisURL   string
	PrettyJSON bool
	Format     string
	LogLevel   string

	cfg     *store.GlobalConfig
	backend store.Backend
	repo    *repo.Repository
	// shared apps borrow the backend of an enclosing shell and never close it.
	shared bool
}

func NewRootCmd() *cobra.Command {
	loadDotEnv()
	return newRootCmd(&App{})
}

// loadDotEnv reads ./.env when present. Existing environment variables win.
func loadDotEnv() {
	if _, err := os.Stat(".env"); err != nil {
		return
	}
	if err := godotenv.Load(); err != nil {
		log.WithError(err).Warn("could not load .env")
	}
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "moodboard",
		Short:        "Moodboard canvas (local-first) CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Create a board and open it in the terminal canvas
  moodboard boards create --name Trips --use
  moodboard view

  # Scriptable commands
  moodboard sections add --title Beach
  moodboard items add-text --section <section-id> --body "pack sunscreen"

  # Direct board lookup (shortcut for: moodboard boards show <board-id>)
  moodboard board-1b9d6bcd-bbfd-4b2d-9b5d-ab8dfbbd4bed
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => canvas for the current board.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runView(cmd, app, "")
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return configureLogging(cmd, app)
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("MOODBOARD_DIR", ""), "Data directory for the sqlite backend (default: ~/.moodboard/data)")
	cmd.PersistentFlags().StringVar(&app.Backend, "backend", envOr("MOODBOARD_BACKEND", ""), "Store backend (sqlite|redis|memory)")
	cmd.PersistentFlags().StringVar(&app.RedisURL, "redis-url", envOr("MOODBOARD_REDIS_URL", ""), "Redis URL for the redis backend")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON/EDN output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("MOODBOARD_FORMAT", "json"), "Output format (json|edn|table)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", envOr("MOODBOARD_LOG_LEVEL", ""), "Log level (debug|info|warn|error)")

	cmd.AddCommand(newBoardsCmd(app))
	cmd.AddCommand(newSectionsCmd(app))
	cmd.AddCommand(newItemsCmd(app))
	cmd.AddCommand(newViewCmd(app))
	cmd.AddCommand(newDoctorCmd(app))
	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newBackupCmd(app))
	cmd.AddCommand(newShellCmd(app))

	closeAfterRun(cmd, app)
	return cmd
}

// closeAfterRun releases the backend once a command finishes, on success or
// failure (PersistentPostRunE is skipped on errors).
func closeAfterRun(cmd *cobra.Command, app *App) {
	if run := cmd.RunE; run != nil {
		cmd.RunE = func(cmd *cobra.Command, args []string) error {
			defer func() {
				if err := app.Close(); err != nil {
					log.WithError(err).Warn("close store")
				}
			}()
			return run(cmd, args)
		}
	}
	for _, c := range cmd.Commands() {
		closeAfterRun(c, app)
	}
}

// configureLogging applies --log-level, then the config file, then DEBUG=true.
// Logs go to stderr so stdout stays machine-readable.
func configureLogging(cmd *cobra.Command, app *App) error {
	log.SetOutput(cmd.ErrOrStderr())
	level := strings.TrimSpace(app.LogLevel)
	if level == "" {
		if cfg, err := app.config(); err == nil {
			level = cfg.LogLevel
		}
	}
	if level == "" {
		level = "warn"
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return writeErr(cmd, fmt.Errorf("invalid --log-level %q: %w", level, err))
	}
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		lvl = log.DebugLevel
	}
	log.SetLevel(lvl)
	return nil
}

func (app *App) config() (*store.GlobalConfig, error) {
	if app.cfg != nil {
		return app.cfg, nil
	}
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, err
	}
	app.cfg = cfg
	return cfg, nil
}

// Repo opens the configured backend on first use.
func (app *App) Repo(ctx context.Context) (*repo.Repository, error) {
	if app.repo != nil {
		return app.repo, nil
	}
	cfg, err := app.config()
	if err != nil {
		return nil, err
	}
	opts, err := store.Options{Backend: app.Backend, Dir: app.Dir, RedisURL: app.RedisURL}.Resolve(cfg)
	if err != nil {
		return nil, err
	}
	b, err := store.Open(ctx, opts)
	if err != nil {
		return nil, err
	}
	app.backend = b
	app.repo = repo.New(b)
	return app.repo, nil
}

func (app *App) Close() error {
	if app.shared || app.backend == nil {
		return nil
	}
	err := app.backend.Close()
	app.backend, app.repo = nil, nil
	return err
}

// boardID resolves an explicit board id or falls back to the current board.
func (app *App) boardID(explicit string) (string, error) {
	if id := strings.TrimSpace(explicit); id != "" {
		return id, nil
	}
	cfg, err := app.config()
	if err != nil {
		return "", err
	}
	if cfg.CurrentBoard == "" {
		return "", errNoBoard
	}
	return cfg.CurrentBoard, nil
}

func (app *App) openSession(ctx context.Context, boardID string) (*session.Session, error) {
	r, err := app.Repo(ctx)
	if err != nil {
		return nil, err
	}
	return session.Open(ctx, r, boardID)
}

// sessionForSection opens the session of the board owning sectionID.
func (app *App) sessionForSection(ctx context.Context, sectionID string) (*session.Session, error) {
	r, err := app.Repo(ctx)
	if err != nil {
		return nil, err
	}
	sec, err := r.Section(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	return session.Open(ctx, r, sec.BoardID)
}

func (app *App) sessionForItem(ctx context.Context, itemID string) (*session.Session, error) {
	r, err := app.Repo(ctx)
	if err != nil {
		return nil, err
	}
	it, err := r.Item(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return app.sessionForSection(ctx, it.SectionID)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
