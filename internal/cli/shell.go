package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"moodboard/internal/store"

	"github.com/chzyer/readline"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newShellCmd(app *App) *cobra.Command {
	var script string

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive prompt running moodboard commands against one open store",
		Long:  "Useful with --backend memory, where state only lives as long as the process.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := ctxOf(cmd)
			if _, err := app.Repo(ctx); err != nil {
				return writeErr(cmd, err)
			}
			if _, err := app.config(); err != nil {
				return writeErr(cmd, err)
			}
			if script != "" {
				return runShellScript(cmd, app, script)
			}
			return runShellInteractive(cmd, app)
		},
	}

	cmd.Flags().StringVar(&script, "file", "", "Run commands from a file (one per line) instead of prompting")
	return cmd
}

func runShellScript(cmd *cobra.Command, app *App, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer f.Close()
	return runShellLines(cmd, app, f)
}

// runShellLines executes each line of r. Failed commands are reported and
// the script continues.
func runShellLines(cmd *cobra.Command, app *App, r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4<<20)
	for sc.Scan() {
		quit, err := execShellLine(cmd, app, sc.Text())
		if err != nil {
			log.WithError(err).Debug("shell command failed")
		}
		if quit {
			return nil
		}
	}
	return sc.Err()
}

func runShellInteractive(cmd *cobra.Command, app *App) error {
	history := ""
	if dir, err := store.ConfigDir(); err == nil {
		history = filepath.Join(dir, "shell_history")
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "moodboard> ",
		HistoryFile:     history,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return writeErr(cmd, err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				fmt.Fprintln(cmd.ErrOrStderr(), "Use 'exit' or 'quit' to leave the shell.")
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return writeErr(cmd, err)
		}
		if quit, _ := execShellLine(cmd, app, line); quit {
			return nil
		}
		if board := app.cfg.CurrentBoard; board != "" {
			rl.SetPrompt(fmt.Sprintf("moodboard[%s]> ", shortID(board)))
		}
	}
}

// execShellLine runs one command line with a child root command that shares
// the shell's open backend and config.
func execShellLine(cmd *cobra.Command, app *App, line string) (quit bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return false, nil
	}
	words, err := splitShellWords(line)
	if err != nil {
		return false, writeErr(cmd, err)
	}
	if len(words) > 0 && words[0] == "moodboard" {
		words = words[1:]
	}
	switch {
	case len(words) == 0:
		return false, nil
	case words[0] == "exit" || words[0] == "quit":
		return true, nil
	case words[0] == "shell" || words[0] == "view":
		return false, writeErr(cmd, fmt.Errorf("%s is not available inside the shell", words[0]))
	}

	child := &App{
		cfg:     app.cfg,
		backend: app.backend,
		repo:    app.repo,
		shared:  true,
	}
	root := newRootCmd(child)
	root.SetOut(cmd.OutOrStdout())
	root.SetErr(cmd.ErrOrStderr())
	root.SetArgs(words)
	if f := app.Format; f != "" {
		child.Format = f
	}
	return false, root.ExecuteContext(ctxOf(cmd))
}

func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i >= 0 && len(id) > i+9 {
		return id[:i+9]
	}
	return id
}
