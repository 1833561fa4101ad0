// Package tui is the interactive terminal canvas for one board.
package tui

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"moodboard/internal/repo"
	"moodboard/internal/session"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
)

type Options struct {
	// Theme is light, dark or auto.
	Theme string
	// LogPath receives log output while the canvas owns the terminal.
	// Empty discards it.
	LogPath string
}

// Run opens boardID and blocks until the user quits.
func Run(ctx context.Context, r *repo.Repository, boardID string, opts Options) error {
	restore, err := redirectLogs(opts.LogPath)
	if err != nil {
		return err
	}
	defer restore()

	applyColorProfilePreference()
	mdTheme = applyThemePreference(opts.Theme)

	s, err := session.Open(ctx, r, boardID)
	if err != nil {
		return err
	}
	defer s.Close()

	m := newCanvasModel(ctx, s)
	_, err = tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	).Run()
	return err
}

// redirectLogs points logrus at path (append) so log lines do not corrupt
// the alt screen.
func redirectLogs(path string) (func(), error) {
	prev := log.StandardLogger().Out
	path = strings.TrimSpace(path)
	if path == "" {
		log.SetOutput(io.Discard)
		return func() { log.SetOutput(prev) }, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)
	return func() {
		log.SetOutput(prev)
		_ = f.Close()
	}, nil
}
