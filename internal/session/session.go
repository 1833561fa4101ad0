// Package session keeps an in-memory mirror of one board in step with the
// repository. Every mutator persists first and only touches the mirror once
// the write succeeded.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"moodboard/internal/model"
	"moodboard/internal/pinterest"
	"moodboard/internal/repo"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var ErrClosed = errors.New("session closed")

type LoadError struct {
	BoardID string
	Err     error
}

func (e LoadError) Error() string {
	return fmt.Sprintf("load board %s: %v", e.BoardID, e.Err)
}

func (e LoadError) Unwrap() error { return e.Err }

// maxRecorded bounds the error history kept for the status line.
const maxRecorded = 50

type Session struct {
	repo *repo.Repository
	pin  pinterest.Client
	log  *log.Entry

	mu     sync.Mutex
	view   View
	closed bool
	errs   []error

	// Slots handed out to creates whose writes are still in flight.
	pendingSections int
	pendingSlots    map[slotKey]bool

	// nudgeMu orders relative moves so each starts from the last result.
	nudgeMu sync.Mutex
}

type slotKey struct {
	section string
	at      model.Point
}

type Option func(*Session)

func WithPinterest(c pinterest.Client) Option {
	return func(s *Session) { s.pin = c }
}

// Open loads a board, its sections and every section's items. Item lists are
// fetched in parallel. Any failure yields a LoadError and no session.
func Open(ctx context.Context, r *repo.Repository, boardID string, opts ...Option) (*Session, error) {
	view, err := load(ctx, r, boardID)
	if err != nil {
		return nil, err
	}
	s := &Session{
		repo: r,
		pin:  pinterest.Stub{},
		log:  log.WithField("board", boardID),
		view: view,
	}
	for _, o := range opts {
		o(s)
	}
	s.log.WithField("sections", len(view.Sections)).Debug("session opened")
	return s, nil
}

func load(ctx context.Context, r *repo.Repository, boardID string) (View, error) {
	board, err := r.Board(ctx, boardID)
	if err != nil {
		return View{}, LoadError{BoardID: boardID, Err: err}
	}
	sections, err := r.SectionsOf(ctx, boardID)
	if err != nil {
		return View{}, LoadError{BoardID: boardID, Err: err}
	}

	items := make([][]model.Item, len(sections))
	g, gctx := errgroup.WithContext(ctx)
	for i, sec := range sections {
		i, sec := i, sec
		g.Go(func() error {
			its, err := r.ItemsOf(gctx, sec.ID)
			if err != nil {
				return err
			}
			items[i] = its
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return View{}, LoadError{BoardID: boardID, Err: err}
	}
	// Results that arrive after cancellation are dropped.
	if err := ctx.Err(); err != nil {
		return View{}, LoadError{BoardID: boardID, Err: err}
	}

	v := View{Board: board, Sections: make([]SectionView, len(sections))}
	for i, sec := range sections {
		v.Sections[i] = newSectionView(sec, items[i])
	}
	return v, nil
}

// Reload replaces the mirror with freshly loaded state. On failure the
// current mirror is kept.
func (s *Session) Reload(ctx context.Context) error {
	id := s.BoardID()
	v, err := load(ctx, s.repo, id)
	if err != nil {
		return s.fail("reload", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.view = v
	return nil
}

// Close stops the session. Writes still in flight complete but their results
// are not applied to the mirror.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *Session) BoardID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.Board.ID
}

// Snapshot returns a deep copy of the mirror.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.clone()
}

func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.errs) == 0 {
		return nil
	}
	return s.errs[len(s.errs)-1]
}

func (s *Session) Errors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]error(nil), s.errs...)
}

func (s *Session) ClearErrors() {
	s.mu.Lock()
	s.errs = nil
	s.mu.Unlock()
}

// fail logs and records a failed operation and returns it wrapped with op.
func (s *Session) fail(op string, err error) error {
	err = fmt.Errorf("%s: %w", op, err)
	s.log.WithError(err).WithField("op", op).Warn("operation failed")
	s.mu.Lock()
	s.errs = append(s.errs, err)
	if len(s.errs) > maxRecorded {
		s.errs = s.errs[len(s.errs)-maxRecorded:]
	}
	s.mu.Unlock()
	return err
}

// apply runs fn against the mirror unless the session was closed meanwhile.
func (s *Session) apply(fn func(v *View)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	fn(&s.view)
}

func (s *Session) checkOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}
