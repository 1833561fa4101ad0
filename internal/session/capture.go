package session

import (
	"context"
	"strings"

	"moodboard/internal/media"
	"moodboard/internal/model"
	"moodboard/internal/repo"
)

// ThumbnailSize is the bounding box of stored board thumbnails.
const ThumbnailSize = 200

// Snapshotter renders a view to an image data URL.
type Snapshotter interface {
	Snapshot(v View) (string, error)
}

// CaptureThumbnail renders the board, downsamples it and stores it as the
// board thumbnail.
func (s *Session) CaptureThumbnail(ctx context.Context, snap Snapshotter) (string, error) {
	if err := s.checkOpen(); err != nil {
		return "", err
	}
	full, err := snap.Snapshot(s.Snapshot())
	if err != nil {
		return "", s.fail("capture thumbnail", err)
	}
	thumb, err := media.CreateThumbnail(full, ThumbnailSize, ThumbnailSize)
	if err != nil {
		return "", s.fail("capture thumbnail", err)
	}
	b, err := s.repo.UpdateBoard(ctx, s.BoardID(), repo.BoardPatch{Thumbnail: &thumb})
	if err != nil {
		return "", s.fail("capture thumbnail", err)
	}
	s.apply(func(v *View) { v.Board = b })
	return thumb, nil
}

// ImportPinterest copies the pins of every Pinterest board into a section as
// link items. The current client never authenticates, so this records
// pinterest.ErrNotImplemented.
func (s *Session) ImportPinterest(ctx context.Context, sectionID string) ([]model.Item, error) {
	if err := s.sectionExists(sectionID); err != nil {
		return nil, s.fail("import pinterest", err)
	}
	auth := s.pin.Authenticate(ctx)
	if err := auth.Err(); err != nil {
		s.log.WithField("message", auth.Message).Debug("pinterest authentication failed")
		return nil, s.fail("import pinterest", err)
	}
	boards := s.pin.Boards(ctx)
	if err := boards.Err(); err != nil {
		return nil, s.fail("import pinterest", err)
	}

	var added []model.Item
	for _, pb := range boards.Boards {
		pins := s.pin.Pins(ctx, "", pb.ID)
		if err := pins.Err(); err != nil {
			return added, s.fail("import pinterest", err)
		}
		for _, pin := range pins.Pins {
			u := strings.TrimSpace(pin.Link)
			if u == "" {
				u = pin.ImageURL
			}
			it, err := s.AddItem(ctx, sectionID, model.LinkContent{Title: pin.Title, URL: u})
			if err != nil {
				return added, err
			}
			added = append(added, it)
		}
	}
	return added, nil
}
