package model

import "time"

// Point is a position in board-world (sections) or section-local (items) pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Size struct {
	W float64 `json:"width"`
	H float64 `json:"height"`
}

type Board struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// Thumbnail is a data URL (image/jpeg) captured from the canvas, if any.
	Thumbnail *string `json:"thumbnail"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Section struct {
	ID       string `json:"id"`
	BoardID  string `json:"boardId"`
	Title    string `json:"title"`
	Position Point  `json:"position"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Item struct {
	ID        string `json:"id"`
	SectionID string `json:"sectionId"`

	// Content is one of ImageContent, TextContent or LinkContent.
	Content Content `json:"-"`

	// Position is relative to the owning section's local origin.
	Position Point `json:"position"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (it Item) Kind() ItemKind {
	if it.Content == nil {
		return ""
	}
	return it.Content.Kind()
}

// Touch stamps updatedAt, never letting it fall behind createdAt.
func Touch(createdAt, now time.Time) time.Time {
	if now.Before(createdAt) {
		return createdAt
	}
	return now
}
