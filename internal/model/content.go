package model

import (
	"encoding/json"
	"fmt"
	"time"
)

type ItemKind string

const (
	ItemKindImage ItemKind = "image"
	ItemKindText  ItemKind = "text"
	ItemKindLink  ItemKind = "link"
)

// Content is the kind-specific payload of an Item.
type Content interface {
	Kind() ItemKind
	isContent()
}

type ImageContent struct {
	// Src is an image data URL.
	Src     string
	Caption string
}

type TextContent struct {
	Body string
}

type LinkContent struct {
	Title string
	URL   string
}

func (ImageContent) Kind() ItemKind { return ItemKindImage }
func (TextContent) Kind() ItemKind  { return ItemKindText }
func (LinkContent) Kind() ItemKind  { return ItemKindLink }

func (ImageContent) isContent() {}
func (TextContent) isContent()  {}
func (LinkContent) isContent()  {}

// itemWire is the stored shape of an item: a flat {type, content, src} record.
type itemWire struct {
	ID        string    `json:"id"`
	SectionID string    `json:"sectionId"`
	Type      ItemKind  `json:"type"`
	Content   string    `json:"content"`
	Src       *string   `json:"src"`
	Position  Point     `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (it Item) MarshalJSON() ([]byte, error) {
	w := itemWire{
		ID:        it.ID,
		SectionID: it.SectionID,
		Position:  it.Position,
		CreatedAt: it.CreatedAt,
		UpdatedAt: it.UpdatedAt,
	}
	switch c := it.Content.(type) {
	case ImageContent:
		w.Type, w.Content, w.Src = ItemKindImage, c.Caption, strPtr(c.Src)
	case TextContent:
		w.Type, w.Content = ItemKindText, c.Body
	case LinkContent:
		w.Type, w.Content, w.Src = ItemKindLink, c.Title, strPtr(c.URL)
	case nil:
		return nil, fmt.Errorf("item %s: missing content", it.ID)
	default:
		return nil, fmt.Errorf("item %s: unknown content %T", it.ID, c)
	}
	return json.Marshal(w)
}

func (it *Item) UnmarshalJSON(b []byte) error {
	var w itemWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	src := ""
	if w.Src != nil {
		src = *w.Src
	}
	switch w.Type {
	case ItemKindImage:
		it.Content = ImageContent{Src: src, Caption: w.Content}
	case ItemKindText:
		it.Content = TextContent{Body: w.Content}
	case ItemKindLink:
		it.Content = LinkContent{Title: w.Content, URL: src}
	default:
		return fmt.Errorf("item %s: unknown type %q", w.ID, w.Type)
	}
	it.ID = w.ID
	it.SectionID = w.SectionID
	it.Position = w.Position
	it.CreatedAt = w.CreatedAt
	it.UpdatedAt = w.UpdatedAt
	return nil
}

func strPtr(s string) *string { return &s }
