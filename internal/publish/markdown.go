package publish

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"moodboard/internal/model"
	"moodboard/internal/session"
)

// RenderBoardMarkdown renders a board as one markdown document: a section
// per heading, items in packed order. assets maps image item ids to the
// relative path of their exported file; images without one are listed by
// caption only.
func RenderBoardMarkdown(v session.View, assets map[string]string) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + strings.TrimSpace(v.Board.Name))
	writeLn("")
	writeLn("- ID: " + v.Board.ID)
	writeLn("- Sections: " + fmt.Sprint(len(v.Sections)))
	writeLn("- Created: " + v.Board.CreatedAt.UTC().Format(time.RFC3339))
	writeLn("- Updated: " + v.Board.UpdatedAt.UTC().Format(time.RFC3339))

	for _, sv := range v.Sections {
		writeLn("")
		writeLn("## " + strings.TrimSpace(sv.Section.Title))
		writeLn("")
		if len(sv.Items) == 0 {
			writeLn("_(empty)_")
			continue
		}
		for _, it := range sv.Items {
			writeLn(itemMarkdown(it, assets[it.ID]))
			writeLn("")
		}
	}
	return strings.TrimRight(buf.String(), "\n") + "\n"
}

func itemMarkdown(it model.Item, asset string) string {
	switch c := it.Content.(type) {
	case model.TextContent:
		body := strings.TrimSpace(c.Body)
		if body == "" {
			body = "(empty)"
		}
		return body
	case model.LinkContent:
		return fmt.Sprintf("- [%s](%s)", escapeLinkText(c.Title), c.URL)
	case model.ImageContent:
		caption := strings.TrimSpace(c.Caption)
		if asset == "" {
			return "- Image: " + caption
		}
		return fmt.Sprintf("![%s](%s)", escapeLinkText(caption), asset)
	}
	return ""
}

func escapeLinkText(s string) string {
	r := strings.NewReplacer("[", `\[`, "]", `\]`)
	return r.Replace(strings.TrimSpace(s))
}
