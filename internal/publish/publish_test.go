package publish

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"moodboard/internal/media"
	"moodboard/internal/model"
	"moodboard/internal/session"
)

func testView() session.View {
	now := time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC)
	gif := media.EncodeDataURL("image/gif", []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;"))
	return session.View{
		Board: model.Board{ID: "board-test", Name: "Trips", CreatedAt: now, UpdatedAt: now},
		Sections: []session.SectionView{
			{
				Section: model.Section{ID: "section-beach", BoardID: "board-test", Title: "Beach"},
				Items: []model.Item{
					{ID: "item-note", Content: model.TextContent{Body: "Pack **sunscreen**"}},
					{ID: "item-link", Content: model.LinkContent{Title: "Surf [report]", URL: "https://example.com/surf"}},
					{ID: "item-img", Content: model.ImageContent{Src: gif, Caption: "sunset"}},
					{ID: "item-bad", Content: model.ImageContent{Src: "broken", Caption: "lost"}},
				},
			},
			{Section: model.Section{ID: "section-city", BoardID: "board-test", Title: "City"}},
		},
	}
}

func TestRenderBoardMarkdown(t *testing.T) {
	t.Parallel()

	md := RenderBoardMarkdown(testView(), map[string]string{"item-img": "assets/item-img.gif"})
	for _, want := range []string{
		"# Trips",
		"- ID: board-test",
		"- Sections: 2",
		"## Beach",
		"Pack **sunscreen**",
		`- [Surf \[report\]](https://example.com/surf)`,
		"![sunset](assets/item-img.gif)",
		"- Image: lost",
		"## City",
		"_(empty)_",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected markdown to contain %q; got:\n%s", want, md)
		}
	}
	if strings.Index(md, "## Beach") > strings.Index(md, "## City") {
		t.Fatalf("expected sections in view order")
	}
}

func TestWriteBoard_WritesAssetsAndHTML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	res, err := WriteBoard(testView(), dir, WriteOptions{HTML: true})
	if err != nil {
		t.Fatalf("WriteBoard: %v", err)
	}
	if len(res.Written) != 3 {
		t.Fatalf("expected asset, markdown and html; got %v", res.Written)
	}

	boardDir := filepath.Join(dir, "boards", "board-test")
	if _, err := os.Stat(filepath.Join(boardDir, "assets", "item-img.gif")); err != nil {
		t.Fatalf("expected image asset: %v", err)
	}
	page, err := os.ReadFile(filepath.Join(boardDir, "index.html"))
	if err != nil {
		t.Fatalf("read html: %v", err)
	}
	if !strings.Contains(string(page), "<strong>sunscreen</strong>") || !strings.Contains(string(page), `src="assets/item-img.gif"`) {
		t.Fatalf("unexpected html:\n%s", page)
	}

	if _, err := WriteBoard(testView(), dir, WriteOptions{}); err == nil {
		t.Fatalf("expected existing files to be refused without overwrite")
	}
	if _, err := WriteBoard(testView(), dir, WriteOptions{Overwrite: true}); err != nil {
		t.Fatalf("WriteBoard overwrite: %v", err)
	}
}

func TestWriteBoard_RequiresDir(t *testing.T) {
	t.Parallel()

	if _, err := WriteBoard(testView(), "  ", WriteOptions{}); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}
