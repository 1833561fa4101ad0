package media

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"moodboard/internal/model"
)

func pngDataURL(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return EncodeDataURL("image/png", buf.Bytes())
}

func TestParseDataURL(t *testing.T) {
	mt, b, err := ParseDataURL("data:text/plain;base64,aGVsbG8=")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if mt != "text/plain" || string(b) != "hello" {
		t.Fatalf("unexpected %q %q", mt, b)
	}

	mt, b, err = ParseDataURL("data:,a%20b")
	if err != nil {
		t.Fatalf("parse plain: %v", err)
	}
	if mt != "text/plain" || string(b) != "a b" {
		t.Fatalf("unexpected %q %q", mt, b)
	}

	if _, _, err := ParseDataURL("https://example.com/x.png"); err == nil {
		t.Fatalf("expected error for non-data URL")
	}
}

func TestDecodeImage(t *testing.T) {
	size, err := DecodeImage(pngDataURL(t, 64, 32))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if size != (model.Size{W: 64, H: 32}) {
		t.Fatalf("unexpected size %+v", size)
	}

	_, err = DecodeImage("data:image/png;base64,bm90IGFuIGltYWdl")
	var de ImageDecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected ImageDecodeError, got %v", err)
	}
}

func TestCreateThumbnail_DownscalesOnly(t *testing.T) {
	thumb, err := CreateThumbnail(pngDataURL(t, 800, 400), 200, 200)
	if err != nil {
		t.Fatalf("thumbnail: %v", err)
	}
	if !strings.HasPrefix(thumb, "data:image/jpeg;base64,") {
		t.Fatalf("expected jpeg data URL, got %.30s", thumb)
	}
	size, err := DecodeImage(thumb)
	if err != nil {
		t.Fatalf("decode thumb: %v", err)
	}
	if size != (model.Size{W: 200, H: 100}) {
		t.Fatalf("unexpected thumb size %+v", size)
	}

	small, err := CreateThumbnail(pngDataURL(t, 50, 80), 200, 200)
	if err != nil {
		t.Fatalf("thumbnail small: %v", err)
	}
	size, _ = DecodeImage(small)
	if size != (model.Size{W: 50, H: 80}) {
		t.Fatalf("small images must keep their size, got %+v", size)
	}
}

func TestThumbnailSize(t *testing.T) {
	cases := []struct{ w, h, mw, mh, ww, wh int }{
		{800, 400, 200, 200, 200, 100},
		{300, 900, 200, 200, 66, 200},
		{100, 100, 200, 200, 100, 100},
		{1000, 1, 200, 200, 200, 1},
	}
	for _, c := range cases {
		w, h := ThumbnailSize(c.w, c.h, c.mw, c.mh)
		if w != c.ww || h != c.wh {
			t.Fatalf("ThumbnailSize(%d,%d): got %dx%d want %dx%d", c.w, c.h, w, h, c.ww, c.wh)
		}
	}
}

func TestValidateFileType(t *testing.T) {
	if !ValidateFileType("image/png", AllowedUploadTypes) {
		t.Fatalf("png must be allowed")
	}
	if !ValidateFileType(" Text/Markdown ", AllowedUploadTypes) {
		t.Fatalf("markdown must be allowed")
	}
	if ValidateFileType("application/zip", AllowedUploadTypes) {
		t.Fatalf("zip must be rejected")
	}
}

func TestItemFromFile(t *testing.T) {
	dir := t.TempDir()

	note := filepath.Join(dir, "packing.md")
	if err := os.WriteFile(note, []byte("# Packing\n- towel\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := ItemFromFile(note)
	if err != nil {
		t.Fatalf("markdown: %v", err)
	}
	if tc, ok := c.(model.TextContent); !ok || !strings.Contains(tc.Body, "towel") {
		t.Fatalf("expected text content, got %#v", c)
	}

	_, raw, _ := ParseDataURL(pngDataURL(t, 10, 10))
	pic := filepath.Join(dir, "beach.png")
	if err := os.WriteFile(pic, raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err = ItemFromFile(pic)
	if err != nil {
		t.Fatalf("image: %v", err)
	}
	ic, ok := c.(model.ImageContent)
	if !ok || ic.Caption != "beach.png" || !strings.HasPrefix(ic.Src, "data:image/png;base64,") {
		t.Fatalf("unexpected image content %#v", c)
	}

	zip := filepath.Join(dir, "a.zip")
	if err := os.WriteFile(zip, []byte("PK\x03\x04"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	var ve model.ValidationError
	if _, err := ItemFromFile(zip); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for zip, got %v", err)
	}
}
