// Package publish exports a board as markdown (and optionally HTML) with its
// images written next to it.
package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"moodboard/internal/media"
	"moodboard/internal/model"
	"moodboard/internal/session"
)

type WriteOptions struct {
	HTML      bool
	Overwrite bool
}

type WriteResult struct {
	Dir     string   `json:"dir"`
	Written []string `json:"written"`
}

var imageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// WriteBoard writes boards/<board-id>/index.md under toDir, plus one file per
// image item in assets/ and index.html when opt.HTML is set.
func WriteBoard(v session.View, toDir string, opt WriteOptions) (WriteResult, error) {
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	boardDir := filepath.Join(filepath.Clean(toDir), "boards", v.Board.ID)
	assetsDir := filepath.Join(boardDir, "assets")
	if err := os.MkdirAll(assetsDir, 0o755); err != nil {
		return WriteResult{}, err
	}

	res := WriteResult{Dir: boardDir}
	assets := map[string]string{}
	for _, sv := range v.Sections {
		for _, it := range sv.Items {
			ic, ok := it.Content.(model.ImageContent)
			if !ok {
				continue
			}
			mimeType, b, err := media.ParseDataURL(ic.Src)
			if err != nil {
				// Unreadable sources are listed by caption only.
				continue
			}
			ext, ok := imageExt[mimeType]
			if !ok {
				ext = ".bin"
			}
			rel := "assets/" + it.ID + ext
			p := filepath.Join(boardDir, filepath.FromSlash(rel))
			if err := writeFile(p, b, opt.Overwrite); err != nil {
				return WriteResult{}, err
			}
			assets[it.ID] = rel
			res.Written = append(res.Written, p)
		}
	}

	md := RenderBoardMarkdown(v, assets)
	mdPath := filepath.Join(boardDir, "index.md")
	if err := writeFile(mdPath, []byte(md), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}
	res.Written = append(res.Written, mdPath)

	if opt.HTML {
		page, err := renderPage(v.Board.Name, md)
		if err != nil {
			return WriteResult{}, err
		}
		htmlPath := filepath.Join(boardDir, "index.html")
		if err := writeFile(htmlPath, page, opt.Overwrite); err != nil {
			return WriteResult{}, err
		}
		res.Written = append(res.Written, htmlPath)
	}
	return res, nil
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
