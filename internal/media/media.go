// Package media converts files to data URLs, decodes image sources and
// builds JPEG thumbnails.
package media

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"moodboard/internal/model"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// AllowedUploadTypes are the MIME types accepted when adding files to a section.
var AllowedUploadTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"text/plain",
	"text/markdown",
	"application/pdf",
}

const ThumbnailQuality = 70

// MaxFileSize bounds ReadFileDataURL.
const MaxFileSize = 20 << 20

type ImageDecodeError struct {
	Err error
}

func (e ImageDecodeError) Error() string { return "decode image: " + e.Err.Error() }
func (e ImageDecodeError) Unwrap() error { return e.Err }

func FileToDataURL(r io.Reader, mimeType string) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return EncodeDataURL(mimeType, b), nil
}

func EncodeDataURL(mimeType string, b []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(b)
}

// DetectType picks a MIME type from the file extension, falling back to
// content sniffing. Parameters such as charset are dropped.
func DetectType(name string, head []byte) string {
	t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		t = "text/markdown"
	case ".webp":
		t = "image/webp"
	}
	if t == "" {
		t = http.DetectContentType(head)
	}
	if mt, _, err := mime.ParseMediaType(t); err == nil {
		return mt
	}
	return t
}

// ReadFileDataURL reads a file and returns its data URL and detected type.
func ReadFileDataURL(path string) (dataURL, mimeType string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", err
	}
	defer f.Close()
	b, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
	if err != nil {
		return "", "", err
	}
	if len(b) > MaxFileSize {
		return "", "", model.ValidationError{Field: "file", Reason: fmt.Sprintf("%s is larger than %d bytes", filepath.Base(path), MaxFileSize)}
	}
	mimeType = DetectType(path, b)
	return EncodeDataURL(mimeType, b), mimeType, nil
}

func ValidateFileType(mimeType string, allowed []string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	for _, a := range allowed {
		if a == mimeType {
			return true
		}
	}
	return false
}

// ParseDataURL returns the media type and payload of a data: URL.
func ParseDataURL(src string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(src, "data:")
	if !ok {
		return "", nil, errors.New("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, errors.New("malformed data URL")
	}
	isBase64 := false
	if m, found := strings.CutSuffix(meta, ";base64"); found {
		meta, isBase64 = m, true
	}
	if meta == "" {
		meta = "text/plain"
	}
	if isBase64 {
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, fmt.Errorf("data URL payload: %w", err)
		}
		return meta, b, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("data URL payload: %w", err)
	}
	return meta, []byte(s), nil
}

// LoadImage decodes an image data URL.
func LoadImage(src string) (image.Image, error) {
	_, b, err := ParseDataURL(src)
	if err != nil {
		return nil, ImageDecodeError{Err: err}
	}
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, ImageDecodeError{Err: err}
	}
	return img, nil
}

// DecodeImage returns the natural size of an image data URL.
func DecodeImage(src string) (model.Size, error) {
	_, b, err := ParseDataURL(src)
	if err != nil {
		return model.Size{}, ImageDecodeError{Err: err}
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		return model.Size{}, ImageDecodeError{Err: err}
	}
	return model.Size{W: float64(cfg.Width), H: float64(cfg.Height)}, nil
}

// CreateThumbnail downscales an image data URL to fit maxW x maxH, keeping
// the aspect ratio. Smaller images keep their size. Output is always JPEG.
func CreateThumbnail(src string, maxW, maxH int) (string, error) {
	img, err := LoadImage(src)
	if err != nil {
		return "", err
	}
	b := img.Bounds()
	w, h := ThumbnailSize(b.Dx(), b.Dy(), maxW, maxH)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: ThumbnailQuality}); err != nil {
		return "", err
	}
	return EncodeDataURL("image/jpeg", buf.Bytes()), nil
}

// ThumbnailSize shrinks w x h into the box; it never enlarges.
func ThumbnailSize(w, h, maxW, maxH int) (int, int) {
	if w > h {
		if w > maxW {
			h = h * maxW / w
			w = maxW
		}
	} else if h > maxH {
		w = w * maxH / h
		h = maxH
	}
	return max(w, 1), max(h, 1)
}
