package model

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError reports input rejected before anything is persisted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func ValidateName(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", ValidationError{Field: field, Reason: "must not be empty"}
	}
	return v, nil
}

// NormalizeContent trims and checks item content. Link titles default to the URL host.
func NormalizeContent(c Content) (Content, error) {
	switch c := c.(type) {
	case TextContent:
		body := strings.TrimSpace(c.Body)
		if body == "" {
			return nil, ValidationError{Field: "text", Reason: "must not be empty"}
		}
		return TextContent{Body: body}, nil
	case LinkContent:
		raw := strings.TrimSpace(c.URL)
		if raw == "" {
			return nil, ValidationError{Field: "url", Reason: "must not be empty"}
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, ValidationError{Field: "url", Reason: fmt.Sprintf("%q is not a valid URL", raw)}
		}
		title := strings.TrimSpace(c.Title)
		if title == "" {
			title = u.Hostname()
		}
		return LinkContent{Title: title, URL: raw}, nil
	case ImageContent:
		if strings.TrimSpace(c.Src) == "" {
			return nil, ValidationError{Field: "image", Reason: "missing source"}
		}
		return ImageContent{Src: c.Src, Caption: strings.TrimSpace(c.Caption)}, nil
	case nil:
		return nil, ValidationError{Field: "content", Reason: "missing"}
	default:
		return nil, ValidationError{Field: "content", Reason: fmt.Sprintf("unsupported %T", c)}
	}
}

// ClampLocal keeps item positions inside the section's non-negative quadrant.
func ClampLocal(p Point) Point {
	if p.X < 0 {
		p.X = 0
	}
	if p.Y < 0 {
		p.Y = 0
	}
	return p
}
