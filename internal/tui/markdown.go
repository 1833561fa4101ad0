package tui

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"moodboard/internal/media"
	"moodboard/internal/model"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
)

var (
	mdRendererMu sync.Mutex
	// Keyed by style + wrap width. WithAutoStyle can block on terminal
	// queries, so renderers use a fixed style and are reused.
	mdRenderers = map[string]*glamour.TermRenderer{}
	// mdTheme is set by Run; empty means resolve from the environment.
	mdTheme string
)

// ItemMarkdown renders an item for humans: notes as markdown, links as a
// heading with the URL, images as caption plus dimensions.
func ItemMarkdown(it model.Item, width int) string {
	return renderMarkdown(itemMarkdownSource(it), width)
}

// RenderMarkdown renders md for a terminal of the given width.
func RenderMarkdown(md string, width int) string {
	return renderMarkdown(md, width)
}

func itemMarkdownSource(it model.Item) string {
	switch c := it.Content.(type) {
	case model.TextContent:
		return c.Body
	case model.LinkContent:
		return fmt.Sprintf("## %s\n\n<%s>", c.Title, c.URL)
	case model.ImageContent:
		caption := strings.TrimSpace(c.Caption)
		if caption == "" {
			caption = "Untitled image"
		}
		mimeType, raw, err := media.ParseDataURL(c.Src)
		if err != nil {
			return fmt.Sprintf("**%s**\n\n_unreadable image: %v_", caption, err)
		}
		size, err := media.DecodeImage(c.Src)
		if err != nil {
			return fmt.Sprintf("**%s**\n\n_%s, %d bytes_", caption, mimeType, len(raw))
		}
		return fmt.Sprintf("**%s**\n\n_%s, %.0f x %.0f, %d bytes_", caption, mimeType, size.W, size.H, len(raw))
	default:
		return ""
	}
}

func renderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}

	mdRendererMu.Lock()
	style := markdownStyle()
	key := style + ":" + strconv.Itoa(width)
	r := mdRenderers[key]
	mdRendererMu.Unlock()

	if r == nil {
		cfg := markdownStyleConfig(style)
		zero := uint(0)
		cfg.Document.Margin = &zero
		rr, err := glamour.NewTermRenderer(
			glamour.WithStyles(cfg),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		mdRendererMu.Lock()
		if existing := mdRenderers[key]; existing != nil {
			r = existing
		} else {
			mdRenderers[key] = rr
			r = rr
		}
		mdRendererMu.Unlock()
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func markdownStyleConfig(styleName string) ansi.StyleConfig {
	if styleName == "light" {
		cfg := styles.LightStyleConfig
		applyMarkdownPalette(&cfg, "light")
		return cfg
	}
	cfg := styles.DarkStyleConfig
	applyMarkdownPalette(&cfg, "dark")
	return cfg
}

// markdownStyle follows MOODBOARD_TUI_MD_STYLE, then the canvas theme.
func markdownStyle() string {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("MOODBOARD_TUI_MD_STYLE"))) {
	case "light":
		return "light"
	case "dark":
		return "dark"
	}
	if mdTheme != "" {
		return mdTheme
	}
	return themeName("")
}

func applyMarkdownPalette(cfg *ansi.StyleConfig, styleName string) {
	heading := mdColor(colorSurfaceFg.Light, colorSurfaceFg.Dark, styleName)
	cfg.Heading.Color = heading
	cfg.H1.Color = heading
	cfg.H2.Color = heading
	cfg.H3.Color = heading

	cfg.Text.Color = mdColor(colorSurfaceFg.Light, colorSurfaceFg.Dark, styleName)
	cfg.Code.Color = cfg.Text.Color
	if cfg.CodeBlock.BackgroundColor == nil {
		cfg.CodeBlock.BackgroundColor = mdColor(colorControlBg.Light, colorControlBg.Dark, styleName)
	}
	cfg.Strong.Color = nil
	cfg.Emph.Color = nil
	cfg.BlockQuote.Faint = mdBoolPtr(false)
}

func mdColor(light, dark, styleName string) *string {
	if styleName == "light" {
		return &light
	}
	return &dark
}

func mdBoolPtr(b bool) *bool { return &b }
