package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Cached glamour renderer; recreated only when width or style changes.
var (
	markdownRenderer *glamour.TermRenderer
	cachedWidth      int
	cachedStyle      string
)

func initMarkdownRenderer(width int, style string) error {
	if width < 1 {
		width = 80
	}
	if style == "" {
		style = "dark"
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return err
	}

	markdownRenderer = renderer
	cachedWidth = width
	cachedStyle = style
	return nil
}

// RenderMarkdownWithStyle renders markdown using the given glamour style.
// Returns the original content if rendering fails.
func RenderMarkdownWithStyle(content string, width int, style string) string {
	if content == "" {
		return ""
	}
	if markdownRenderer == nil || width != cachedWidth || style != cachedStyle {
		if err := initMarkdownRenderer(width, style); err != nil {
			return content
		}
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}

// RenderMarkdown renders with the default dark style.
func RenderMarkdown(content string, width int) string {
	return RenderMarkdownWithStyle(content, width, "dark")
}
