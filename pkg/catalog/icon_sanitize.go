package catalog

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	paletteIconOnce   sync.Once
	paletteIconPolicy *bluemonday.Policy
)

// paletteShapes are the SVG primitives a palette glyph may draw with.
var paletteShapes = []string{"path", "circle", "rect", "line", "polyline", "polygon", "ellipse"}

// cleanPaletteIcon reduces a catalog entry's icon to a self-contained inline
// SVG glyph. Markup without an svg root is dropped so the palette falls back
// to its label.
func cleanPaletteIcon(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	cleaned := strings.TrimSpace(paletteIcons().Sanitize(raw))
	if !strings.HasPrefix(cleaned, "<svg") {
		return ""
	}
	return cleaned
}

// paletteIcons allows shapes and groups. References to other documents (use,
// href, clip paths) are stripped.
func paletteIcons() *bluemonday.Policy {
	paletteIconOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("svg", "g")
		policy.AllowElements(paletteShapes...)

		policy.AllowAttrs(
			"xmlns", "viewBox", "width", "height", "fill", "stroke",
			"stroke-width", "stroke-linecap", "stroke-linejoin", "aria-hidden",
			"role", "focusable", "class",
		).OnElements("svg")
		policy.AllowAttrs("fill", "stroke", "stroke-width", "transform").OnElements("g")
		policy.AllowAttrs(
			"d", "cx", "cy", "r", "rx", "ry", "x", "y", "x1", "y1", "x2", "y2",
			"width", "height", "points", "fill", "stroke", "stroke-width",
			"stroke-linecap", "stroke-linejoin",
		).OnElements(paletteShapes...)

		paletteIconPolicy = policy
	})
	return paletteIconPolicy
}
