// Package assets embeds the static files served alongside rendered pages.
package assets

import (
	_ "embed"
)

//go:embed agentpages.css
var pageCSS []byte

// PageCSS returns the base stylesheet for rendered pages and the canvas.
func PageCSS() []byte {
	return pageCSS
}
