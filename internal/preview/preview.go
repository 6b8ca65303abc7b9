// Package preview renders seller-authored store descriptions to sanitized
// HTML for the store-setup step.
package preview

import (
	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
)

// Render converts Markdown to HTML and sanitizes it. Output is safe to embed
// in a page regardless of what the seller typed.
func Render(markdown string) string {
	extensions := blackfriday.CommonExtensions | blackfriday.AutoHeadingIDs | blackfriday.Autolink
	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.CommonHTMLFlags,
	})
	unsafe := blackfriday.Run([]byte(markdown), blackfriday.WithRenderer(renderer), blackfriday.WithExtensions(extensions))

	return string(bluemonday.UGCPolicy().SanitizeBytes(unsafe))
}
