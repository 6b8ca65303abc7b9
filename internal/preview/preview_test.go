package preview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	t.Run("basic markdown", func(t *testing.T) {
		html := Render("# Welcome\n\nWe sell **quality** electronics.")
		assert.Contains(t, html, "Welcome</h1>")
		assert.Contains(t, html, "<strong>quality</strong>")
	})

	t.Run("strips scripts", func(t *testing.T) {
		html := Render("hello <script>alert('x')</script> world")
		assert.NotContains(t, html, "<script>")
		assert.NotContains(t, html, "alert")
	})

	t.Run("strips inline event handlers", func(t *testing.T) {
		html := Render(`<img src="x" onerror="alert(1)">`)
		assert.NotContains(t, html, "onerror")
	})

	t.Run("keeps links", func(t *testing.T) {
		html := Render("visit https://example.com for more")
		assert.Contains(t, html, `href="https://example.com"`)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Render(""))
	})
}
