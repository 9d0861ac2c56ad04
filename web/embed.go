package web

import (
	"embed"
	"io/fs"
)

//go:embed templates static
var content embed.FS

// TemplatesFS holds the page templates, rooted at templates/.
var TemplatesFS, _ = fs.Sub(content, "templates")

// StaticFS holds the stylesheet and page script, rooted at static/.
var StaticFS, _ = fs.Sub(content, "static")
