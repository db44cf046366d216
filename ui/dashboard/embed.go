// Package dashboard embeds the page templates and static assets of the
// X-Ray dashboard.
package dashboard

import (
	"embed"
	"io/fs"
)

//go:embed templates static
var files embed.FS

// Templates holds the pongo2 page templates.
var Templates = mustSub("templates")

// Static holds the stylesheet served under /static/.
var Static = mustSub("static")

func mustSub(dir string) fs.FS {
	sub, err := fs.Sub(files, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
