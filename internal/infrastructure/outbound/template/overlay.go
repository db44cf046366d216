package template

import (
	"io/fs"
	"os"
)

// OverlayFS serves files from an optional override directory, falling back
// to base for anything the directory does not contain.
type OverlayFS struct {
	override fs.FS
	base     fs.FS
}

// NewOverlayFS creates an overlay. An empty dir disables the override.
func NewOverlayFS(base fs.FS, dir string) *OverlayFS {
	o := &OverlayFS{base: base}
	if dir != "" {
		o.override = os.DirFS(dir)
	}
	return o
}

// Open implements fs.FS.
func (o *OverlayFS) Open(name string) (fs.File, error) {
	if o.override != nil {
		if f, err := o.override.Open(name); err == nil {
			return f, nil
		}
	}
	return o.base.Open(name)
}
