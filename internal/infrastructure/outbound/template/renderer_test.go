package template_test

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sophialabs/xraydash/internal/infrastructure/outbound/template"
	"github.com/sophialabs/xraydash/internal/testutil"
)

func mapFS() fstest.MapFS {
	return fstest.MapFS{
		"base.html":    {Data: []byte(`<h1>{% block content %}{% endblock %}</h1>`)},
		"browser.html": {Data: []byte(`{% extends "base.html" %}{% block content %}{{ page.Name }}{% endblock %}`)},
		"demo.html":    {Data: []byte(`{% extends "base.html" %}{% block content %}demo{% endblock %}`)},
	}
}

func TestRenderer_ExtendsBase(t *testing.T) {
	r := template.NewRenderer(mapFS(), &testutil.NoopLogger{})
	require.NoError(t, r.Preload())

	var buf bytes.Buffer
	err := r.Render(&buf, "browser", map[string]any{"page": struct{ Name string }{"<run>"}})
	require.NoError(t, err)
	assert.Equal(t, "<h1>&lt;run&gt;</h1>", buf.String())
}

func TestRenderer_UnknownPage(t *testing.T) {
	r := template.NewRenderer(mapFS(), &testutil.NoopLogger{})

	var buf bytes.Buffer
	err := r.Render(&buf, "missing", nil)
	assert.ErrorContains(t, err, "missing template")
	assert.Zero(t, buf.Len())
}

func TestRenderer_PreloadReportsBrokenPage(t *testing.T) {
	fsys := mapFS()
	fsys["demo.html"] = &fstest.MapFile{Data: []byte(`{% nosuchtag %}`)}

	err := template.NewRenderer(fsys, &testutil.NoopLogger{}).Preload()
	assert.ErrorContains(t, err, "demo template")
}

func TestRenderer_OverrideAndReload(t *testing.T) {
	dir := t.TempDir()
	overlay := template.NewOverlayFS(mapFS(), dir)
	r := template.NewRenderer(overlay, &testutil.NoopLogger{})

	render := func() string {
		var buf bytes.Buffer
		require.NoError(t, r.Render(&buf, "demo", nil))
		return buf.String()
	}
	assert.Equal(t, "<h1>demo</h1>", render())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "demo.html"),
		[]byte(`{% extends "base.html" %}{% block content %}custom{% endblock %}`), 0o644))
	assert.Equal(t, "<h1>demo</h1>", render(), "cached until reload")

	r.Reload()
	assert.Equal(t, "<h1>custom</h1>", render())
}

func TestOverlayFS_FallsBack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.html"), []byte("override"), 0o644))
	overlay := template.NewOverlayFS(mapFS(), dir)

	data, err := fs.ReadFile(overlay, "base.html")
	require.NoError(t, err)
	assert.Equal(t, "override", string(data))

	data, err = fs.ReadFile(overlay, "demo.html")
	require.NoError(t, err)
	assert.Contains(t, string(data), "demo")

	_, err = fs.ReadFile(template.NewOverlayFS(mapFS(), ""), "nope.html")
	assert.Error(t, err)
}
