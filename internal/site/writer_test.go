package site

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/prismicgen/internal/foundation/errors"
	"git.home.luguber.info/inful/prismicgen/internal/manifest"
	"git.home.luguber.info/inful/prismicgen/internal/routes"
)

func TestWriteBuild(t *testing.T) {
	src := t.TempDir()
	userFile := filepath.Join(src, "app", "prismic", "link-resolver.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(userFile), 0o750))
	require.NoError(t, os.WriteFile(userFile, []byte("rules: []\n"), 0o600))

	bundled := fstest.MapFS{
		"templates/pages/preview.html": {Data: []byte("<div>preview</div>\n")},
	}

	p := newTestPipeline(t, Config{SrcDir: src, Routes: routes.StaticRoutes{"/", "/about"}})
	p.AddTemplate(Asset{FileName: "prismic/pages/preview.html", Src: "templates/pages/preview.html", FS: bundled})
	p.AddTemplate(Asset{FileName: "prismic/link-resolver.yaml", Src: userFile, Options: map[string]any{"preview": "/preview"}})
	p.PrependMiddleware("prismic_preview")
	p.ExtendRoutes(func(rs []Route) []Route {
		return append(rs, Route{Name: "prismic-preview", Path: "/preview", Component: "x"})
	})

	res, err := p.Generate(context.Background())
	require.NoError(t, err)

	m, err := p.WriteBuild(res, BuildInfo{RunID: "run-1", Version: "dev", Repository: "blog"})
	require.NoError(t, err)
	assert.Equal(t, "run-1", m.ID)
	assert.Equal(t, 2, m.Routes)
	assert.Equal(t, manifest.HashRoutes([]string{"/", "/about"}), m.RoutesHash)
	require.Len(t, m.Templates, 2)
	assert.True(t, m.Templates[1].Options)

	build := p.BuildDir()
	data, err := os.ReadFile(filepath.Join(build, "prismic", "pages", "preview.html"))
	require.NoError(t, err)
	assert.Equal(t, "<div>preview</div>\n", string(data))

	data, err = os.ReadFile(filepath.Join(build, "prismic", "link-resolver.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "rules: []\n", string(data))

	data, err = os.ReadFile(filepath.Join(build, "prismic", "link-resolver.yaml.options.yaml"))
	require.NoError(t, err)
	var opts map[string]any
	require.NoError(t, yaml.Unmarshal(data, &opts))
	assert.Equal(t, "/preview", opts["preview"])

	list, err := ReadRoutes(build)
	require.NoError(t, err)
	assert.Equal(t, []string{"/", "/about"}, list)

	stored, err := ReadManifest(build)
	require.NoError(t, err)
	assert.Equal(t, []string{"prismic_preview"}, stored.Middleware)
	require.Len(t, stored.AppRoutes, 1)
	assert.Equal(t, "/preview", stored.AppRoutes[0].Path)

	_, err = os.Stat(build + "_stage")
	assert.True(t, os.IsNotExist(err), "staging directory must be promoted")
}

func TestWriteBuild_ReplacesPreviousBuild(t *testing.T) {
	p := newTestPipeline(t, Config{Routes: routes.StaticRoutes{"/old"}})
	stale := filepath.Join(p.BuildDir(), "stale.txt")
	require.NoError(t, os.MkdirAll(p.BuildDir(), 0o750))
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o600))

	res, err := p.Generate(context.Background())
	require.NoError(t, err)
	_, err = p.WriteBuild(res, BuildInfo{RunID: "r"})
	require.NoError(t, err)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(p.BuildDir() + ".prev")
	assert.True(t, os.IsNotExist(err))
}

func TestWriteBuild_FailureKeepsPreviousBuild(t *testing.T) {
	p := newTestPipeline(t, Config{})
	keep := filepath.Join(p.BuildDir(), "routes.json")
	require.NoError(t, os.MkdirAll(p.BuildDir(), 0o750))
	require.NoError(t, os.WriteFile(keep, []byte(`["/keep"]`), 0o600))

	p.AddPlugin(Asset{FileName: "missing.yaml", Src: filepath.Join(p.SrcDir(), "nope.yaml")})
	res, err := p.Generate(context.Background())
	require.NoError(t, err)

	_, err = p.WriteBuild(res, BuildInfo{})
	require.Error(t, err)
	assert.Equal(t, errors.CategoryFileSystem, errors.GetCategory(err))

	list, err := ReadRoutes(p.BuildDir())
	require.NoError(t, err)
	assert.Equal(t, []string{"/keep"}, list)
	_, err = os.Stat(p.BuildDir() + "_stage")
	assert.True(t, os.IsNotExist(err))
}

func TestWriteBuild_PromoteFailureRestoresPreviousBuild(t *testing.T) {
	p := newTestPipeline(t, Config{})
	require.NoError(t, os.MkdirAll(p.BuildDir(), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(p.BuildDir(), RoutesFileName), []byte(`["/keep"]`), 0o600))

	t.Cleanup(func() { rename = os.Rename })
	rename = func(oldpath, newpath string) error {
		if strings.HasSuffix(oldpath, "_stage") {
			return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: syscall.EXDEV}
		}
		return os.Rename(oldpath, newpath)
	}

	res, err := p.Generate(context.Background())
	require.NoError(t, err)
	_, err = p.WriteBuild(res, BuildInfo{})
	require.Error(t, err)
	require.ErrorIs(t, err, syscall.EXDEV)
	assert.Equal(t, errors.CategoryFileSystem, errors.GetCategory(err))

	list, err := ReadRoutes(p.BuildDir())
	require.NoError(t, err)
	assert.Equal(t, []string{"/keep"}, list)
	_, err = os.Stat(p.BuildDir() + ".prev")
	assert.True(t, os.IsNotExist(err), "backup must be moved back into place")
	_, err = os.Stat(p.BuildDir() + "_stage")
	assert.True(t, os.IsNotExist(err), "staging directory must be removed")
}

func TestWriteBuild_RejectsUnsafeAssets(t *testing.T) {
	files := fstest.MapFS{"a": {Data: []byte("a")}}
	tests := []struct {
		name   string
		assets []Asset
	}{
		{name: "escapes build dir", assets: []Asset{{FileName: "../evil", Src: "a", FS: files}}},
		{name: "absolute", assets: []Asset{{FileName: "/etc/evil", Src: "a", FS: files}}},
		{name: "duplicate", assets: []Asset{{FileName: "x/a", Src: "a", FS: files}, {FileName: "x//a", Src: "a", FS: files}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPipeline(t, Config{})
			for _, a := range tt.assets {
				p.AddTemplate(a)
			}
			res, err := p.Generate(context.Background())
			require.NoError(t, err)

			_, err = p.WriteBuild(res, BuildInfo{})
			require.Error(t, err)
			_, statErr := os.Stat(p.BuildDir())
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}

func TestWriteBuild_NilResult(t *testing.T) {
	p := newTestPipeline(t, Config{})
	_, err := p.WriteBuild(nil, BuildInfo{})
	require.Error(t, err)
}

func TestReadRoutes_Missing(t *testing.T) {
	_, err := ReadRoutes(t.TempDir())
	assert.Equal(t, errors.CategoryFileSystem, errors.GetCategory(err))
}
