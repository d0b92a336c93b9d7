package asset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mu-asset-cache/internal/fsys"
)

var baseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type fakeAsset struct {
	kind     Kind
	data     string
	released int
	children []*fakeAsset
}

func (a *fakeAsset) Kind() Kind { return a.kind }
func (a *fakeAsset) Release()   { a.released++ }

// fakeModel owns one mesh child per line of its file.
type fakeModel struct {
	fakeAsset
}

func (m *fakeModel) SubAssetCount() int   { return len(m.children) }
func (m *fakeModel) SubAsset(i int) Asset { return m.children[i] }

// fakeShader reloads in place; a file containing "bad" fails to reload.
type fakeShader struct {
	fakeAsset
	reloads int
}

func (s *fakeShader) Reload(ctx LoadContext) error {
	data, err := ctx.ReadFile()
	if err != nil {
		return err
	}
	if strings.Contains(string(data), "bad") {
		return errors.New("compile error")
	}
	s.data = string(data)
	s.reloads++
	return nil
}

// busyFS reports configured paths as in use.
type busyFS struct {
	fsys.FS
	busy map[string]bool
}

func (b busyFS) InUse(path string) bool { return b.busy[path] || b.FS.InUse(path) }

type fixture struct {
	t      *testing.T
	game   string
	engine string
	busy   map[string]bool
	cache  *Cache
	loads  map[string]int
}

func newFixture(t *testing.T, hotReload bool) *fixture {
	t.Helper()
	f := &fixture{
		t:      t,
		game:   t.TempDir(),
		engine: t.TempDir(),
		busy:   make(map[string]bool),
		loads:  make(map[string]int),
	}

	read := func(ctx LoadContext) (string, error) {
		data, err := ctx.ReadFile()
		if err != nil {
			return "", err
		}
		f.loads[ctx.Identifier]++
		return string(data), nil
	}

	loaders := map[Kind]Loader{
		KindText: LoaderFunc(func(ctx LoadContext) (Asset, error) {
			data, err := read(ctx)
			if err != nil {
				return nil, err
			}
			if data == "corrupt" {
				return nil, errors.New("corrupt text")
			}
			return &fakeAsset{kind: KindText, data: data}, nil
		}),
		KindSound: LoaderFunc(func(ctx LoadContext) (Asset, error) {
			data, err := read(ctx)
			if err != nil {
				return nil, err
			}
			return &fakeAsset{kind: KindSound, data: data}, nil
		}),
		KindShader: LoaderFunc(func(ctx LoadContext) (Asset, error) {
			data, err := read(ctx)
			if err != nil {
				return nil, err
			}
			return &fakeShader{fakeAsset: fakeAsset{kind: KindShader, data: data}}, nil
		}),
		KindModel: LoaderFunc(func(ctx LoadContext) (Asset, error) {
			data, err := read(ctx)
			if err != nil {
				return nil, err
			}
			m := &fakeModel{fakeAsset: fakeAsset{kind: KindModel, data: data}}
			for _, line := range strings.Split(data, "\n") {
				m.children = append(m.children, &fakeAsset{kind: KindMesh, data: line})
			}
			return m, nil
		}),
	}

	f.cache = New(Options{
		GameRoot:   f.game,
		EngineRoot: f.engine,
		HotReload:  hotReload,
		FS:         busyFS{FS: fsys.OS{}, busy: f.busy},
		Loaders:    loaders,
	})
	return f
}

// write creates root/rel with content and a fixed modification time.
func (f *fixture) write(root, rel, content string) string {
	f.t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(f.t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(f.t, os.WriteFile(path, []byte(content), 0644))
	f.touch(path, baseTime)
	return path
}

// change rewrites path and moves its modification time forward.
func (f *fixture) change(path, content string, offset time.Duration) {
	f.t.Helper()
	require.NoError(f.t, os.WriteFile(path, []byte(content), 0644))
	f.touch(path, baseTime.Add(offset))
}

func (f *fixture) touch(path string, mt time.Time) {
	f.t.Helper()
	require.NoError(f.t, os.Chtimes(path, mt, mt))
}
