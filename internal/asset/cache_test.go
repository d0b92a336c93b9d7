package asset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCachesIdentity(t *testing.T) {
	f := newFixture(t, false)
	f.write(f.game, "Docs/a.txt", "alpha")

	h1 := f.cache.Acquire("Docs/a.txt")
	defer h1.Release()
	a1, err := f.cache.Resolve(h1)
	require.NoError(t, err)

	h2 := f.cache.Acquire("Docs/a.txt")
	defer h2.Release()
	a2, err := f.cache.Resolve(h2)
	require.NoError(t, err)

	assert.Same(t, a1, a2)
	assert.Equal(t, 1, f.loads["Docs/a.txt"])
	assert.Equal(t, "alpha", a1.(*fakeAsset).data)
}

func TestResolveSearchRoots(t *testing.T) {
	f := newFixture(t, false)
	gamePath := f.write(f.game, "Docs/both.txt", "game")
	f.write(f.engine, "Docs/both.txt", "engine")
	enginePath := f.write(f.engine, "Docs/engine_only.txt", "fallback")

	h := f.cache.Acquire("Docs/both.txt")
	defer h.Release()
	a, err := f.cache.Resolve(h)
	require.NoError(t, err)
	assert.Equal(t, "game", a.(*fakeAsset).data)
	rec, _ := f.cache.Record(h.Key())
	assert.Equal(t, gamePath, rec.ResolvedPath)

	h2 := f.cache.Acquire("Docs/engine_only.txt")
	defer h2.Release()
	a, err = f.cache.Resolve(h2)
	require.NoError(t, err)
	assert.Equal(t, "fallback", a.(*fakeAsset).data)
	rec, _ = f.cache.Record(h2.Key())
	assert.Equal(t, enginePath, rec.ResolvedPath)
}

func TestResolveFailures(t *testing.T) {
	f := newFixture(t, false)
	f.write(f.game, "Fonts/ui.ttf", "no loader registered")
	f.write(f.game, "Docs/broken.txt", "corrupt")

	tests := []struct {
		id   string
		want error
	}{
		{"Docs/missing.txt", ErrNotFound},
		{"Data/blob.xyz", ErrUnsupportedType},
		{"Fonts/ui.ttf", ErrUnsupportedType},
		{":orphan", ErrMalformedIdentifier},
		{"Docs/broken.txt", ErrLoadFailed},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			h := f.cache.Acquire(tt.id)
			defer h.Release()
			a, err := f.cache.Resolve(h)
			assert.Nil(t, a)
			assert.ErrorIs(t, err, tt.want)
			assert.False(t, f.cache.Loaded(h.Key()))
		})
	}
}

func TestSubAssets(t *testing.T) {
	f := newFixture(t, false)
	f.write(f.game, "Models/m.bmd", "blade\nhilt")

	sub := f.cache.Acquire("Models/m.bmd:1")
	defer sub.Release()
	a, err := f.cache.Resolve(sub)
	require.NoError(t, err)
	assert.Equal(t, "hilt", a.(*fakeAsset).data)
	assert.Equal(t, KindMesh, a.Kind())
	assert.Equal(t, 1, f.loads["Models/m.bmd"], "loads go through the root identifier")

	rootKey := HashIdentifier("Models/m.bmd")
	assert.True(t, f.cache.Loaded(rootKey))
	assert.True(t, f.cache.Loaded(HashIdentifier("Models/m.bmd:0")))

	first := f.cache.Acquire("Models/m.bmd:0")
	defer first.Release()
	a, err = f.cache.Resolve(first)
	require.NoError(t, err)
	assert.Equal(t, "blade", a.(*fakeAsset).data)
	assert.Equal(t, 1, f.loads["Models/m.bmd"])

	missing := f.cache.Acquire("Models/m.bmd:7")
	defer missing.Release()
	_, err = f.cache.Resolve(missing)
	assert.ErrorIs(t, err, ErrSubAssetNotFound)

	named := f.cache.Acquire("Models/m.bmd:mesh_0")
	defer named.Release()
	_, err = f.cache.Resolve(named)
	assert.ErrorIs(t, err, ErrSubAssetNotFound)
}

func TestFreeAsymmetry(t *testing.T) {
	f := newFixture(t, false)
	f.write(f.game, "Models/m.bmd", "blade\nhilt")

	root := f.cache.Acquire("Models/m.bmd")
	defer root.Release()
	sub := f.cache.Acquire("Models/m.bmd:0")
	defer sub.Release()

	a, err := f.cache.Resolve(root)
	require.NoError(t, err)
	model := a.(*fakeModel)
	_, err = f.cache.Resolve(sub)
	require.NoError(t, err)

	f.cache.Free(sub)
	assert.False(t, f.cache.Loaded(sub.Key()))
	assert.True(t, f.cache.Loaded(root.Key()))
	assert.Zero(t, model.released)
	assert.Zero(t, model.children[0].released, "sub-assets are never torn down on their own")

	f.cache.Free(root)
	assert.Equal(t, 1, model.released)
	assert.False(t, f.cache.Loaded(HashIdentifier("Models/m.bmd:1")), "children go with their parent")

	f.cache.Free(root)
	assert.Equal(t, 1, model.released, "freeing an unloaded key is a no-op")
}

func TestCollectGarbage(t *testing.T) {
	f := newFixture(t, false)
	f.write(f.game, "Docs/a.txt", "alpha")

	const n = 3
	var handles []*Handle
	for i := 0; i < n; i++ {
		handles = append(handles, f.cache.Acquire("Docs/a.txt"))
	}
	a, err := f.cache.Resolve(handles[0])
	require.NoError(t, err)
	key := handles[0].Key()

	assert.Zero(t, f.cache.CollectGarbage(), "referenced assets survive")
	for _, h := range handles {
		h.Release()
	}
	assert.Zero(t, f.cache.RefCount(key))
	assert.Equal(t, 1, f.cache.CollectGarbage())
	assert.False(t, f.cache.Loaded(key))
	assert.Equal(t, 1, a.(*fakeAsset).released)

	_, ok := f.cache.Record(key)
	assert.True(t, ok, "records outlive their assets")
}

func TestCollectGarbageKeepsReferencedModel(t *testing.T) {
	f := newFixture(t, false)
	f.write(f.game, "Models/m.bmd", "blade\nhilt")

	sub := f.cache.Acquire("Models/m.bmd:1")
	a, err := f.cache.Resolve(sub)
	require.NoError(t, err)

	f.cache.CollectGarbage()
	rootKey := HashIdentifier("Models/m.bmd")
	assert.True(t, f.cache.Loaded(rootKey), "a referenced sub-asset pins its model")
	again, err := f.cache.Resolve(sub)
	require.NoError(t, err)
	assert.Same(t, a, again)
	assert.Equal(t, 1, f.loads["Models/m.bmd"])

	sub.Release()
	f.cache.CollectGarbage()
	assert.False(t, f.cache.Loaded(rootKey))
	assert.False(t, f.cache.Loaded(HashIdentifier("Models/m.bmd:1")))
}

func TestGetChecksType(t *testing.T) {
	f := newFixture(t, false)
	f.write(f.game, "Docs/a.txt", "alpha")
	h := f.cache.Acquire("Docs/a.txt")
	defer h.Release()

	txt, err := Get[*fakeAsset](f.cache, h)
	require.NoError(t, err)
	assert.Equal(t, "alpha", txt.data)

	sh, err := Get[*fakeShader](f.cache, h)
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.Nil(t, sh)
}

func TestRegisterDoesNotCount(t *testing.T) {
	f := newFixture(t, true)
	a := &fakeAsset{kind: KindText, data: "generated"}

	key := f.cache.Register(a, "Runtime/generated.txt")
	assert.Zero(t, f.cache.RefCount(key))
	assert.Empty(t, f.cache.watches, "assets without a file are not watched")

	h := f.cache.Acquire("Runtime/generated.txt")
	defer h.Release()
	got, err := f.cache.Resolve(h)
	require.NoError(t, err)
	assert.Same(t, a, got)
	assert.Equal(t, 1, f.cache.RefCount(key))

	replacement := &fakeAsset{kind: KindText, data: "second"}
	f.cache.Register(replacement, "Runtime/generated.txt")
	assert.Equal(t, 1, a.released, "a replaced root asset is released")
	f.cache.Register(replacement, "Runtime/generated.txt")
	assert.Zero(t, replacement.released, "re-registering the same asset keeps it")
}

// blob is a value-type asset; its slice field makes it non-comparable.
type blob struct {
	bytes    []byte
	releases *int
}

func (blob) Kind() Kind { return KindData }
func (b blob) Release() { *b.releases++ }

func TestRegisterNonComparableAsset(t *testing.T) {
	f := newFixture(t, false)
	var released int
	first := blob{bytes: []byte("v1"), releases: &released}

	f.cache.Register(first, "Runtime/blob.json")
	require.NotPanics(t, func() {
		f.cache.Register(first, "Runtime/blob.json")
	})
	assert.Equal(t, 1, released, "non-comparable assets always count as a replacement")

	assert.False(t, sameAsset(&fakeAsset{}, &fakeAsset{}))
	same := &fakeAsset{}
	assert.True(t, sameAsset(same, same))
	assert.False(t, sameAsset(first, first))
}

func TestClose(t *testing.T) {
	f := newFixture(t, false)
	f.write(f.game, "Docs/a.txt", "alpha")
	f.write(f.game, "Models/m.bmd", "blade")

	h1 := f.cache.Acquire("Docs/a.txt")
	defer h1.Release()
	h2 := f.cache.Acquire("Models/m.bmd:0")
	defer h2.Release()
	a1, err := f.cache.Resolve(h1)
	require.NoError(t, err)
	_, err = f.cache.Resolve(h2)
	require.NoError(t, err)

	f.cache.Close()
	assert.Zero(t, f.cache.Len())
	assert.Equal(t, 1, a1.(*fakeAsset).released)

	_, err = f.cache.Resolve(h1)
	require.NoError(t, err, "handles stay usable after Close")
	assert.Equal(t, 2, f.loads["Docs/a.txt"])
	assert.Equal(t, filepath.Join(f.game, "Docs", "a.txt"), mustRecord(t, f.cache, h1.Key()).ResolvedPath)
}

func mustRecord(t *testing.T, c *Cache, key Key) Record {
	t.Helper()
	rec, ok := c.Record(key)
	require.True(t, ok)
	return rec
}
