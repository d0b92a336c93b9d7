package main

import (
	"time"

	"go.uber.org/zap"

	"mu-asset-cache/internal/asset"
	"mu-asset-cache/internal/loader"
	"mu-asset-cache/internal/system"
)

// textureSystem holds the images referenced by tracked assets. A full reload
// gives a tracked handle a new asset; the next frame acquires the textures
// the new version references and releases the ones it dropped.
type textureSystem struct {
	cache   *asset.Cache
	log     *zap.Logger
	refs    func(asset.Asset) []string
	tracked []*trackedAsset
}

type trackedAsset struct {
	owner   *asset.Handle
	current asset.Asset
	held    map[string]*asset.Handle
}

func newTextureSystem(cache *asset.Cache, refs func(asset.Asset) []string, log *zap.Logger) *textureSystem {
	return &textureSystem{cache: cache, log: log, refs: refs}
}

func (s *textureSystem) Phase() system.Phase { return system.PhaseUpdate }

// Track starts following h, which must already be resolved.
func (s *textureSystem) Track(h *asset.Handle, a asset.Asset) {
	t := &trackedAsset{owner: h, held: make(map[string]*asset.Handle)}
	s.tracked = append(s.tracked, t)
	s.sync(t, a)
}

func (s *textureSystem) Update(_ time.Duration) {
	for _, t := range s.tracked {
		// An owner left unloaded by a failed reload keeps its textures.
		if !s.cache.Loaded(t.owner.Key()) {
			continue
		}
		a, err := s.cache.Resolve(t.owner)
		if err != nil || a == t.current {
			continue
		}
		s.sync(t, a)
	}
}

func (s *textureSystem) sync(t *trackedAsset, a asset.Asset) {
	t.current = a
	want := make(map[string]bool)
	for _, id := range s.refs(a) {
		want[id] = true
	}

	for id, h := range t.held {
		if !want[id] {
			s.log.Info("texture dropped", zap.String("identifier", id), zap.Stringer("owner", t.owner))
			h.Release()
			delete(t.held, id)
		}
	}
	for id := range want {
		if _, ok := t.held[id]; ok {
			continue
		}
		h := s.cache.Acquire(id)
		t.held[id] = h
		if _, err := s.cache.Resolve(h); err == nil {
			s.log.Info("watching texture", zap.Stringer("handle", h), zap.Stringer("owner", t.owner))
		}
	}
}

// Close releases every texture handle.
func (s *textureSystem) Close() {
	for _, t := range s.tracked {
		for id, h := range t.held {
			h.Release()
			delete(t.held, id)
		}
	}
}

// modelTextures lists the image identifiers referenced by a model's meshes,
// or by a single mesh.
func modelTextures(a asset.Asset) []string {
	var meshes []*loader.Mesh
	switch v := a.(type) {
	case *loader.Model:
		meshes = v.Meshes
	case *loader.Mesh:
		meshes = []*loader.Mesh{v}
	}
	var ids []string
	for _, m := range meshes {
		if m.TextureID != "" {
			ids = append(ids, m.TextureID)
		}
	}
	return ids
}
