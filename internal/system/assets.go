package system

import (
	"time"

	"go.uber.org/zap"

	"mu-asset-cache/internal/asset"
)

// HotReloadSystem scans watched assets for changes once per frame.
type HotReloadSystem struct {
	cache *asset.Cache
	log   *zap.Logger
}

func NewHotReloadSystem(cache *asset.Cache, log *zap.Logger) *HotReloadSystem {
	return &HotReloadSystem{cache: cache, log: log}
}

func (s *HotReloadSystem) Phase() Phase { return PhasePreUpdate }

func (s *HotReloadSystem) Update(_ time.Duration) {
	if n := s.cache.UpdateHotReloading(); n > 0 {
		s.log.Debug("hot reload pass", zap.Int("reloaded", n))
	}
}

// GarbageSystem collects unreferenced assets every interval frames.
type GarbageSystem struct {
	cache    *asset.Cache
	log      *zap.Logger
	interval int
	frame    int
}

// NewGarbageSystem returns a collector running every interval frames;
// interval <= 1 collects every frame.
func NewGarbageSystem(cache *asset.Cache, interval int, log *zap.Logger) *GarbageSystem {
	if interval < 1 {
		interval = 1
	}
	return &GarbageSystem{cache: cache, log: log, interval: interval}
}

func (s *GarbageSystem) Phase() Phase { return PhaseCleanup }

func (s *GarbageSystem) Update(_ time.Duration) {
	s.frame++
	if s.frame < s.interval {
		return
	}
	s.frame = 0
	if n := s.cache.CollectGarbage(); n > 0 {
		s.log.Debug("asset garbage collected", zap.Int("freed", n), zap.Int("loaded", s.cache.Len()))
	}
}
