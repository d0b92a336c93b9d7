// Command assetwatch acquires assets and keeps them fresh while their files
// change, running the cache's hot reload and garbage collection once per frame.
// Textures referenced by a watched model follow the model across reloads.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"mu-asset-cache/internal/asset"
	"mu-asset-cache/internal/config"
	"mu-asset-cache/internal/loader"
	"mu-asset-cache/internal/logging"
	"mu-asset-cache/internal/system"
	"mu-asset-cache/internal/texture"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "assetwatch: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configFile := flag.String("config", "", "Path to a TOML or YAML config file")
	dataDir := flag.String("data", "", "Base directory (default: auto-detect)")
	gameRoot := flag.String("game", "", "Game asset root, searched first")
	engineRoot := flag.String("engine", "", "Engine asset root, searched second")
	noHotReload := flag.Bool("no-hot-reload", false, "Disable hot reloading")
	frames := flag.Int("frames", 0, "Stop after N frames (default: run until interrupted)")
	logLevel := flag.String("log-level", "", "debug, info, warn or error")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: assetwatch [flags] identifier...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			return err
		}
	}
	cfg.Resolve(config.Flags{
		DataDir:     *dataDir,
		GameRoot:    *gameRoot,
		EngineRoot:  *engineRoot,
		NoHotReload: *noHotReload,
		LogLevel:    *logLevel,
	})

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync()

	textures := texture.BuildIndex(cfg.Assets.GameRoot, cfg.Assets.EngineRoot)
	loaders, err := loader.Defaults(loader.Options{
		FontSize: cfg.Assets.FontSize,
		BMDKey:   cfg.Assets.BMDKey,
		Textures: textures,
	})
	if err != nil {
		return err
	}
	cache := asset.New(asset.Options{
		GameRoot:   cfg.Assets.GameRoot,
		EngineRoot: cfg.Assets.EngineRoot,
		HotReload:  cfg.Assets.HotReload,
		Loaders:    loaders,
		Log:        log,
	})
	defer cache.Close()

	log.Info("asset roots",
		zap.String("game", cfg.Assets.GameRoot),
		zap.String("engine", cfg.Assets.EngineRoot),
		zap.Bool("hot_reload", cfg.Assets.HotReload),
		zap.Int("textures", textures.Len()))

	tracker := newTextureSystem(cache, modelTextures, log)
	handles := make([]*asset.Handle, 0, flag.NArg())
	for _, id := range flag.Args() {
		h := cache.Acquire(id)
		handles = append(handles, h)
		a, err := cache.Resolve(h)
		if err != nil {
			// Already logged by the cache; a later reload may fix it.
			continue
		}
		log.Info("watching", zap.Stringer("handle", h))
		tracker.Track(h, a)
	}
	defer func() {
		tracker.Close()
		for _, h := range handles {
			h.Release()
		}
		n := cache.CollectGarbage()
		log.Info("released assets", zap.Int("freed", n))
	}()

	runner := system.NewRunner()
	runner.Register(system.NewHotReloadSystem(cache, log))
	runner.Register(tracker)
	runner.Register(system.NewGarbageSystem(cache, cfg.Frame.GCInterval, log))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownCh)

	ticker := time.NewTicker(cfg.Frame.TickRate)
	defer ticker.Stop()

	log.Info("frame loop started", zap.Duration("tick", cfg.Frame.TickRate), zap.Int("assets", cache.Len()))

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Frame.TickRate)
			if *frames > 0 && runner.Frames() >= uint64(*frames) {
				log.Info("frame budget reached", zap.Uint64("frames", runner.Frames()))
				return nil
			}
		case sig := <-shutdownCh:
			log.Info("shutting down", zap.String("signal", sig.String()), zap.Uint64("frames", runner.Frames()))
			return nil
		}
	}
}
