// Command assetdump resolves assets once, prints a summary line for each
// and optionally exports images and font atlases as WebP.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"mu-asset-cache/internal/asset"
	"mu-asset-cache/internal/batch"
	"mu-asset-cache/internal/config"
	"mu-asset-cache/internal/loader"
	"mu-asset-cache/internal/logging"
	"mu-asset-cache/internal/texture"
)

func main() {
	configFile := flag.String("config", "", "Path to a TOML or YAML config file")
	dataDir := flag.String("data", "", "Base directory (default: auto-detect)")
	gameRoot := flag.String("game", "", "Game asset root, searched first")
	engineRoot := flag.String("engine", "", "Engine asset root, searched second")
	outputDir := flag.String("output", "", "Write images and font atlases as WebP into this directory")
	workers := flag.Int("workers", 0, "Number of encoder goroutines (default: NumCPU)")
	maxSize := flag.Int("max-size", 0, "Downsample exports so the longest side fits (default: original size)")
	logLevel := flag.String("log-level", "warn", "debug, info, warn or error")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: assetdump [flags] identifier...")
		os.Exit(2)
	}

	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{
		DataDir:     *dataDir,
		GameRoot:    *gameRoot,
		EngineRoot:  *engineRoot,
		NoHotReload: true,
		LogLevel:    *logLevel,
	})

	log, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	textures := texture.BuildIndex(cfg.Assets.GameRoot, cfg.Assets.EngineRoot)
	loaders, err := loader.Defaults(loader.Options{
		FontSize: cfg.Assets.FontSize,
		BMDKey:   cfg.Assets.BMDKey,
		Textures: textures,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cache := asset.New(asset.Options{
		GameRoot:   cfg.Assets.GameRoot,
		EngineRoot: cfg.Assets.EngineRoot,
		Loaders:    loaders,
		Log:        log,
	})

	var (
		jobs    []batch.Job
		handles []*asset.Handle
	)
	failed := 0
	for _, id := range flag.Args() {
		h := cache.Acquire(id)
		a, err := cache.Resolve(h)
		if err != nil {
			fmt.Printf("FAIL %s: %v\n", id, err)
			failed++
			h.Release()
			continue
		}
		fmt.Printf("OK   %-40s %-7s %s\n", id, a.Kind(), summarize(a))
		if img := exportable(a); img != nil {
			jobs = append(jobs, batch.Job{Identifier: id, Kind: a.Kind().String(), Image: img})
		}
		// Held until export finishes: job images belong to the cached assets.
		handles = append(handles, h)
	}

	if *outputDir != "" && len(jobs) > 0 {
		n := *workers
		if n <= 0 {
			n = runtime.NumCPU()
		}
		start := time.Now()
		results := batch.Run(batch.Config{OutputDir: *outputDir, MaxSize: *maxSize, Workers: n, Log: log}, jobs)
		exported := 0
		for _, r := range results {
			if r.Success {
				exported++
			} else {
				fmt.Printf("FAIL export %s: %s\n", r.Identifier, r.Error)
				failed++
			}
		}
		manifestPath := filepath.Join(*outputDir, "manifest.json")
		if err := batch.WriteManifest(manifestPath, results); err != nil {
			log.Warn("manifest write failed", zap.Error(err))
		}
		fmt.Printf("Exported %d/%d to %s in %.1fs\n", exported, len(jobs), *outputDir, time.Since(start).Seconds())
	}

	for _, h := range handles {
		h.Release()
	}
	cache.Close()

	if failed > 0 {
		log.Sync()
		os.Exit(1)
	}
}

func summarize(a asset.Asset) string {
	switch v := a.(type) {
	case *loader.Text:
		return fmt.Sprintf("%d chars, %s", len([]rune(v.Content)), v.Encoding)
	case *loader.Image:
		b := v.Bounds()
		return fmt.Sprintf("%dx%d %s", b.Dx(), b.Dy(), v.Format)
	case *loader.Sound:
		return fmt.Sprintf("%d ch, %d Hz, %d bit, %s", v.Channels, v.SampleRate, v.BitsPerSample, v.Duration())
	case *loader.Shader:
		return fmt.Sprintf("%d stages", len(v.Stages))
	case *loader.Font:
		b := v.Atlas.Bounds()
		return fmt.Sprintf("%.0fpt, %d glyphs, atlas %dx%d", v.Size, len(v.Glyphs), b.Dx(), b.Dy())
	case *loader.Model:
		return fmt.Sprintf("%q v%d, %d meshes, %d bones", v.Name, v.Version, v.SubAssetCount(), v.Bones)
	case *loader.Mesh:
		tex := v.Texture
		if v.TextureID != "" {
			tex = v.TextureID
		}
		return fmt.Sprintf("%d vertices, %d indices, texture %s", len(v.Geometry.Vertices), len(v.Geometry.Indices), tex)
	case *loader.Script:
		return fmt.Sprintf("%d constants", len(v.Proto.Constants))
	case *loader.Data:
		return fmt.Sprintf("%s, %d keys", v.Format, len(v.Values))
	}
	return ""
}

// exportable returns the image to write for a, if any. Font atlases are
// rendered white on transparent.
func exportable(a asset.Asset) image.Image {
	switch v := a.(type) {
	case *loader.Image:
		return v.Pixels
	case *loader.Font:
		dst := image.NewNRGBA(v.Atlas.Bounds())
		draw.DrawMask(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, v.Atlas, v.Atlas.Bounds().Min, draw.Src)
		return dst
	}
	return nil
}
