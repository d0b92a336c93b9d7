// Package batch encodes resolved images to WebP files with a worker pool.
package batch

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"go.uber.org/zap"
)

// Job is one image to export. Images must not be mutated while Run is
// encoding them.
type Job struct {
	Identifier string
	Kind       string
	Image      image.Image
}

// Result holds the outcome of exporting one job.
type Result struct {
	Identifier string
	Kind       string
	Output     string // relative to the output directory
	Success    bool
	Error      string
}

// OutputName maps an asset identifier to a relative .webp path.
// "Item/sword.bmd:1" becomes "Item/sword_1.webp".
func OutputName(id string) string {
	base, sub := id, ""
	if i := strings.LastIndexByte(id, ':'); i >= 0 {
		base, sub = id[:i], id[i+1:]
	}
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if sub != "" {
		name += "_" + sub
	}
	return filepath.FromSlash(name + ".webp")
}

// Config holds the shared settings of an export run.
type Config struct {
	OutputDir string
	MaxSize   int // longest side in pixels; 0 keeps the original size
	Workers   int
	Log       *zap.Logger
}

// Run encodes all jobs using a worker pool.
func Run(cfg Config, jobs []Job) []Result {
	workers := max(cfg.Workers, 1)
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	total := len(jobs)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if p := processed.Load(); p > 0 {
					rate := float64(p) / time.Since(start).Seconds()
					log.Info("export progress", zap.Int64("done", p), zap.Int("total", total), zap.Float64("per_sec", rate))
				}
			}
		}
	}()

	jobChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				results[idx] = export(cfg, jobs[idx])
				processed.Add(1)
			}
		}()
	}

	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	close(done)

	return results
}

func export(cfg Config, job Job) Result {
	res := Result{Identifier: job.Identifier, Kind: job.Kind, Output: OutputName(job.Identifier)}
	fail := func(err error) Result {
		res.Error = err.Error()
		return res
	}

	outPath := filepath.Join(cfg.OutputDir, res.Output)
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fail(err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fail(err)
	}
	defer f.Close()

	if err := nativewebp.Encode(f, Downsample(job.Image, cfg.MaxSize), nil); err != nil {
		return fail(fmt.Errorf("WebP encode: %w", err))
	}
	res.Success = true
	return res
}
