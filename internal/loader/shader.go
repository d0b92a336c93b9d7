package loader

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"mu-asset-cache/internal/asset"
)

// Stage is a shader pipeline stage.
type Stage string

const (
	StageVertex   Stage = "vertex"
	StageFragment Stage = "fragment"
	StageGeometry Stage = "geometry"
	StageCompute  Stage = "compute"
)

const stageMarker = "#type "

var entryPoint = regexp.MustCompile(`\bvoid\s+main\s*\(`)

// Shader holds the per-stage sources of a GLSL program. It reloads in
// place: handles keep pointing at the same Shader and Generation counts
// successful reloads.
type Shader struct {
	Stages     map[Stage]string
	Generation int
}

func (*Shader) Kind() asset.Kind { return asset.KindShader }
func (s *Shader) Release()       { s.Stages = nil }

// Reload re-reads and re-validates the source. On error the previous
// stages are kept.
func (s *Shader) Reload(ctx asset.LoadContext) error {
	stages, err := readShader(ctx)
	if err != nil {
		return err
	}
	s.Stages = stages
	s.Generation++
	ctx.Log.Debug("shader reloaded", zap.String("identifier", ctx.Identifier), zap.Int("generation", s.Generation))
	return nil
}

// LoadShader reads a GLSL file. Files ending in .vert or .frag hold a
// single stage; .glsl and .shader files are split on "#type <stage>" lines,
// with only comments allowed before the first one.
func LoadShader(ctx asset.LoadContext) (asset.Asset, error) {
	stages, err := readShader(ctx)
	if err != nil {
		return nil, err
	}
	return &Shader{Stages: stages}, nil
}

func readShader(ctx asset.LoadContext) (map[Stage]string, error) {
	raw, err := ctx.ReadFile()
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", ctx.Path, err)
	}
	stages, err := parseShader(filepath.Ext(ctx.Path), string(raw))
	if err != nil {
		return nil, fmt.Errorf("loader: shader %s: %w", ctx.Path, err)
	}
	return stages, nil
}

func parseShader(ext, src string) (map[Stage]string, error) {
	stages := make(map[Stage]string)
	switch strings.ToLower(ext) {
	case ".vert":
		stages[StageVertex] = src
	case ".frag":
		stages[StageFragment] = src
	default:
		var current Stage
		var body strings.Builder
		flush := func() {
			if current != "" {
				stages[current] = body.String()
			}
			body.Reset()
		}
		for _, line := range strings.SplitAfter(src, "\n") {
			trimmed := strings.TrimSpace(line)
			if !strings.HasPrefix(trimmed, stageMarker) {
				if current == "" && trimmed != "" && !strings.HasPrefix(trimmed, "//") {
					return nil, fmt.Errorf("source before first %q marker", strings.TrimSpace(stageMarker))
				}
				body.WriteString(line)
				continue
			}
			flush()
			st := Stage(strings.ToLower(strings.TrimSpace(strings.TrimPrefix(trimmed, stageMarker))))
			switch st {
			case StageVertex, StageFragment, StageGeometry, StageCompute:
			default:
				return nil, fmt.Errorf("unknown stage %q", st)
			}
			if _, dup := stages[st]; dup {
				return nil, fmt.Errorf("duplicate %s stage", st)
			}
			current = st
		}
		flush()
	}

	if len(stages) == 0 {
		return nil, fmt.Errorf("no shader stages")
	}
	for st, body := range stages {
		if !entryPoint.MatchString(body) {
			return nil, fmt.Errorf("%s stage has no main function", st)
		}
	}
	return stages, nil
}
