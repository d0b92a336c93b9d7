package asset

import (
	"path/filepath"
	"strings"
)

// Kind classifies an asset by the loader responsible for it.
type Kind int

const (
	KindUnknown Kind = iota
	KindText
	KindImage
	KindSound
	KindShader
	KindFont
	KindModel
	KindMesh // only ever a sub-asset of a model
	KindScript
	KindData
)

var kindNames = [...]string{
	KindUnknown: "unknown",
	KindText:    "text",
	KindImage:   "image",
	KindSound:   "sound",
	KindShader:  "shader",
	KindFont:    "font",
	KindModel:   "model",
	KindMesh:    "mesh",
	KindScript:  "script",
	KindData:    "data",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// extension (lowercase, with dot) → kind
var extKinds = map[string]Kind{
	".txt":    KindText,
	".png":    KindImage,
	".jpg":    KindImage,
	".jpeg":   KindImage,
	".bmp":    KindImage,
	".tga":    KindImage,
	".webp":   KindImage,
	".ozj":    KindImage,
	".ozt":    KindImage,
	".wav":    KindSound,
	".glsl":   KindShader,
	".shader": KindShader,
	".vert":   KindShader,
	".frag":   KindShader,
	".ttf":    KindFont,
	".otf":    KindFont,
	".bmd":    KindModel,
	".lua":    KindScript,
	".yaml":   KindData,
	".yml":    KindData,
	".toml":   KindData,
	".json":   KindData,
}

// KindOf classifies a path by its extension, case-insensitively.
func KindOf(path string) Kind {
	return extKinds[strings.ToLower(filepath.Ext(path))]
}

// hotReloadable reports whether assets of this kind are enrolled in the watch list.
// Audio is excluded.
func (k Kind) hotReloadable() bool {
	return k != KindSound && k != KindMesh && k != KindUnknown
}
