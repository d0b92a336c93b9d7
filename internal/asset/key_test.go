package asset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashIdentifier(t *testing.T) {
	assert.Equal(t, Key(14695981039346656037), HashIdentifier(""), "empty input hashes to the offset basis")
	assert.Equal(t, Key(0xaf63dc4c8601ec8c), HashIdentifier("a"))

	id := "Models/monkey.bmd:0"
	assert.Equal(t, HashIdentifier(id), HashIdentifier(id))
	assert.NotEqual(t, HashIdentifier("Models/monkey.bmd"), HashIdentifier(id),
		"the sub-asset suffix is part of the fingerprint")
}

func TestSplitIdentifier(t *testing.T) {
	tests := []struct {
		id, base, sub string
	}{
		{"Models/m.gltf:mesh_0", "Models/m.gltf", "mesh_0"},
		{"Textures/stone.png", "Textures/stone.png", ""},
		{"a:b:c", "a:b", "c"},
		{":orphan", "", "orphan"},
		{"", "", ""},
	}
	for _, tt := range tests {
		base, sub := SplitIdentifier(tt.id)
		assert.Equal(t, tt.base, base, tt.id)
		assert.Equal(t, tt.sub, sub, tt.id)
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindText, KindOf("Docs/readme.txt"))
	assert.Equal(t, KindImage, KindOf("Item/Texture/SWORD04.OZJ"))
	assert.Equal(t, KindSound, KindOf("Sounds/hit.wav"))
	assert.Equal(t, KindShader, KindOf("Shaders/flat.glsl"))
	assert.Equal(t, KindFont, KindOf("Fonts/ui.TTF"))
	assert.Equal(t, KindModel, KindOf("Item/Sword04.bmd"))
	assert.Equal(t, KindScript, KindOf("Scripts/ai.lua"))
	assert.Equal(t, KindData, KindOf("Data/items.yaml"))
	assert.Equal(t, KindUnknown, KindOf("Data/blob.xyz"))
	assert.Equal(t, KindUnknown, KindOf("noext"))
	assert.Equal(t, "model", KindModel.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
