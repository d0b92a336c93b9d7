package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const combined = `// sprite shader
#type vertex
#version 330 core
void main() { gl_Position = vec4(0.0); }

#type fragment
#version 330 core
out vec4 color;
void main() { color = vec4(1.0); }
`

func TestParseShader(t *testing.T) {
	stages, err := parseShader(".glsl", "\n#type vertex\nvoid main() {}\n#type FRAGMENT\nvoid main(){}\n")
	require.NoError(t, err)
	assert.Len(t, stages, 2)
	assert.Contains(t, stages[StageFragment], "void main(){}")

	stages, err = parseShader(".frag", "void main() {}")
	require.NoError(t, err)
	assert.Equal(t, map[Stage]string{StageFragment: "void main() {}"}, stages)

	bad := map[string]string{
		"no stages":      "",
		"leading source": "void main() {}\n#type vertex\nvoid main() {}",
		"unknown stage":  "#type tessellation\nvoid main() {}",
		"duplicate":      "#type vertex\nvoid main() {}\n#type vertex\nvoid main() {}",
		"no entry point": "#type vertex\nvoid helper() {}",
	}
	for name, src := range bad {
		_, err := parseShader(".shader", src)
		assert.Error(t, err, name)
	}
}

func TestShaderReloadInPlace(t *testing.T) {
	ctx := contextFor(t, "sprite.glsl", []byte(combined))
	a, err := LoadShader(ctx)
	require.NoError(t, err)
	sh := a.(*Shader)
	assert.Contains(t, sh.Stages[StageVertex], "gl_Position")
	assert.Zero(t, sh.Generation)

	rewrite(t, ctx, []byte("#type compute\nvoid main() {}\n"))
	require.NoError(t, sh.Reload(ctx))
	assert.Equal(t, 1, sh.Generation)
	assert.Len(t, sh.Stages, 1)
	assert.Contains(t, sh.Stages, StageCompute)

	rewrite(t, ctx, []byte("#type compute\n"))
	assert.Error(t, sh.Reload(ctx))
	assert.Equal(t, 1, sh.Generation, "failed reload keeps the previous program")
	assert.Contains(t, sh.Stages, StageCompute)
}
