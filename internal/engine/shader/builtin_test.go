package shader

import (
	"strings"
	"testing"
)

func TestBuiltin(t *testing.T) {
	tests := []struct {
		name  string
		ok    bool
		block string
	}{
		{TerrainVertex, true, VertexBlockName},
		{TerrainFrag, true, FragmentBlockName},
		{BuiltinPrefix + "missing.frag", false, ""},
		{"shaders/terrain.vert", false, ""},
	}
	for _, tt := range tests {
		src, ok := Builtin(tt.name)
		if ok != tt.ok {
			t.Errorf("Builtin(%q) ok = %v", tt.name, ok)
			continue
		}
		if ok && !strings.Contains(src, "uniform "+tt.block) {
			t.Errorf("%s does not declare %s", tt.name, tt.block)
		}
	}

	frag, _ := Builtin(TerrainFrag)
	if !strings.Contains(frag, "#define MAX_LIGHTS 4") {
		t.Error("light array size not substituted")
	}
	if !IsBuiltin(TerrainVertex) || IsBuiltin("terrain.vert") {
		t.Error("IsBuiltin prefix check")
	}
}
