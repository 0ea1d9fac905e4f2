package glbackend

import (
	"path/filepath"
	"testing"

	"github.com/Faultbox/planetlod/internal/engine/renderer"
)

func TestAttribLayout(t *testing.T) {
	tests := []struct {
		name   string
		vt     renderer.VertexType
		stride int32
		want   []attrib
	}{
		{
			name:   "terrain",
			vt:     renderer.VertexPNT,
			stride: 32,
			want: []attrib{
				{location: locPosition, size: 3, offset: 0},
				{location: locTexCoord, size: 2, offset: 12},
				{location: locNormal, size: 3, offset: 20},
			},
		},
		{
			name:   "colored lines",
			vt:     renderer.VertexType{Position: true, Color: true},
			stride: 24,
			want: []attrib{
				{location: locPosition, size: 3, offset: 0},
				{location: locColor, size: 3, offset: 12},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, stride := attribLayout(tt.vt)
			if stride != tt.stride {
				t.Errorf("stride = %d, want %d", stride, tt.stride)
			}
			if int(stride) != tt.vt.Floats()*4 {
				t.Errorf("stride %d disagrees with %d floats", stride, tt.vt.Floats())
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d attribs, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("attrib %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestResolvePath(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "a.vert")
	tests := []struct {
		dir, path, want string
	}{
		{"", "a.vert", "a.vert"},
		{"shaders", "a.vert", filepath.Join("shaders", "a.vert")},
		{"shaders", abs, abs},
	}
	for _, tt := range tests {
		if got := resolvePath(tt.dir, tt.path); got != tt.want {
			t.Errorf("resolvePath(%q, %q) = %q, want %q", tt.dir, tt.path, got, tt.want)
		}
	}
}
