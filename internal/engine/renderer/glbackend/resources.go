package glbackend

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/planetlod/internal/engine/renderer"
	"github.com/Faultbox/planetlod/internal/engine/shader"
	"github.com/Faultbox/planetlod/internal/engine/texture"
)

// LoadShader compiles a shader from a built-in name or a file.
func (b *Backend) LoadShader(path string, stage renderer.ShaderStage) (any, error) {
	src, err := b.shaderSource(path)
	if err != nil {
		return nil, err
	}
	id, err := shader.Compile(src, glStage(stage), path)
	if err != nil {
		return nil, err
	}
	b.log.Debug("shader compiled", zap.String("path", path))
	return id, nil
}

// ReleaseShader deletes a compiled shader.
func (b *Backend) ReleaseShader(handle any) {
	if id, ok := handle.(uint32); ok && id != 0 {
		gl.DeleteShader(id)
	}
}

// LoadTexture decodes an image file and uploads it with mipmaps.
func (b *Backend) LoadTexture(path string) (any, error) {
	img, err := texture.Load(path)
	if err != nil {
		return nil, fmt.Errorf("texture %s: %w", path, err)
	}
	id := uploadTexture(img)
	b.log.Debug("texture uploaded", zap.String("path", path),
		zap.Int("width", img.Rect.Dx()), zap.Int("height", img.Rect.Dy()))
	return id, nil
}

// ReleaseTexture deletes an uploaded texture.
func (b *Backend) ReleaseTexture(handle any) {
	if id, ok := handle.(uint32); ok && id != 0 {
		gl.DeleteTextures(1, &id)
	}
}

func (b *Backend) shaderSource(path string) (string, error) {
	if src, ok := shader.Builtin(path); ok {
		return src, nil
	}
	if shader.IsBuiltin(path) {
		return "", fmt.Errorf("unknown built-in shader %q", path)
	}
	data, err := os.ReadFile(resolvePath(b.cfg.ShaderDir, path))
	if err != nil {
		return "", fmt.Errorf("read shader: %w", err)
	}
	return string(data), nil
}

func resolvePath(dir, path string) string {
	if dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func glStage(stage renderer.ShaderStage) uint32 {
	if stage == renderer.StageFragment {
		return gl.FRAGMENT_SHADER
	}
	return gl.VERTEX_SHADER
}

func uploadTexture(img *image.RGBA) uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8,
		int32(img.Rect.Dx()), int32(img.Rect.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return id
}
