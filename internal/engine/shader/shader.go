// Package shader provides OpenGL shader compilation utilities and the
// built-in terrain shaders.
package shader

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Uniform block binding points shared by every program.
const (
	VertexBlockBinding   = 0
	FragmentBlockBinding = 1
)

// Block names as declared in GLSL.
const (
	VertexBlockName   = "VertexBlock"
	FragmentBlockName = "FragmentBlock"
)

// CompileProgram compiles vertex and fragment shaders and links them into a program.
// Returns the program ID or an error if compilation/linking fails.
func CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertShader, err := Compile(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := Compile(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragShader)

	return Link(vertShader, fragShader)
}

// Link links compiled shaders into a program, binds its uniform blocks to
// the shared binding points and points sampler "texture0" at unit 0.
// The shaders stay owned by the caller.
func Link(vertShader, fragShader uint32) (uint32, error) {
	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetProgramInfoLog(program, logLen, nil, &log[0])
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s", string(log))
	}
	gl.DetachShader(program, vertShader)
	gl.DetachShader(program, fragShader)

	bindBlock(program, VertexBlockName, VertexBlockBinding)
	bindBlock(program, FragmentBlockName, FragmentBlockBinding)

	gl.UseProgram(program)
	if loc := GetUniform(program, "texture0"); loc >= 0 {
		gl.Uniform1i(loc, 0)
	}
	gl.UseProgram(0)

	return program, nil
}

func bindBlock(program uint32, name string, binding uint32) {
	idx := gl.GetUniformBlockIndex(program, gl.Str(name+"\x00"))
	if idx != gl.INVALID_INDEX {
		gl.UniformBlockBinding(program, idx, binding)
	}
}

// Compile compiles a single shader of the given type.
func Compile(source string, shaderType uint32, name string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader: %s", name, string(log))
	}

	return shader, nil
}

// GetUniform returns the uniform location for the given name.
// Returns -1 if the uniform is not found or inactive.
func GetUniform(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}
