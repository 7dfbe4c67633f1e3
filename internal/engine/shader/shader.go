// Package shader compiles the engine's OpenGL programs.
package shader

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// CompileProgram compiles vertex and fragment shaders and links them into a program.
// Returns the program ID or an error if compilation/linking fails.
func CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vert, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vert)

	frag, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(frag)

	program := gl.CreateProgram()
	gl.AttachShader(program, vert)
	gl.AttachShader(program, frag)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		msg := infoLog(logLen, func(buf *uint8) { gl.GetProgramInfoLog(program, logLen, nil, buf) })
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s", msg)
	}
	return program, nil
}

func compileShader(source string, shaderType uint32, name string) (uint32, error) {
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
		msg := infoLog(logLen, func(buf *uint8) { gl.GetShaderInfoLog(shader, logLen, nil, buf) })
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader: %s", name, msg)
	}
	return shader, nil
}

func infoLog(n int32, read func(*uint8)) string {
	if n <= 0 {
		return "no info log"
	}
	buf := make([]byte, n)
	read(&buf[0])
	return string(buf[:n-1])
}

// Uniform returns the location of the named uniform, or -1 when the
// program has no active uniform of that name.
func Uniform(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

// Attrib returns the location of the named vertex attribute, or -1.
func Attrib(program uint32, name string) int32 {
	return gl.GetAttribLocation(program, gl.Str(name+"\x00"))
}
