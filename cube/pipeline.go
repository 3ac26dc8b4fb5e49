package cube

import (
	"log/slog"
	"strings"

	"spincube/gfx"
)

// PositionAttrib is the attribute index bound to PositionName.
const PositionAttrib uint32 = 0

// Attribute and uniform names the shaders must declare.
const (
	PositionName   = "in_position"
	ProjectionName = "projection_matrix"
	ModelViewName  = "modelview_matrix"
)

// Pipeline is a linked, active shader program and its uniform locations.
type Pipeline struct {
	Program  gfx.Program
	Vertex   gfx.Shader
	Fragment gfx.Shader

	Projection gfx.Uniform
	ModelView  gfx.Uniform

	Compiled bool
	Linked   bool
}

// NewPipeline compiles both stages, links them with attribute 0 bound to in_position and
// makes the program current. Compile and link failures are logged, not returned; the
// pipeline is built from whatever handles the driver gave back.
func NewPipeline(d gfx.Driver, vertexSrc, fragmentSrc string, log *slog.Logger) Pipeline {
	var p Pipeline
	p.Vertex = d.CreateShader(gfx.VertexShader)
	p.Fragment = d.CreateShader(gfx.FragmentShader)
	d.ShaderSource(p.Vertex, vertexSrc)
	d.ShaderSource(p.Fragment, fragmentSrc)
	d.CompileShader(p.Vertex)
	d.CompileShader(p.Fragment)

	vok := shaderStatus(d, p.Vertex, gfx.VertexShader, log)
	fok := shaderStatus(d, p.Fragment, gfx.FragmentShader, log)
	p.Compiled = vok && fok

	p.Program = d.CreateProgram()
	d.AttachShader(p.Program, p.Vertex)
	d.AttachShader(p.Program, p.Fragment)
	d.BindAttribLocation(p.Program, PositionAttrib, PositionName)
	d.LinkProgram(p.Program)

	p.Linked = d.ProgramLinked(p.Program)
	infoLog := strings.TrimSpace(d.ProgramInfoLog(p.Program))
	switch {
	case !p.Linked:
		log.Warn("program link failed", "program", p.Program, "log", infoLog)
	case infoLog != "":
		log.Info("program linked", "program", p.Program, "log", infoLog)
	default:
		log.Debug("program linked", "program", p.Program)
	}
	d.UseProgram(p.Program)

	p.Projection = d.UniformLocation(p.Program, ProjectionName)
	p.ModelView = d.UniformLocation(p.Program, ModelViewName)
	if p.Linked && (!p.Projection.Valid() || !p.ModelView.Valid()) {
		log.Warn("matrix uniform missing", "projection", p.Projection, "modelview", p.ModelView)
	}
	return p
}

func shaderStatus(d gfx.Driver, s gfx.Shader, typ gfx.ShaderType, log *slog.Logger) bool {
	ok := d.ShaderCompiled(s)
	infoLog := strings.TrimSpace(d.ShaderInfoLog(s))
	switch {
	case !ok:
		log.Warn("shader compile failed", "stage", typ, "log", infoLog)
	case infoLog != "":
		log.Info("shader compiled", "stage", typ, "log", infoLog)
	default:
		log.Debug("shader compiled", "stage", typ)
	}
	return ok
}

// Delete releases the program and both shaders.
func (p Pipeline) Delete(d gfx.Driver) {
	d.DeleteProgram(p.Program)
	d.DeleteShader(p.Vertex)
	d.DeleteShader(p.Fragment)
}
