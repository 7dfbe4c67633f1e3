package shader

import (
	_ "embed"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/multierr"
)

var (
	//go:embed glsl/surface.vert
	surfaceVertex string
	//go:embed glsl/surface.frag
	surfaceFragment string

	//go:embed glsl/pick.vert
	pickVertex string
	//go:embed glsl/pick.frag
	pickFragment string
)

// Source is the GLSL of one program.
type Source struct {
	Name     string
	Vertex   string
	Fragment string
}

// SurfaceSource draws terrain tiles: flat colored, or textured with an
// imagery tile through uTexMatrix and clipped to the tile by uTileMatrix.
func SurfaceSource() Source {
	return Source{Name: "surface", Vertex: surfaceVertex, Fragment: surfaceFragment}
}

// PickSource draws unique pick colors, per draw from uColor or per vertex.
func PickSource() Source {
	return Source{Name: "pick", Vertex: pickVertex, Fragment: pickFragment}
}

// Programs are the linked programs the scene draws with.
type Programs struct {
	Surface uint32
	Pick    uint32
}

// Load compiles and links every program. It must run on the goroutine
// owning the GL context.
func Load() (*Programs, error) {
	p := &Programs{}
	var err error
	if p.Surface, err = compile(SurfaceSource()); err != nil {
		return nil, err
	}
	if p.Pick, err = compile(PickSource()); err != nil {
		p.Delete()
		return nil, err
	}
	return p, nil
}

func compile(src Source) (uint32, error) {
	id, err := CompileProgram(src.Vertex, src.Fragment)
	if err != nil {
		return 0, fmt.Errorf("%s program: %w", src.Name, err)
	}
	return id, nil
}

// Delete releases the programs.
func (p *Programs) Delete() {
	for _, id := range []*uint32{&p.Surface, &p.Pick} {
		if *id != 0 {
			gl.DeleteProgram(*id)
			*id = 0
		}
	}
}

// Validate checks that each program exposes the uniforms named in want.
// Missing uniforms are collected into one error.
func (p *Programs) Validate(want map[string][]string) error {
	var err error
	ids := map[string]uint32{"surface": p.Surface, "pick": p.Pick}
	for prog, names := range want {
		id, ok := ids[prog]
		if !ok {
			err = multierr.Append(err, fmt.Errorf("unknown program %q", prog))
			continue
		}
		for _, name := range names {
			if Uniform(id, name) < 0 {
				err = multierr.Append(err, fmt.Errorf("%s program: no uniform %q", prog, name))
			}
		}
	}
	return err
}
