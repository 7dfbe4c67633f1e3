package shader

import (
	"strings"
	"testing"

	"github.com/Faultbox/midgard-globe/internal/engine/gpu"
)

func TestSourcesDeclareEngineNames(t *testing.T) {
	tests := []struct {
		src  Source
		want []string
	}{
		{SurfaceSource(), []string{
			gpu.AttribVertexPoint, gpu.AttribVertexTexCoord,
			gpu.UniformMvpMatrix, gpu.UniformTexMatrix, gpu.UniformTileMatrix,
			gpu.UniformColor, gpu.UniformUseTexture, gpu.UniformTexture,
		}},
		{PickSource(), []string{
			gpu.AttribVertexPoint, gpu.AttribVertexColor,
			gpu.UniformMvpMatrix, gpu.UniformColor, gpu.UniformUseVertexColor,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.src.Name, func(t *testing.T) {
			all := tt.src.Vertex + tt.src.Fragment
			for _, name := range tt.want {
				if !strings.Contains(all, name) {
					t.Errorf("%s sources never mention %s", tt.src.Name, name)
				}
			}
			for stage, s := range map[string]string{"vertex": tt.src.Vertex, "fragment": tt.src.Fragment} {
				if !strings.HasPrefix(strings.TrimSpace(s), "#version 410 core") {
					t.Errorf("%s %s shader does not start with #version 410 core", tt.src.Name, stage)
				}
			}
		})
	}
}
