package camera

import (
	"image"
	gomath "math"
	"testing"

	"github.com/Faultbox/midgard-globe/internal/globe"
)

func near(a, b, tol float64) bool { return gomath.Abs(a-b) <= tol }

func TestPoseStraightDown(t *testing.T) {
	g := globe.NewEarth(nil)
	c := NewGlobeCamera()
	c.Range = 1000

	eye, center, up := c.Pose(g, 1)
	if !near(center.Z, globe.WGS84EquatorialRadius, 1e-6) {
		t.Errorf("center = %v", center)
	}
	if !near(eye.Z, globe.WGS84EquatorialRadius+1000, 1e-6) || !near(eye.X, 0, 1e-6) || !near(eye.Y, 0, 1e-6) {
		t.Errorf("eye = %v", eye)
	}
	if !near(up.Y, 1, 1e-12) {
		t.Errorf("up = %v, want north", up)
	}
}

func TestPoseTiltedKeepsRange(t *testing.T) {
	g := globe.NewEarth(nil)
	c := NewGlobeCamera()
	c.Lat, c.Lon = 30, 40
	c.Heading, c.Tilt = 70, 60
	c.Range = 5000

	eye, center, up := c.Pose(g, 1)
	if d := eye.Distance(center); !near(d, 5000, 1e-6) {
		t.Errorf("|eye-center| = %v, want 5000", d)
	}
	if dot := up.Dot(eye.Sub(center).Normalize()); !near(dot, 0, 1e-9) {
		t.Errorf("up not orthogonal to view direction: %v", dot)
	}
	// Tilted eye sits above the surface, behind the look-at point.
	normal, _, _ := c.Frame(g)
	if h := eye.Sub(center).Dot(normal); !near(h, 2500, 1e-6) {
		t.Errorf("eye height over look-at = %v, want 2500", h)
	}
}

func TestHandleZoomClamps(t *testing.T) {
	c := NewGlobeCamera()
	for i := 0; i < 200; i++ {
		c.HandleZoom(1)
	}
	if c.Range != c.MinRange {
		t.Errorf("Range = %v, want MinRange %v", c.Range, c.MinRange)
	}
	for i := 0; i < 200; i++ {
		c.HandleZoom(-1)
	}
	if c.Range != c.MaxRange {
		t.Errorf("Range = %v, want MaxRange %v", c.Range, c.MaxRange)
	}
}

func TestHandleTurn(t *testing.T) {
	c := NewGlobeCamera()
	c.HandleTurn(-40, 1000) // 0.25 deg per pixel
	if !near(c.Heading, 350, 1e-9) {
		t.Errorf("Heading = %v, want 350", c.Heading)
	}
	if c.Tilt != c.MaxTilt {
		t.Errorf("Tilt = %v, want %v", c.Tilt, c.MaxTilt)
	}
}

func TestHandleDragStaysOnGlobe(t *testing.T) {
	c := NewGlobeCamera()
	c.Lat = 89
	c.HandleDrag(0, 1e6)
	if c.Lat > 90 || c.Lat < -90 {
		t.Errorf("Lat = %v out of range", c.Lat)
	}
	c.HandleDrag(1e6, 0)
	if c.Lon > 180 || c.Lon < -180 {
		t.Errorf("Lon = %v out of range", c.Lon)
	}
}

func testView(t *testing.T) (*View, *GlobeCamera) {
	t.Helper()
	g := globe.NewEarth(nil)
	c := NewGlobeCamera()
	c.Range = 1.0e6
	return c.View(g, 1, 800, 600), c
}

func TestViewProjectsCenterToMiddle(t *testing.T) {
	v, _ := testView(t)
	x, y, depth, ok := v.Project(v.Center)
	if !ok || !near(x, 400, 1e-6) || !near(y, 300, 1e-6) {
		t.Errorf("Project(center) = %v, %v, %v", x, y, ok)
	}
	if depth <= 0 || depth >= 1 {
		t.Errorf("depth = %v, want inside (0, 1)", depth)
	}
	if !v.Frustum.ContainsPoint(v.Center) {
		t.Error("frustum does not contain the look-at point")
	}
}

func TestRayThroughScreenPoint(t *testing.T) {
	v, _ := testView(t)
	r := v.RayThroughScreenPoint(400, 300)
	want := v.Center.Sub(v.Eye).Normalize()
	if r.Direction.Dot(want) < 1-1e-9 {
		t.Errorf("ray direction = %v, want %v", r.Direction, want)
	}

	x, y, _, _ := v.Project(r.PointAt(5.0e5))
	if !near(x, 400, 1e-3) || !near(y, 300, 1e-3) {
		t.Errorf("point on center ray projects to %v, %v", x, y)
	}
}

func TestPickFrustum(t *testing.T) {
	v, _ := testView(t)
	f := v.PickFrustum(image.Pt(400, 300), 3)
	if !f.ContainsPoint(v.Center) {
		t.Error("pick frustum misses the point under the cursor")
	}

	off := v.RayThroughScreenPoint(10, 10).PointAt(5.0e5)
	if f.ContainsPoint(off) {
		t.Error("pick frustum contains a point far from the cursor")
	}
	if !v.Frustum.ContainsPoint(off) {
		t.Error("view frustum misses an on-screen point")
	}
}

func TestFieldOfViewScale(t *testing.T) {
	tests := []struct {
		fov  float64
		want float64
	}{
		{45, 1},
		{90, 1},
		{22.5, gomath.Tan(11.25*gomath.Pi/180) / gomath.Tan(22.5*gomath.Pi/180)},
	}
	for _, tt := range tests {
		v := &View{FieldOfView: tt.fov}
		if got := v.FieldOfViewScale(); !near(got, tt.want, 1e-12) {
			t.Errorf("FieldOfViewScale(%v) = %v, want %v", tt.fov, got, tt.want)
		}
	}
}

func TestClipDistances(t *testing.T) {
	g := globe.NewEarth(nil)
	eye := g.PointFromPosition(10, 20, 1.0e6)
	n, f := ClipDistances(g, eye, 1, 45)
	if n <= 1 || f <= n {
		t.Fatalf("ClipDistances = %v, %v", n, f)
	}
	horizon := gomath.Sqrt(1.0e6 * (2*g.Radius() + 1.0e6))
	if !near(f, horizon, 1) {
		t.Errorf("far = %v, want horizon %v", f, horizon)
	}

	// On the ground the near plane bottoms out at one meter and far is the
	// horizon seen from one meter up.
	ground := g.PointFromPosition(10, 20, 0)
	n, f = ClipDistances(g, ground, 1, 45)
	if n != 1 || !near(f, gomath.Sqrt(2*g.Radius()+1), 1e-3) {
		t.Errorf("ClipDistances at ground = %v, %v", n, f)
	}
}

func TestPixelSizeAtDistance(t *testing.T) {
	v := &View{FieldOfView: 90, Viewport: image.Rect(0, 0, 100, 100)}
	if got := v.PixelSizeAtDistance(50); !near(got, 1, 1e-12) {
		t.Errorf("PixelSizeAtDistance = %v, want 1", got)
	}
}
