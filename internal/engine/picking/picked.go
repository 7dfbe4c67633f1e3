package picking

import (
	"image"

	"github.com/Faultbox/midgard-globe/pkg/geo"
	"github.com/Faultbox/midgard-globe/pkg/math"
)

// PickedObject is the result of resolving a screen pick.
type PickedObject struct {
	ScreenPoint image.Point
	ColorCode   int

	// Position is the geographic position of the hit.
	Position geo.Position
	// Point is the hit in world coordinates.
	Point math.Vec3

	// Terrain is true when the hit is the terrain surface itself.
	Terrain bool
	// Object is the picked user object, nil for terrain.
	Object any
}
