// Package geom provides the built-in value types of graphsnap: small
// geometric and color tuples with value semantics and no identity.
//
// Every type here is encoded by an explicit codec pair rather than by the
// generic struct walker. [RegisterCodecs] installs them into a codec
// registry; the serial package's default registry does this already and maps
// each type to the wire tag "geom.<TypeName>".
//
// Components are float32, like the engine data these snapshots usually
// come from. The tree writer emits float32 at 32-bit precision, so every
// component round-trips bit-for-bit.
package geom

// Vector2 is a two-component vector.
type Vector2 struct{ X, Y float32 }

// Vector3 is a three-component vector.
type Vector3 struct{ X, Y, Z float32 }

// Vector4 is a four-component vector.
type Vector4 struct{ X, Y, Z, W float32 }

// Quaternion is a rotation stored as its four components.
type Quaternion struct{ X, Y, Z, W float32 }

// Identity is the rotation that leaves vectors unchanged.
var Identity = Quaternion{W: 1}

// Color is a linear RGBA color with float components in [0, 1].
type Color struct{ R, G, B, A float32 }

// Color32 is an RGBA color with 8-bit components.
type Color32 struct{ R, G, B, A uint8 }

// Color converts c to a float color.
func (c Color32) Color() Color {
	return Color{
		R: float32(c.R) / 255,
		G: float32(c.G) / 255,
		B: float32(c.B) / 255,
		A: float32(c.A) / 255,
	}
}

// Rect is an axis-aligned rectangle given by its minimum corner and size.
type Rect struct{ X, Y, Width, Height float32 }

// Contains reports whether p lies inside r. The maximum edges are exclusive.
func (r Rect) Contains(p Vector2) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Bounds is an axis-aligned box given by its center and total size.
type Bounds struct{ Center, Size Vector3 }

// Min returns the minimum corner of b.
func (b Bounds) Min() Vector3 {
	return Vector3{b.Center.X - b.Size.X/2, b.Center.Y - b.Size.Y/2, b.Center.Z - b.Size.Z/2}
}

// Max returns the maximum corner of b.
func (b Bounds) Max() Vector3 {
	return Vector3{b.Center.X + b.Size.X/2, b.Center.Y + b.Size.Y/2, b.Center.Z + b.Size.Z/2}
}

// Matrix4x4 is a 4x4 matrix stored column-major: element (row, col) lives at
// M[col*4+row].
type Matrix4x4 struct{ M [16]float32 }

// IdentityMatrix returns the 4x4 identity matrix.
func IdentityMatrix() Matrix4x4 {
	var m Matrix4x4
	for i := 0; i < 4; i++ {
		m.M[i*4+i] = 1
	}
	return m
}

// At returns element (row, col).
func (m Matrix4x4) At(row, col int) float32 {
	return m.M[col*4+row]
}

// Keyframe is one key of a Curve.
type Keyframe struct {
	Time, Value           float32
	InTangent, OutTangent float32
}

// Curve is a sequence of keyframes ordered by time.
type Curve struct{ Keys []Keyframe }

// ColorKey is a color stop of a Gradient.
type ColorKey struct {
	Color Color
	Time  float32
}

// AlphaKey is an alpha stop of a Gradient.
type AlphaKey struct{ Alpha, Time float32 }

// Gradient is a color ramp given by separate color and alpha stops.
type Gradient struct {
	ColorKeys []ColorKey
	AlphaKeys []AlphaKey
}

// LayerMask is a bit set of layers.
type LayerMask struct{ Value int32 }

// Has reports whether layer is in the mask.
func (m LayerMask) Has(layer int) bool {
	return layer >= 0 && layer < 32 && m.Value&(1<<layer) != 0
}
