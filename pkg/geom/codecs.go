package geom

import (
	"reflect"

	"github.com/matzehuels/graphsnap/pkg/codec"
	"github.com/matzehuels/graphsnap/pkg/tree"
)

// TagPrefix is prepended to the Go type name to form a geom wire tag.
const TagPrefix = "geom."

// Types returns the value types installed by RegisterCodecs.
func Types() []reflect.Type {
	return []reflect.Type{
		reflect.TypeFor[Vector2](),
		reflect.TypeFor[Vector3](),
		reflect.TypeFor[Vector4](),
		reflect.TypeFor[Quaternion](),
		reflect.TypeFor[Color](),
		reflect.TypeFor[Color32](),
		reflect.TypeFor[Rect](),
		reflect.TypeFor[Bounds](),
		reflect.TypeFor[Matrix4x4](),
		reflect.TypeFor[Curve](),
		reflect.TypeFor[Gradient](),
		reflect.TypeFor[LayerMask](),
	}
}

// RegisterCodecs installs the codec of every geom type into r.
func RegisterCodecs(r *codec.Registry) {
	codec.Register(r, encodeVector2, decodeVector2)
	codec.Register(r, encodeVector3, decodeVector3)
	codec.Register(r, encodeVector4, decodeVector4)
	codec.Register(r, encodeQuaternion, decodeQuaternion)
	codec.Register(r, encodeColor, decodeColor)
	codec.Register(r, encodeColor32, decodeColor32)
	codec.Register(r, encodeRect, decodeRect)
	codec.Register(r, encodeBounds, decodeBounds)
	codec.Register(r, encodeMatrix, decodeMatrix)
	codec.Register(r, encodeCurve, decodeCurve)
	codec.Register(r, encodeGradient, decodeGradient)
	codec.Register(r, encodeLayerMask, decodeLayerMask)
}

// =============================================================================
// Vectors
// =============================================================================

func encodeVector2(v Vector2) *tree.Object {
	return codec.Fields("x", v.X, "y", v.Y)
}

func decodeVector2(r *codec.Reader) (Vector2, error) {
	v := Vector2{X: r.Float32("x"), Y: r.Float32("y")}
	return v, r.Err()
}

func encodeVector3(v Vector3) *tree.Object {
	return codec.Fields("x", v.X, "y", v.Y, "z", v.Z)
}

func decodeVector3(r *codec.Reader) (Vector3, error) {
	v := readVector3(r)
	return v, r.Err()
}

func readVector3(r *codec.Reader) Vector3 {
	return Vector3{X: r.Float32("x"), Y: r.Float32("y"), Z: r.Float32("z")}
}

func encodeVector4(v Vector4) *tree.Object {
	return codec.Fields("x", v.X, "y", v.Y, "z", v.Z, "w", v.W)
}

func decodeVector4(r *codec.Reader) (Vector4, error) {
	v := Vector4{X: r.Float32("x"), Y: r.Float32("y"), Z: r.Float32("z"), W: r.Float32("w")}
	return v, r.Err()
}

func encodeQuaternion(q Quaternion) *tree.Object {
	return codec.Fields("x", q.X, "y", q.Y, "z", q.Z, "w", q.W)
}

func decodeQuaternion(r *codec.Reader) (Quaternion, error) {
	q := Quaternion{X: r.Float32("x"), Y: r.Float32("y"), Z: r.Float32("z"), W: r.Float32("w")}
	return q, r.Err()
}

// =============================================================================
// Colors
// =============================================================================

func encodeColor(c Color) *tree.Object {
	return codec.Fields("r", c.R, "g", c.G, "b", c.B, "a", c.A)
}

func decodeColor(r *codec.Reader) (Color, error) {
	c := readColor(r)
	return c, r.Err()
}

func readColor(r *codec.Reader) Color {
	return Color{R: r.Float32("r"), G: r.Float32("g"), B: r.Float32("b"), A: r.Float32("a")}
}

func encodeColor32(c Color32) *tree.Object {
	return codec.Fields("r", c.R, "g", c.G, "b", c.B, "a", c.A)
}

func decodeColor32(r *codec.Reader) (Color32, error) {
	c := Color32{R: r.Uint8("r"), G: r.Uint8("g"), B: r.Uint8("b"), A: r.Uint8("a")}
	return c, r.Err()
}

// =============================================================================
// Rects and bounds
// =============================================================================

func encodeRect(v Rect) *tree.Object {
	return codec.Fields("x", v.X, "y", v.Y, "width", v.Width, "height", v.Height)
}

func decodeRect(r *codec.Reader) (Rect, error) {
	v := Rect{X: r.Float32("x"), Y: r.Float32("y"), Width: r.Float32("width"), Height: r.Float32("height")}
	return v, r.Err()
}

func encodeBounds(b Bounds) *tree.Object {
	return codec.Fields("center", encodeVector3(b.Center), "size", encodeVector3(b.Size))
}

func decodeBounds(r *codec.Reader) (Bounds, error) {
	b := Bounds{
		Center: readVector3(r.Object("center")),
		Size:   readVector3(r.Object("size")),
	}
	return b, r.Err()
}

// =============================================================================
// Matrices
// =============================================================================

func encodeMatrix(m Matrix4x4) *tree.Object {
	elems := make([]tree.Node, len(m.M))
	for i, f := range m.M {
		elems[i] = codec.Number(f)
	}
	return codec.Fields("m", elems)
}

func decodeMatrix(r *codec.Reader) (Matrix4x4, error) {
	var m Matrix4x4
	for i, f := range r.Floats("m", len(m.M)) {
		m.M[i] = float32(f)
	}
	return m, r.Err()
}

// =============================================================================
// Curves and gradients
// =============================================================================

func encodeCurve(c Curve) *tree.Object {
	keys := make([]tree.Node, len(c.Keys))
	for i, k := range c.Keys {
		keys[i] = codec.Fields(
			"time", k.Time,
			"value", k.Value,
			"inTangent", k.InTangent,
			"outTangent", k.OutTangent,
		)
	}
	return codec.Fields("keys", keys)
}

func decodeCurve(r *codec.Reader) (Curve, error) {
	recs := r.Records("keys")
	c := Curve{Keys: make([]Keyframe, len(recs))}
	for i, k := range recs {
		c.Keys[i] = Keyframe{
			Time:       k.Float32("time"),
			Value:      k.Float32("value"),
			InTangent:  k.Float32("inTangent"),
			OutTangent: k.Float32("outTangent"),
		}
	}
	return c, r.Err()
}

func encodeGradient(g Gradient) *tree.Object {
	colors := make([]tree.Node, len(g.ColorKeys))
	for i, k := range g.ColorKeys {
		colors[i] = codec.Fields("color", encodeColor(k.Color), "time", k.Time)
	}
	alphas := make([]tree.Node, len(g.AlphaKeys))
	for i, k := range g.AlphaKeys {
		alphas[i] = codec.Fields("alpha", k.Alpha, "time", k.Time)
	}
	return codec.Fields("colorKeys", colors, "alphaKeys", alphas)
}

func decodeGradient(r *codec.Reader) (Gradient, error) {
	colors := r.Records("colorKeys")
	alphas := r.Records("alphaKeys")
	g := Gradient{
		ColorKeys: make([]ColorKey, len(colors)),
		AlphaKeys: make([]AlphaKey, len(alphas)),
	}
	for i, k := range colors {
		g.ColorKeys[i] = ColorKey{Color: readColor(k.Object("color")), Time: k.Float32("time")}
	}
	for i, k := range alphas {
		g.AlphaKeys[i] = AlphaKey{Alpha: k.Float32("alpha"), Time: k.Float32("time")}
	}
	return g, r.Err()
}

func encodeLayerMask(m LayerMask) *tree.Object {
	return codec.Fields("value", m.Value)
}

func decodeLayerMask(r *codec.Reader) (LayerMask, error) {
	m := LayerMask{Value: r.Int32("value")}
	return m, r.Err()
}
