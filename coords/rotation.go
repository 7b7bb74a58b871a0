package coords

// Rotation is a clockwise rotation in quarter turns.
type Rotation int

const (
	Rotate0 Rotation = iota
	Rotate90
	Rotate180
	Rotate270
)

// RotationFromDegrees normalizes a /Rotate value. Values that are not a
// multiple of 90 map to Rotate0.
func RotationFromDegrees(deg int) Rotation {
	if deg%90 != 0 {
		return Rotate0
	}
	return Rotation(((deg/90)%4 + 4) % 4)
}

func (r Rotation) Degrees() int               { return int(r.normalized()) * 90 }
func (r Rotation) Clockwise() Rotation        { return (r + 1).normalized() }
func (r Rotation) Counterclockwise() Rotation { return (r + 3).normalized() }
func (r Rotation) Add(o Rotation) Rotation    { return (r + o).normalized() }

// Transposes reports whether the rotation swaps width and height.
func (r Rotation) Transposes() bool { return r.normalized()%2 == 1 }

func (r Rotation) normalized() Rotation { return ((r % 4) + 4) % 4 }

// CanonicalFromPage maps PDF user space into canonical page space: points,
// top-left origin, unrotated.
func CanonicalFromPage(box Box) Matrix {
	return Matrix{1, 0, 0, -1, -box.LLX, box.URY}
}

// DeviceFromCanonical maps canonical page space into a device rect of
// the given size, applying rot clockwise.
func DeviceFromCanonical(page SizeF, rot Rotation, device Size) Matrix {
	w, h := page.Width, page.Height
	var m Matrix
	switch rot.normalized() {
	case Rotate90:
		m = Matrix{0, 1, -1, 0, h, 0}
	case Rotate180:
		m = Matrix{-1, 0, 0, -1, w, h}
	case Rotate270:
		m = Matrix{0, -1, 1, 0, 0, w}
	default:
		m = Identity()
	}
	rotated := page
	if rot.Transposes() {
		rotated = page.Transpose()
	}
	if rotated.Width <= 0 || rotated.Height <= 0 {
		return m
	}
	return m.Multiply(Scale(float64(device.Width)/rotated.Width, float64(device.Height)/rotated.Height))
}

// DeviceFromPage composes CanonicalFromPage and DeviceFromCanonical.
func DeviceFromPage(box Box, rot Rotation, device Size) Matrix {
	return CanonicalFromPage(box).Multiply(DeviceFromCanonical(box.Size(), rot, device))
}
