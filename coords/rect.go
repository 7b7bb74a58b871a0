package coords

import "math"

// Size is an integer size in device pixels.
type Size struct{ Width, Height int }

func (s Size) IsEmpty() bool { return s.Width <= 0 || s.Height <= 0 }

// Transpose swaps width and height.
func (s Size) Transpose() Size { return Size{s.Height, s.Width} }

// SizeF is a size in PDF points.
type SizeF struct{ Width, Height float64 }

func (s SizeF) Transpose() SizeF { return SizeF{s.Height, s.Width} }

// ToPixels converts a point size to whole device pixels at zoom 1.
func (s SizeF) ToPixels() Size {
	return Size{
		Width:  int(math.Round(s.Width * PointsToPixels)),
		Height: int(math.Round(s.Height * PointsToPixels)),
	}
}

// Insets shrink a rect from each edge.
type Insets struct{ Top, Left, Bottom, Right int }

func (i Insets) Width() int  { return i.Left + i.Right }
func (i Insets) Height() int { return i.Top + i.Bottom }

// Rect is an integer rect in device pixels with a top-left origin.
type Rect struct{ X, Y, Width, Height int }

func (r Rect) Right() int    { return r.X + r.Width }
func (r Rect) Bottom() int   { return r.Y + r.Height }
func (r Rect) Size() Size    { return Size{r.Width, r.Height} }
func (r Rect) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

func (r Rect) Contains(p Point) bool {
	return p.X >= float64(r.X) && p.X < float64(r.Right()) &&
		p.Y >= float64(r.Y) && p.Y < float64(r.Bottom())
}

func (r Rect) ContainsRect(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

func (r Rect) Intersects(o Rect) bool {
	if r.IsEmpty() || o.IsEmpty() {
		return false
	}
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Union returns the smallest rect covering both. Empty rects are ignored.
func (r Rect) Union(o Rect) Rect {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	x := min(r.X, o.X)
	y := min(r.Y, o.Y)
	return Rect{x, y, max(r.Right(), o.Right()) - x, max(r.Bottom(), o.Bottom()) - y}
}

func (r Rect) Inset(in Insets) Rect {
	return Rect{r.X + in.Left, r.Y + in.Top, r.Width - in.Width(), r.Height - in.Height()}
}

func (r Rect) Offset(dx, dy int) Rect { return Rect{r.X + dx, r.Y + dy, r.Width, r.Height} }

// ScaleToEnclosing scales by s and rounds outward.
func (r Rect) ScaleToEnclosing(s float64) Rect {
	x := int(math.Floor(float64(r.X) * s))
	y := int(math.Floor(float64(r.Y) * s))
	right := int(math.Ceil(float64(r.Right()) * s))
	bottom := int(math.Ceil(float64(r.Bottom()) * s))
	return Rect{x, y, right - x, bottom - y}
}

// Box is a rect in PDF user space (bottom-left origin), as written in
// /MediaBox and /Rect entries.
type Box struct{ LLX, LLY, URX, URY float64 }

func (b Box) Width() float64  { return b.URX - b.LLX }
func (b Box) Height() float64 { return b.URY - b.LLY }
func (b Box) Size() SizeF     { return SizeF{b.Width(), b.Height()} }

func (b Box) Contains(p Point) bool {
	return p.X >= b.LLX && p.X <= b.URX && p.Y >= b.LLY && p.Y <= b.URY
}

func (b Box) Intersects(o Box) bool {
	return b.LLX <= o.URX && o.LLX <= b.URX && b.LLY <= o.URY && o.LLY <= b.URY
}

// ContainsBox reports whether o lies fully inside b.
func (b Box) ContainsBox(o Box) bool {
	return o.LLX >= b.LLX && o.URX <= b.URX && o.LLY >= b.LLY && o.URY <= b.URY
}

func (b Box) Union(o Box) Box {
	return Box{math.Min(b.LLX, o.LLX), math.Min(b.LLY, o.LLY), math.Max(b.URX, o.URX), math.Max(b.URY, o.URY)}
}

// Expand grows the box by d on every side.
func (b Box) Expand(d float64) Box { return Box{b.LLX - d, b.LLY - d, b.URX + d, b.URY + d} }

// Distance is the euclidean distance from p to the nearest point of b.
func (b Box) Distance(p Point) float64 {
	dx := math.Max(math.Max(b.LLX-p.X, 0), p.X-b.URX)
	dy := math.Max(math.Max(b.LLY-p.Y, 0), p.Y-b.URY)
	return math.Hypot(dx, dy)
}

// EnclosingRect rounds a device-space box outward to whole pixels.
func EnclosingRect(b Box) Rect {
	x := int(math.Floor(b.LLX))
	y := int(math.Floor(b.LLY))
	return Rect{x, y, int(math.Ceil(b.URX)) - x, int(math.Ceil(b.URY)) - y}
}
