package layout

// Scale converts layout units to pixels.
const Scale = 15

// Point is a position in layout units.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle in layout units. Y grows downward.
type Rect struct {
	Left, Top     float64
	Right, Bottom float64
}

// Width returns the horizontal span of the rectangle.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the vertical span of the rectangle.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// CenterY returns the vertical center of the rectangle.
func (r Rect) CenterY() float64 { return (r.Top + r.Bottom) / 2 }

// LineKind distinguishes connector segments.
type LineKind int

const (
	// StubStart runs from a parent's right edge to the bus.
	StubStart LineKind = iota
	// StubEnd runs from the bus to a child's left edge.
	StubEnd
	// Bus joins the stubs of one column.
	Bus
)

func (k LineKind) String() string {
	switch k {
	case StubStart:
		return "start"
	case StubEnd:
		return "end"
	default:
		return "bus"
	}
}

// Line is a connector segment.
type Line struct {
	Kind     LineKind
	From, To Point
}

// Label is annotation text placed beside a connector stub.
type Label struct {
	At    Point
	Text  string
	Class string // "lhsText" or "rhsText"
}

// Label classes.
const (
	ClassLhsText = "lhsText"
	ClassRhsText = "rhsText"
)
