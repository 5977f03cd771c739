// Package fonts provides text metrics for diagram layout.
//
// Node boxes and annotation gaps are sized from the rendered width of their
// text. Widths are measured with the Go Regular font compiled into the
// binary, so layout does not depend on fonts installed on the host.
package fonts

import (
	"sync"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// DefaultSize is the point size text is measured at.
const DefaultSize = 12

// FontFamily is the CSS font-family matching the measured face.
const FontFamily = `'Go', 'Arial', sans-serif`

// Measurer reports the rendered width of a single line of text in pixels.
type Measurer interface {
	Width(s string) float64
}

// Face measures text with an OpenType face. It is safe for concurrent use.
type Face struct {
	mu   sync.Mutex
	face font.Face
	size float64
}

// NewFace parses ttf and returns a measurer at size points (72 DPI).
func NewFace(ttf []byte, size float64) (*Face, error) {
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	return &Face{face: face, size: size}, nil
}

// Width implements Measurer.
func (f *Face) Width(s string) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return float64(font.MeasureString(f.face, s)) / 64
}

// Size returns the point size of the face.
func (f *Face) Size() float64 { return f.size }

// Fixed measures every rune as the same width. Tests use it for
// predictable geometry.
type Fixed float64

// Width implements Measurer.
func (w Fixed) Width(s string) float64 {
	return float64(w) * float64(utf8.RuneCountInString(s))
}

var (
	defaultFace     Measurer
	defaultFaceOnce sync.Once
)

// Default returns the shared Go Regular measurer at DefaultSize. If the
// embedded font cannot be parsed it falls back to an average glyph width.
func Default() Measurer {
	defaultFaceOnce.Do(func() {
		f, err := NewFace(goregular.TTF, DefaultSize)
		if err != nil {
			defaultFace = Fixed(DefaultSize * 0.6)
			return
		}
		defaultFace = f
	})
	return defaultFace
}
