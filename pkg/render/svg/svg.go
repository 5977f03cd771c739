package svg

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/matzehuels/fgraph/pkg/fonts"
	"github.com/matzehuels/fgraph/pkg/layout"
)

// Marker ids.
const (
	ArrowStart = "arrowStart"
	ArrowEnd   = "arrowEnd"
)

const (
	arrowStartRadius = 0.125
	arrowEndSize     = 0.5
)

// Option configures Render.
type Option func(*renderer)

// WithName sets the diagram name. Element ids are derived from it.
func WithName(name string) Option { return func(r *renderer) { r.name = name } }

// WithStylesheets links css files by base name.
func WithStylesheets(files ...string) Option {
	return func(r *renderer) { r.css = append(r.css, files...) }
}

// WithFontFamily overrides the root font-family attribute.
func WithFontFamily(family string) Option { return func(r *renderer) { r.font = family } }

type renderer struct {
	name string
	css  []string
	font string
	buf  bytes.Buffer
	seq  int
	cfg  layout.Config
}

// Render writes l as a standalone SVG document.
func Render(l *layout.Layout, opts ...Option) []byte {
	r := &renderer{font: fonts.FontFamily, cfg: l.Config}
	for _, opt := range opts {
		opt(r)
	}

	r.buf.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="no"?>` + "\n")
	for _, css := range r.css {
		fmt.Fprintf(&r.buf, `<?xml-stylesheet type="text/css" href="%s" ?>`+"\n", escape(filepath.Base(css)))
	}
	w, h := px(l.Bounds.Width()), px(l.Bounds.Height())
	fmt.Fprintf(&r.buf, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="%s" height="%s" viewBox="0 0 %s %s" font-family="%s">`+"\n",
		w, h, w, h, escape(r.font))
	if r.name != "" {
		fmt.Fprintf(&r.buf, "  <title>%s</title>\n", escape(r.name))
	}
	r.defs()

	r.buf.WriteString(`  <g class="diagram">` + "\n")
	for _, n := range l.Nodes {
		r.node(l, n)
	}
	for _, ln := range l.Lines {
		r.line(ln)
	}
	for _, lb := range l.Labels {
		fmt.Fprintf(&r.buf, `    <text class="%s" x="%s" y="%s">%s</text>`+"\n",
			lb.Class, px(lb.At.X), px(lb.At.Y), escape(lb.Text))
	}
	r.buf.WriteString("  </g>\n")

	if len(l.Legend) > 0 {
		r.buf.WriteString(`  <g class="legend">` + "\n")
		for _, n := range l.Legend {
			r.node(l, n)
		}
		r.buf.WriteString("  </g>\n")
	}
	r.buf.WriteString("</svg>\n")
	return r.buf.Bytes()
}

func (r *renderer) defs() {
	rs, es := arrowStartRadius*layout.Scale, arrowEndSize*layout.Scale
	r.buf.WriteString("  <defs>\n")
	fmt.Fprintf(&r.buf, `    <marker id="%s" refX="%g" refY="%g" markerWidth="%g" markerHeight="%g" markerUnits="userSpaceOnUse">`+"\n",
		ArrowStart, rs, rs, 2*rs, 2*rs)
	fmt.Fprintf(&r.buf, `      <circle cx="%g" cy="%g" r="%g" fill="black" stroke-width="0"/>`+"\n", rs, rs, rs)
	r.buf.WriteString("    </marker>\n")
	fmt.Fprintf(&r.buf, `    <marker id="%s" refX="%g" refY="%g" markerWidth="%g" markerHeight="%g" markerUnits="userSpaceOnUse" orient="auto">`+"\n",
		ArrowEnd, es, es/2, es, es)
	fmt.Fprintf(&r.buf, `      <polygon points="0 0 %g %g 0 %g" fill="black" stroke-width="0"/>`+"\n", es, es/2, es)
	r.buf.WriteString("    </marker>\n")
	r.buf.WriteString("  </defs>\n")
}

func (r *renderer) node(l *layout.Layout, n *layout.Node) {
	fmt.Fprintf(&r.buf, `    <g id="%s" transform="translate(%s %s)">`+"\n", r.id(n), px(n.Box.Left), px(n.Box.Top))

	rect := fmt.Sprintf(`<rect class="%s" x="0" y="0" width="%s" height="%s" rx="%s" ry="%s" stroke="black" stroke-width="%s"/>`,
		escape(n.Class), px(n.Box.Width()), px(n.Box.Height()), px(r.cfg.RectRadius), px(r.cfg.RectRadius), px(r.cfg.BorderWidth))
	r.link(n.HRef, "      ", rect)

	for i, line := range n.Lines {
		at := l.TextAnchor(n, i)
		class := line.Class
		if class == "" {
			class = n.Class
		}
		text := fmt.Sprintf(`<text class="%s" x="%s" y="%s" text-anchor="middle">%s</text>`,
			escape(class), px(at.X-n.Box.Left), px(at.Y-n.Box.Top), escape(line.Text))
		r.link(line.HRef, "      ", text)
	}
	r.buf.WriteString("    </g>\n")
}

func (r *renderer) link(href, indent, body string) {
	if href == "" {
		r.buf.WriteString(indent + body + "\n")
		return
	}
	fmt.Fprintf(&r.buf, `%s<a xlink:href="%s" href="%s" target="_top">%s</a>`+"\n", indent, escape(href), escape(href), body)
}

func (r *renderer) line(ln layout.Line) {
	markers := ""
	switch ln.Kind {
	case layout.StubStart:
		markers = fmt.Sprintf(` marker-start="url(#%s)"`, ArrowStart)
	case layout.StubEnd:
		markers = fmt.Sprintf(` marker-end="url(#%s)"`, ArrowEnd)
	}
	fmt.Fprintf(&r.buf, `    <line x1="%s" y1="%s" x2="%s" y2="%s" stroke="black" stroke-width="%s"%s/>`+"\n",
		px(ln.From.X), px(ln.From.Y), px(ln.To.X), px(ln.To.Y), px(r.cfg.BorderWidth), markers)
}

// id derives a stable element id from the diagram name and the box's
// position in the document.
func (r *renderer) id(n *layout.Node) string {
	r.seq++
	key := r.name + "#" + strconv.Itoa(int(n.Source)) + "#" + strconv.Itoa(r.seq)
	return "n-" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

func px(v float64) string {
	return strconv.FormatFloat(math.Round(v*layout.Scale*100)/100, 'f', -1, 64)
}

func escape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
