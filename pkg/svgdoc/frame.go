package svgdoc

import (
	"errors"
	"strconv"
	"strings"

	"github.com/hoppxi/framekit/pkg/marker"
)

// ErrLocked is returned when editing a frame inside a locked layer.
var ErrLocked = errors.New("layer is locked")

// TextFrame is one <text> element. It satisfies marker.Editable.
type TextFrame struct {
	node  *Node
	index int
}

func (f *TextFrame) Index() int { return f.index }

func (f *TextFrame) ID() string {
	id, _ := f.node.AttrValue("id")
	return id
}

// LineSeparator separates the lines of a multi-line frame in Content, the
// paragraph separator Illustrator uses in a text frame's contents.
const LineSeparator = "\r"

// startsLine reports whether child c of a frame begins a new line: a tspan
// moved to another baseline, or an Inkscape line span. Spans that only
// carry kerning offsets (x without a new y) stay on the current line.
func startsLine(c *Node, y string) bool {
	if !c.is("tspan") {
		return false
	}
	if role, ok := c.AttrValue("sodipodi:role"); ok && role == "line" {
		return true
	}
	if v, ok := c.AttrValue("y"); ok && strings.TrimSpace(v) != y {
		return true
	}
	if v, ok := c.AttrValue("dy"); ok {
		v = strings.TrimSpace(v)
		if d, err := strconv.ParseFloat(v, 64); v != "" && (err != nil || d != 0) {
			return true
		}
	}
	return false
}

// line is one rendered line of a frame: the element holding it and its
// character data in document order.
type line struct {
	host *Node
	runs []*Node
}

func (l line) text() string {
	var b strings.Builder
	for _, r := range l.runs {
		b.WriteString(r.Data)
	}
	return b.String()
}

func (l line) set(s string) {
	if len(l.runs) == 0 {
		if s != "" {
			l.host.appendChild(&Node{Kind: TextNode, Data: s})
		}
		return
	}
	l.runs[0].Data = s
	for _, r := range l.runs[1:] {
		r.Data = ""
	}
}

// lines groups the frame's character data by rendered line. Whitespace
// between child elements is layout of the markup, not text, and is left
// out.
func (f *TextFrame) lines() []line {
	hasElements := false
	for _, c := range f.node.Children {
		if c.Kind == ElementNode {
			hasElements = true
			break
		}
	}

	y, _ := f.node.AttrValue("y")
	y = strings.TrimSpace(y)

	var lines []line
	for _, c := range f.node.Children {
		switch c.Kind {
		case TextNode:
			if hasElements && strings.TrimSpace(c.Data) == "" {
				continue
			}
			if len(lines) == 0 {
				lines = append(lines, line{host: f.node})
			}
			lines[len(lines)-1].runs = append(lines[len(lines)-1].runs, c)
		case ElementNode:
			if len(lines) == 0 || startsLine(c, y) {
				lines = append(lines, line{host: c})
			}
			if v, ok := c.AttrValue("y"); ok {
				y = strings.TrimSpace(v)
			}
			lines[len(lines)-1].runs = append(lines[len(lines)-1].runs, c.textRuns()...)
		}
	}
	return lines
}

// Content returns the frame's text, lines joined with LineSeparator.
func (f *TextFrame) Content() string {
	lines := f.lines()
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = l.text()
	}
	return strings.Join(parts, LineSeparator)
}

var newlines = strings.NewReplacer("\r\n", LineSeparator, "\n", LineSeparator)

// SetContent replaces the frame's text line by line, so every line keeps
// its own span and position. Unchanged lines are left untouched; a changed
// line takes the styling of its first run. Lines beyond the frame's last
// line are appended to it, separated by a space, and lines the new text no
// longer has are emptied.
func (f *TextFrame) SetContent(s string) error {
	if f.Locked() {
		return ErrLocked
	}

	parts := strings.Split(newlines.Replace(s), LineSeparator)
	lines := f.lines()
	if len(lines) == 0 {
		f.node.appendChild(&Node{Kind: TextNode, Data: strings.Join(parts, " ")})
		return nil
	}

	if len(parts) > len(lines) {
		last := len(lines) - 1
		parts = append(parts[:last:last], strings.Join(parts[last:], " "))
	}

	for i, l := range lines {
		text := ""
		if i < len(parts) {
			text = parts[i]
		}
		if l.text() != text {
			l.set(text)
		}
	}
	return nil
}

// Visible reports whether every group enclosing the frame is shown. The
// frame's own display attributes do not count.
func (f *TextFrame) Visible() bool {
	for p := f.node.Parent; p != nil; p = p.Parent {
		if p.is("g") && p.hidden() {
			return false
		}
	}
	return true
}

func (f *TextFrame) Locked() bool {
	for p := f.node.Parent; p != nil; p = p.Parent {
		if p.is("g") && p.locked() {
			return true
		}
	}
	return false
}

func (f *TextFrame) layerNode() *Node {
	var layer *Node
	for p := f.node.Parent; p != nil; p = p.Parent {
		if p.is("g") {
			layer = p
		}
	}
	return layer
}

// Layer returns the name of the outermost group holding the frame, or ""
// for frames placed directly on the canvas.
func (f *TextFrame) Layer() string {
	if l := f.layerNode(); l != nil {
		return layerName(l)
	}
	return ""
}

func layerName(n *Node) string {
	for _, attr := range []string{"data-name", "inkscape:label", "id"} {
		if v, ok := n.AttrValue(attr); ok && v != "" {
			return v
		}
	}
	return ""
}

// Mark fills every character of the frame with c. The color goes into the
// inline style of the frame and of each nested span so it wins over
// stylesheet classes and presentation attributes.
func (f *TextFrame) Mark(c marker.Color) error {
	if f.Locked() {
		return ErrLocked
	}

	hex := c.Hex()
	f.node.walk(func(n *Node) bool {
		if n.Kind != ElementNode {
			return false
		}
		if n == f.node || n.is("tspan") || n.is("textPath") {
			n.setStyleValue("fill", hex)
		}
		return true
	})
	return nil
}

// Fill returns the frame's own fill color when it is set inline or as an
// attribute and is a plain color.
func (f *TextFrame) Fill() (marker.Color, bool) {
	v, ok := f.node.property("fill")
	if !ok {
		return marker.Color{}, false
	}
	c, err := marker.ParseColor(v)
	if err != nil {
		return marker.Color{}, false
	}
	return c, true
}
