// Package svgdoc reads and rewrites the text frames of SVG artwork, as
// exported by Illustrator or Inkscape.
//
// The tree is kept close to the source so that a document written back
// differs from the original only where frames were edited: prefixes,
// attribute order, comments, whitespace and the DOCTYPE all survive.
package svgdoc

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"golang.org/x/net/html/charset"
)

var (
	ErrNotSVG    = errors.New("not an svg document")
	ErrMalformed = errors.New("malformed document")
)

type Document struct {
	root   *Node
	frames []*TextFrame
}

// Layer is a top-level group of the artwork.
type Layer struct {
	Name    string
	Visible bool
	Locked  bool
	Frames  int
}

var (
	entityDecl = regexp.MustCompile(`<!ENTITY\s+([^\s%]+)\s+(?:"([^"]*)"|'([^']*)')\s*>`)
	xmlDeclEnc = regexp.MustCompile(`encoding\s*=\s*("[^"]*"|'[^']*')`)
)

// Open parses the SVG file at path.
func Open(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := Parse(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse reads an SVG document. Entities declared in an internal DTD subset
// are expanded; non UTF-8 encodings are decoded and the document is
// rewritten as UTF-8.
func Parse(r io.Reader) (*Document, error) {
	d := xml.NewDecoder(r)
	d.CharsetReader = charset.NewReaderLabel

	doc := &Document{root: &Node{Kind: DocumentNode}}
	cur := doc.root

	for {
		tok, err := d.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Kind: ElementNode, Name: t.Name, Attr: append([]xml.Attr(nil), t.Attr...)}
			cur.appendChild(n)
			cur = n
		case xml.EndElement:
			if cur.Kind != ElementNode || cur.Name != t.Name {
				return nil, fmt.Errorf("%w: unexpected </%s> at offset %d", ErrMalformed, qname(t.Name), d.InputOffset())
			}
			cur = cur.Parent
		case xml.CharData:
			cur.appendChild(&Node{Kind: TextNode, Data: string(t)})
		case xml.Comment:
			cur.appendChild(&Node{Kind: CommentNode, Data: string(t)})
		case xml.ProcInst:
			inst := string(t.Inst)
			if t.Target == "xml" {
				inst = xmlDeclEnc.ReplaceAllString(inst, `encoding="UTF-8"`)
			}
			cur.appendChild(&Node{Kind: ProcInstNode, Name: xml.Name{Local: t.Target}, Data: inst})
		case xml.Directive:
			cur.appendChild(&Node{Kind: DirectiveNode, Data: string(t)})
			if ents := entities(string(t)); len(ents) > 0 {
				d.Entity = ents
			}
		}
	}

	if cur != doc.root {
		return nil, fmt.Errorf("%w: unclosed <%s>", ErrMalformed, qname(cur.Name))
	}

	var svg *Node
	for _, c := range doc.root.Children {
		if c.Kind == ElementNode {
			svg = c
			break
		}
	}
	if svg == nil || svg.Name.Local != "svg" {
		return nil, ErrNotSVG
	}

	doc.index()
	return doc, nil
}

func entities(directive string) map[string]string {
	matches := entityDecl.FindAllStringSubmatch(directive, -1)
	if len(matches) == 0 {
		return nil
	}
	ents := make(map[string]string, len(matches))
	for _, m := range matches {
		if m[2] != "" {
			ents[m[1]] = m[2]
		} else {
			ents[m[1]] = m[3]
		}
	}
	return ents
}

func (d *Document) index() {
	d.frames = d.frames[:0]
	d.root.walk(func(n *Node) bool {
		if n.is("text") {
			d.frames = append(d.frames, &TextFrame{node: n, index: len(d.frames)})
			return false
		}
		return true
	})
}

// TextFrames returns every <text> element in document order.
func (d *Document) TextFrames() []*TextFrame {
	out := make([]*TextFrame, len(d.frames))
	copy(out, d.frames)
	return out
}

// Layers returns the outermost groups of the artwork in document order.
func (d *Document) Layers() []Layer {
	counts := make(map[*Node]int)
	for _, f := range d.frames {
		if l := f.layerNode(); l != nil {
			counts[l]++
		}
	}

	var layers []Layer
	d.root.walk(func(n *Node) bool {
		if !n.is("g") {
			return true
		}
		layers = append(layers, Layer{
			Name:    layerName(n),
			Visible: !n.hidden(),
			Locked:  n.locked(),
			Frames:  counts[n],
		})
		return false
	})
	return layers
}

// Encode writes the document to w.
func (d *Document) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, c := range d.root.Children {
		writeNode(bw, c)
	}
	return bw.Flush()
}

func (d *Document) Bytes() []byte {
	var buf bytes.Buffer
	_ = d.Encode(&buf)
	return buf.Bytes()
}

// Save writes the document to path through a temporary file in the same
// directory, so a failed write never leaves a truncated file behind.
func (d *Document) Save(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := d.Encode(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if info, err := os.Stat(path); err == nil {
		_ = os.Chmod(tmp.Name(), info.Mode().Perm())
	} else {
		_ = os.Chmod(tmp.Name(), 0o644)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
