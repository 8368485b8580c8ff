package svgdoc

import (
	"encoding/xml"
	"strings"
)

type NodeKind int

const (
	DocumentNode NodeKind = iota
	ElementNode
	TextNode
	CommentNode
	ProcInstNode
	DirectiveNode
)

// Node is one item of the parsed tree. Element names keep the prefix as
// written in Name.Space, never a resolved namespace URL.
type Node struct {
	Kind     NodeKind
	Name     xml.Name
	Attr     []xml.Attr
	Data     string
	Parent   *Node
	Children []*Node
}

func (n *Node) appendChild(c *Node) {
	c.Parent = n
	n.Children = append(n.Children, c)
}

func (n *Node) is(local string) bool {
	return n.Kind == ElementNode && n.Name.Local == local
}

// AttrValue returns the value of the attribute written as name (which may
// carry a prefix, e.g. "inkscape:label").
func (n *Node) AttrValue(name string) (string, bool) {
	space, local := splitName(name)
	for _, a := range n.Attr {
		if a.Name.Space == space && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

func (n *Node) SetAttr(name, value string) {
	space, local := splitName(name)
	for i, a := range n.Attr {
		if a.Name.Space == space && a.Name.Local == local {
			n.Attr[i].Value = value
			return
		}
	}
	n.Attr = append(n.Attr, xml.Attr{Name: xml.Name{Space: space, Local: local}, Value: value})
}

func splitName(name string) (string, string) {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

// walk visits n and its descendants in document order until fn returns
// false for a node, which skips that node's children.
func (n *Node) walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.walk(fn)
	}
}

// textRuns returns the character data nodes under n in document order.
func (n *Node) textRuns() []*Node {
	var runs []*Node
	n.walk(func(c *Node) bool {
		if c.Kind == TextNode {
			runs = append(runs, c)
		}
		return true
	})
	return runs
}

type styleProp struct {
	key, value string
}

func parseStyle(s string) []styleProp {
	var props []styleProp
	for _, decl := range strings.Split(s, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		props = append(props, styleProp{key: strings.ToLower(k), value: strings.TrimSpace(v)})
	}
	return props
}

func formatStyle(props []styleProp) string {
	parts := make([]string, len(props))
	for i, p := range props {
		parts[i] = p.key + ":" + p.value
	}
	return strings.Join(parts, ";")
}

func (n *Node) styleValue(key string) (string, bool) {
	style, ok := n.AttrValue("style")
	if !ok {
		return "", false
	}
	for _, p := range parseStyle(style) {
		if p.key == key {
			return p.value, true
		}
	}
	return "", false
}

func (n *Node) setStyleValue(key, value string) {
	style, _ := n.AttrValue("style")
	props := parseStyle(style)
	for i := range props {
		if props[i].key == key {
			props[i].value = value
			n.SetAttr("style", formatStyle(props))
			return
		}
	}
	props = append(props, styleProp{key: key, value: value})
	n.SetAttr("style", formatStyle(props))
}

// property resolves a presentation property, inline style first.
func (n *Node) property(key string) (string, bool) {
	if v, ok := n.styleValue(key); ok {
		return v, true
	}
	return n.AttrValue(key)
}

func (n *Node) hidden() bool {
	if v, ok := n.property("display"); ok && strings.EqualFold(v, "none") {
		return true
	}
	if v, ok := n.property("visibility"); ok {
		v = strings.ToLower(v)
		return v == "hidden" || v == "collapse"
	}
	return false
}

func (n *Node) locked() bool {
	v, ok := n.AttrValue("sodipodi:insensitive")
	return ok && v == "true"
}
