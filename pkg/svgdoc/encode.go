package svgdoc

import (
	"bufio"
	"encoding/xml"
	"strings"
)

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		`"`, "&quot;",
		"\n", "&#xA;",
		"\r", "&#xD;",
		"\t", "&#x9;",
	)
)

func qname(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func writeNode(w *bufio.Writer, n *Node) {
	switch n.Kind {
	case ElementNode:
		w.WriteByte('<')
		w.WriteString(qname(n.Name))
		for _, a := range n.Attr {
			w.WriteByte(' ')
			w.WriteString(qname(a.Name))
			w.WriteString(`="`)
			attrEscaper.WriteString(w, a.Value)
			w.WriteByte('"')
		}
		if len(n.Children) == 0 {
			w.WriteString("/>")
			return
		}
		w.WriteByte('>')
		for _, c := range n.Children {
			writeNode(w, c)
		}
		w.WriteString("</")
		w.WriteString(qname(n.Name))
		w.WriteByte('>')
	case TextNode:
		textEscaper.WriteString(w, n.Data)
	case CommentNode:
		w.WriteString("<!--")
		w.WriteString(n.Data)
		w.WriteString("-->")
	case ProcInstNode:
		w.WriteString("<?")
		w.WriteString(n.Name.Local)
		if n.Data != "" {
			w.WriteByte(' ')
			w.WriteString(n.Data)
		}
		w.WriteString("?>")
	case DirectiveNode:
		w.WriteString("<!")
		w.WriteString(n.Data)
		w.WriteByte('>')
	}
}
