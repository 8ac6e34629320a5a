package dom

import (
	"bufio"
	"io"
	"strings"
)

// voidElements are HTML elements that cannot have children and have no
// closing tag.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// rawTextElements have their text content written without escaping.
var rawTextElements = map[string]bool{
	"script":   true,
	"style":    true,
	"xmp":      true,
	"iframe":   true,
	"noembed":  true,
	"noframes": true,
}

// IsVoidElement reports whether tag is an HTML void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// IsRawTextElement reports whether the text content of tag is not escaped.
func IsRawTextElement(tag string) bool {
	return rawTextElements[tag]
}

// OuterHTML serializes n including itself.
func (n *Node) OuterHTML() string {
	var b strings.Builder
	_ = n.WriteHTML(&b)
	return b.String()
}

// InnerHTML serializes the children of n.
func (n *Node) InnerHTML() string {
	var b strings.Builder
	w := bufio.NewWriter(&b)
	for c := n.firstChild; c != nil; c = c.nextSibling {
		_ = writeNode(w, c, false)
	}
	_ = w.Flush()
	return b.String()
}

// WriteHTML serializes n to w. Fragments serialize their children.
func (n *Node) WriteHTML(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if err := writeNode(bw, n, false); err != nil {
		return err
	}
	return bw.Flush()
}

func writeNode(w *bufio.Writer, n *Node, rawText bool) error {
	switch n.typ {
	case TextNode:
		if rawText {
			_, err := w.WriteString(n.data)
			return err
		}
		_, err := w.WriteString(escapeHTML(n.data))
		return err
	case CommentNode:
		w.WriteString("<!--")
		w.WriteString(n.data)
		_, err := w.WriteString("-->")
		return err
	case FragmentNode:
		for c := n.firstChild; c != nil; c = c.nextSibling {
			if err := writeNode(w, c, rawText); err != nil {
				return err
			}
		}
		return nil
	case ElementNode:
		return writeElement(w, n)
	}
	return nil
}

func writeElement(w *bufio.Writer, n *Node) error {
	w.WriteByte('<')
	w.WriteString(n.localName)
	for _, a := range n.attrs {
		w.WriteByte(' ')
		w.WriteString(a.Name)
		if a.Value != "" {
			w.WriteString(`="`)
			w.WriteString(escapeAttr(a.Value))
			w.WriteByte('"')
		}
	}

	html := n.namespace == HTMLNamespace
	if html && voidElements[n.localName] {
		_, err := w.WriteString(">")
		return err
	}
	if !html && n.firstChild == nil {
		_, err := w.WriteString("/>")
		return err
	}
	w.WriteByte('>')

	raw := html && rawTextElements[n.localName]
	for c := n.firstChild; c != nil; c = c.nextSibling {
		if err := writeNode(w, c, raw); err != nil {
			return err
		}
	}

	w.WriteString("</")
	w.WriteString(n.localName)
	_, err := w.WriteString(">")
	return err
}

// escapeHTML escapes text for safe inclusion in HTML content.
func escapeHTML(s string) string {
	if !strings.ContainsAny(s, "&<>") {
		return s
	}
	var buf strings.Builder
	buf.Grow(len(s))

	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}

// escapeAttr escapes text for safe inclusion in a double-quoted attribute
// value.
func escapeAttr(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))

	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\n':
			buf.WriteString("&#10;")
		case '\r':
			buf.WriteString("&#13;")
		case '\t':
			buf.WriteString("&#9;")
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}
