package dom

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseHTML parses markup as the content of a <body> element and returns a
// fragment holding the resulting nodes.
func ParseHTML(markup string) (*Node, error) {
	return ParseFragment(strings.NewReader(markup), NewElement("body"))
}

// ParseFragment parses r as the content of the context element and returns a
// fragment holding the resulting nodes. Foreign context elements (svg, math)
// put the parser into the matching namespace.
func ParseFragment(r io.Reader, context *Node) (*Node, error) {
	ctx := &html.Node{
		Type:      html.ElementNode,
		Data:      "body",
		DataAtom:  atom.Body,
		Namespace: "",
	}
	if context != nil && context.typ == ElementNode {
		ctx.Data = context.localName
		ctx.DataAtom = atom.Lookup([]byte(context.localName))
		ctx.Namespace = shortNamespace(context.namespace)
	}

	nodes, err := html.ParseFragment(r, ctx)
	if err != nil {
		return nil, err
	}
	fragment := NewFragment()
	for _, n := range nodes {
		if converted := fromHTML(n); converted != nil {
			fragment.AppendChild(converted)
		}
	}
	return fragment, nil
}

// ParseDocument parses a complete document and returns its <html> element.
func ParseDocument(r io.Reader) (*Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return fromHTML(c), nil
		}
	}
	return NewElement("html"), nil
}

// QuerySelectorTag returns the first descendant element with the given local
// name, in document order.
func (n *Node) QuerySelectorTag(tag string) *Node {
	for c := n.firstChild; c != nil; c = c.nextSibling {
		if c.typ == ElementNode && c.localName == tag {
			return c
		}
		if found := c.QuerySelectorTag(tag); found != nil {
			return found
		}
	}
	return nil
}

// QuerySelectorAllTag returns every descendant element with the given local
// name, in document order.
func (n *Node) QuerySelectorAllTag(tag string) []*Node {
	var out []*Node
	for c := n.firstChild; c != nil; c = c.nextSibling {
		if c.typ == ElementNode && c.localName == tag {
			out = append(out, c)
		}
		out = append(out, c.QuerySelectorAllTag(tag)...)
	}
	return out
}

func fromHTML(h *html.Node) *Node {
	switch h.Type {
	case html.TextNode:
		return NewText(h.Data)
	case html.CommentNode:
		return NewComment(h.Data)
	case html.ElementNode:
		el := NewElementNS(longNamespace(h.Namespace), h.Data)
		for _, a := range h.Attr {
			name := a.Key
			if a.Namespace != "" {
				name = a.Namespace + ":" + a.Key
			}
			el.attrs = append(el.attrs, Attribute{Name: name, Value: a.Val})
		}
		for c := h.FirstChild; c != nil; c = c.NextSibling {
			if child := fromHTML(c); child != nil {
				el.AppendChild(child)
			}
		}
		return el
	default:
		return nil
	}
}

func shortNamespace(uri string) string {
	switch uri {
	case SVGNamespace:
		return "svg"
	case MathMLNamespace:
		return "math"
	default:
		return ""
	}
}

func longNamespace(short string) string {
	switch short {
	case "svg":
		return SVGNamespace
	case "math":
		return MathMLNamespace
	default:
		return HTMLNamespace
	}
}
