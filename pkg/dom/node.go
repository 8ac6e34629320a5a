package dom

import (
	"fmt"
	"strings"
)

// NodeType is the node type discriminator.
type NodeType uint8

const (
	ElementNode  NodeType = iota + 1 // <div>, <svg>, etc.
	TextNode                         // Character data
	CommentNode                      // <!-- ... -->
	FragmentNode                     // DocumentFragment
)

// String returns the string representation of the NodeType.
func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "Element"
	case TextNode:
		return "Text"
	case CommentNode:
		return "Comment"
	case FragmentNode:
		return "Fragment"
	default:
		return "Unknown"
	}
}

// Namespace URIs.
const (
	HTMLNamespace   = "http://www.w3.org/1999/xhtml"
	SVGNamespace    = "http://www.w3.org/2000/svg"
	MathMLNamespace = "http://www.w3.org/1998/Math/MathML"
)

// Node is a node of the in-memory document tree.
type Node struct {
	typ       NodeType
	localName string // elements only, lower case for HTML
	namespace string // elements only
	data      string // text and comment content

	attrs     []Attribute
	props     map[string]any
	listeners map[string][]*listenerEntry

	parent      *Node
	firstChild  *Node
	lastChild   *Node
	prevSibling *Node
	nextSibling *Node
}

// NewElement creates an HTML element.
func NewElement(tag string) *Node {
	return NewElementNS(HTMLNamespace, tag)
}

// NewElementNS creates an element in the given namespace.
// HTML tag names are lower-cased; foreign tag names keep their case.
func NewElementNS(namespace, tag string) *Node {
	if namespace == "" {
		namespace = HTMLNamespace
	}
	if namespace == HTMLNamespace {
		tag = strings.ToLower(tag)
	}
	return &Node{typ: ElementNode, localName: tag, namespace: namespace}
}

// NewText creates a text node.
func NewText(data string) *Node {
	return &Node{typ: TextNode, data: data}
}

// NewComment creates a comment node.
func NewComment(data string) *Node {
	return &Node{typ: CommentNode, data: data}
}

// NewFragment creates an empty document fragment.
func NewFragment() *Node {
	return &Node{typ: FragmentNode}
}

// NodeType returns the node type.
func (n *Node) NodeType() NodeType {
	return n.typ
}

// NodeName returns the DOM nodeName: the upper-cased tag for HTML elements,
// the local name for foreign elements and "#text", "#comment" or
// "#document-fragment" otherwise.
func (n *Node) NodeName() string {
	switch n.typ {
	case ElementNode:
		if n.namespace == HTMLNamespace {
			return strings.ToUpper(n.localName)
		}
		return n.localName
	case TextNode:
		return "#text"
	case CommentNode:
		return "#comment"
	case FragmentNode:
		return "#document-fragment"
	default:
		return "#unknown"
	}
}

// LocalName returns the element's local name, or "" for non-elements.
func (n *Node) LocalName() string {
	return n.localName
}

// Namespace returns the element's namespace URI, or "" for non-elements.
func (n *Node) Namespace() string {
	return n.namespace
}

// Data returns the character data of a text or comment node.
func (n *Node) Data() string {
	return n.data
}

// SetData replaces the character data of a text or comment node.
func (n *Node) SetData(data string) {
	n.data = data
}

// ParentNode returns the parent node, or nil.
func (n *Node) ParentNode() *Node { return n.parent }

// FirstChild returns the first child, or nil.
func (n *Node) FirstChild() *Node { return n.firstChild }

// LastChild returns the last child, or nil.
func (n *Node) LastChild() *Node { return n.lastChild }

// NextSibling returns the next sibling, or nil.
func (n *Node) NextSibling() *Node { return n.nextSibling }

// PreviousSibling returns the previous sibling, or nil.
func (n *Node) PreviousSibling() *Node { return n.prevSibling }

// ChildNodes returns a snapshot of the children.
func (n *Node) ChildNodes() []*Node {
	var nodes []*Node
	for c := n.firstChild; c != nil; c = c.nextSibling {
		nodes = append(nodes, c)
	}
	return nodes
}

// HasChildNodes reports whether n has at least one child.
func (n *Node) HasChildNodes() bool {
	return n.firstChild != nil
}

// Contains reports whether other is n or a descendant of n.
func (n *Node) Contains(other *Node) bool {
	for p := other; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// AppendChild appends child to n and returns it. A fragment's children are
// moved instead.
func (n *Node) AppendChild(child *Node) *Node {
	return n.InsertBefore(child, nil)
}

// InsertBefore inserts child before ref (or at the end when ref is nil) and
// returns it. The child is detached from its current parent first.
func (n *Node) InsertBefore(child, ref *Node) *Node {
	if child == nil {
		panic("dom: InsertBefore with nil child")
	}
	if ref != nil && ref.parent != n {
		panic(fmt.Sprintf("dom: reference %s is not a child of %s", ref.NodeName(), n.NodeName()))
	}
	if child.Contains(n) {
		panic("dom: cannot insert an ancestor into its descendant")
	}
	if child.typ == FragmentNode {
		for _, c := range child.ChildNodes() {
			n.InsertBefore(c, ref)
		}
		return child
	}
	if child == ref {
		return child
	}
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}

	child.parent = n
	if ref == nil {
		child.prevSibling = n.lastChild
		if n.lastChild != nil {
			n.lastChild.nextSibling = child
		} else {
			n.firstChild = child
		}
		n.lastChild = child
		return child
	}

	child.nextSibling = ref
	child.prevSibling = ref.prevSibling
	if ref.prevSibling != nil {
		ref.prevSibling.nextSibling = child
	} else {
		n.firstChild = child
	}
	ref.prevSibling = child
	return child
}

// RemoveChild detaches child from n and returns it.
func (n *Node) RemoveChild(child *Node) *Node {
	if child.parent != n {
		panic(fmt.Sprintf("dom: %s is not a child of %s", child.NodeName(), n.NodeName()))
	}
	if child.prevSibling != nil {
		child.prevSibling.nextSibling = child.nextSibling
	} else {
		n.firstChild = child.nextSibling
	}
	if child.nextSibling != nil {
		child.nextSibling.prevSibling = child.prevSibling
	} else {
		n.lastChild = child.prevSibling
	}
	child.parent = nil
	child.prevSibling = nil
	child.nextSibling = nil
	return child
}

// Remove detaches n from its parent, if any.
func (n *Node) Remove() {
	if n.parent != nil {
		n.parent.RemoveChild(n)
	}
}

// ReplaceWith replaces n with other in n's parent.
func (n *Node) ReplaceWith(other *Node) {
	parent := n.parent
	if parent == nil {
		return
	}
	parent.InsertBefore(other, n)
	parent.RemoveChild(n)
}

// ReplaceChildren removes every child and appends nodes.
func (n *Node) ReplaceChildren(nodes ...*Node) {
	for n.firstChild != nil {
		n.RemoveChild(n.firstChild)
	}
	for _, c := range nodes {
		n.AppendChild(c)
	}
}

// CloneNode copies n. Attributes and character data are copied; properties
// and listeners are not, matching the DOM.
func (n *Node) CloneNode(deep bool) *Node {
	clone := &Node{
		typ:       n.typ,
		localName: n.localName,
		namespace: n.namespace,
		data:      n.data,
	}
	if len(n.attrs) > 0 {
		clone.attrs = append([]Attribute(nil), n.attrs...)
	}
	if deep {
		for c := n.firstChild; c != nil; c = c.nextSibling {
			clone.AppendChild(c.CloneNode(true))
		}
	}
	return clone
}

// SplitText splits a text node at offset (in bytes). n keeps the leading part
// and the trailing part is inserted after it and returned.
func (n *Node) SplitText(offset int) *Node {
	if n.typ != TextNode {
		panic("dom: SplitText on non-text node")
	}
	if offset < 0 || offset > len(n.data) {
		panic(fmt.Sprintf("dom: SplitText offset %d out of range", offset))
	}
	tail := NewText(n.data[offset:])
	n.data = n.data[:offset]
	if n.parent != nil {
		n.parent.InsertBefore(tail, n.nextSibling)
	}
	return tail
}

// TextContent returns the concatenated text of n and its descendants.
// Comments contribute only when n itself is a comment.
func (n *Node) TextContent() string {
	switch n.typ {
	case TextNode, CommentNode:
		return n.data
	}
	var b strings.Builder
	var walk func(*Node)
	walk = func(p *Node) {
		for c := p.firstChild; c != nil; c = c.nextSibling {
			switch c.typ {
			case TextNode:
				b.WriteString(c.data)
			case ElementNode, FragmentNode:
				walk(c)
			}
		}
	}
	walk(n)
	return b.String()
}

// SetTextContent replaces the children of n with a single text node, or the
// character data of a text/comment node.
func (n *Node) SetTextContent(text string) {
	switch n.typ {
	case TextNode, CommentNode:
		n.data = text
	default:
		if text == "" {
			n.ReplaceChildren()
		} else {
			n.ReplaceChildren(NewText(text))
		}
	}
}

// String returns a short description such as <div#main.item> or #text "foo".
func (n *Node) String() string {
	switch n.typ {
	case ElementNode:
		var b strings.Builder
		b.WriteByte('<')
		b.WriteString(n.localName)
		if id, ok := n.GetAttribute("id"); ok && id != "" {
			b.WriteByte('#')
			b.WriteString(id)
		}
		if class, ok := n.GetAttribute("class"); ok {
			for _, c := range strings.Fields(class) {
				b.WriteByte('.')
				b.WriteString(c)
			}
		}
		b.WriteByte('>')
		return b.String()
	case TextNode:
		return fmt.Sprintf("#text %q", n.data)
	case CommentNode:
		return fmt.Sprintf("<!--%s-->", n.data)
	default:
		return n.NodeName()
	}
}
