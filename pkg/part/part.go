// Package part describes the DOM locations a value can be bound to.
//
// A Part is pure data: a kind, the node it addresses and, depending on the
// kind, an attribute/property/event name or the static text surrounding a
// text hole. Parts are created by templates (one per hole) and by list
// directives (one per item) and are then owned by exactly one binding.
package part

import (
	"fmt"
	"strings"

	"github.com/vango-dev/weft/pkg/dom"
)

// Kind is the part type discriminator.
type Kind uint8

const (
	KindAttribute Kind = iota + 1 // name=${v}
	KindChildNode                 // <${v}/> or <!--${v}-->
	KindElement                   // <div ${v}>
	KindEvent                     // @name=${v}
	KindLive                      // $name=${v}
	KindProperty                  // .name=${v}
	KindText                      // text ${v} content
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindAttribute:
		return "Attribute"
	case KindChildNode:
		return "ChildNode"
	case KindElement:
		return "Element"
	case KindEvent:
		return "Event"
	case KindLive:
		return "Live"
	case KindProperty:
		return "Property"
	case KindText:
		return "Text"
	default:
		return "Unknown"
	}
}

// Part is a typed pointer to one DOM bind site.
type Part struct {
	Kind Kind

	// Node is the addressed node: the element for attribute-like parts, the
	// anchor comment for child-node parts and the text node for text parts.
	Node *dom.Node

	// Name is the attribute, property or event name.
	Name string

	// AnchorNode is the first node of the committed content of a child-node
	// part, or nil when nothing is mounted before the anchor.
	AnchorNode *dom.Node

	// AnchorPart is set instead of AnchorNode when the committed content
	// starts with another child-node part whose own range is still moving.
	AnchorPart *Part

	// Namespace is the namespace URI new child content is created in.
	Namespace string

	// PrecedingText and FollowingText surround a text hole's value.
	PrecedingText string
	FollowingText string
}

// NewAttribute creates an attribute part.
func NewAttribute(node *dom.Node, name string) *Part {
	return &Part{Kind: KindAttribute, Node: node, Name: name}
}

// NewChildNode creates a child-node part anchored at comment.
func NewChildNode(anchor *dom.Node, namespace string) *Part {
	return &Part{Kind: KindChildNode, Node: anchor, Namespace: namespace}
}

// NewElement creates an element (spread) part.
func NewElement(node *dom.Node) *Part {
	return &Part{Kind: KindElement, Node: node}
}

// NewEvent creates an event part.
func NewEvent(node *dom.Node, name string) *Part {
	return &Part{Kind: KindEvent, Node: node, Name: name}
}

// NewLive creates a live-property part.
func NewLive(node *dom.Node, name string) *Part {
	return &Part{Kind: KindLive, Node: node, Name: name}
}

// NewProperty creates a property part.
func NewProperty(node *dom.Node, name string) *Part {
	return &Part{Kind: KindProperty, Node: node, Name: name}
}

// NewText creates a text part.
func NewText(node *dom.Node, preceding, following string) *Part {
	return &Part{Kind: KindText, Node: node, PrecedingText: preceding, FollowingText: following}
}

// StartNode returns the first node of a child-node part's range: the anchor
// node when content is mounted, else the part's own node.
func (p *Part) StartNode() *dom.Node {
	if p.Kind == KindChildNode {
		if p.AnchorNode != nil {
			return p.AnchorNode
		}
		if p.AnchorPart != nil {
			return p.AnchorPart.StartNode()
		}
	}
	return p.Node
}

// ClearAnchor forgets the mounted range of a child-node part.
func (p *Part) ClearAnchor() {
	p.AnchorNode = nil
	p.AnchorPart = nil
}

// Nodes returns the nodes a child-node part currently spans, from StartNode
// to the anchor comment inclusive.
func (p *Part) Nodes() []*dom.Node {
	var nodes []*dom.Node
	for n := p.StartNode(); n != nil; n = n.NextSibling() {
		nodes = append(nodes, n)
		if n == p.Node {
			break
		}
	}
	return nodes
}

// String returns a compact description such as Attribute(class) on <div>.
func (p *Part) String() string {
	if p == nil {
		return "<nil part>"
	}
	target := "<detached>"
	if p.Node != nil {
		target = p.Node.String()
	}
	if p.Name != "" {
		return fmt.Sprintf("%s(%s) on %s", p.Kind, p.Name, target)
	}
	return fmt.Sprintf("%s on %s", p.Kind, target)
}

// Describe renders the DOM context of the part for error messages: the
// ancestor chain of the addressed node with the bind site marked.
func Describe(p *Part) string {
	if p == nil || p.Node == nil {
		return p.String()
	}
	var chain []string
	for n := p.Node.ParentNode(); n != nil; n = n.ParentNode() {
		if n.NodeType() == dom.ElementNode {
			chain = append(chain, n.String())
		}
	}
	var b strings.Builder
	for i := len(chain) - 1; i >= 0; i-- {
		b.WriteString(chain[i])
		b.WriteString(" > ")
	}
	switch p.Kind {
	case KindAttribute:
		fmt.Fprintf(&b, "<%s %s=[[HERE]]>", p.Node.LocalName(), p.Name)
	case KindEvent:
		fmt.Fprintf(&b, "<%s @%s=[[HERE]]>", p.Node.LocalName(), p.Name)
	case KindLive:
		fmt.Fprintf(&b, "<%s $%s=[[HERE]]>", p.Node.LocalName(), p.Name)
	case KindProperty:
		fmt.Fprintf(&b, "<%s .%s=[[HERE]]>", p.Node.LocalName(), p.Name)
	case KindElement:
		fmt.Fprintf(&b, "<%s [[HERE]]>", p.Node.LocalName())
	case KindText:
		fmt.Fprintf(&b, "%s[[HERE]]%s", p.PrecedingText, p.FollowingText)
	case KindChildNode:
		b.WriteString("[[HERE]]")
	}
	return b.String()
}
