package weft

import (
	"strings"

	"github.com/vango-dev/weft/internal/errors"
	"github.com/vango-dev/weft/pkg/dom"
)

// HydrationTree is a cursor over existing DOM that templates claim nodes from
// in document order. Claims that do not match panic with a hydration error.
type HydrationTree struct {
	parent *dom.Node
	next   *dom.Node
	stack  []*dom.Node
}

// NewHydrationTree positions a cursor at the first child of container.
func NewHydrationTree(container *dom.Node) *HydrationTree {
	return &HydrationTree{parent: container, next: container.FirstChild()}
}

// Peek returns the node the next claim will inspect, or nil at the end of
// the current parent.
func (t *HydrationTree) Peek() *dom.Node {
	return t.next
}

// Parent returns the node whose children are being claimed.
func (t *HydrationTree) Parent() *dom.Node {
	return t.parent
}

// PopElement claims an element named localName.
func (t *HydrationTree) PopElement(localName string) *dom.Node {
	n := t.next
	if n == nil {
		panic(errors.New("E402").WithDetailf("expected <%s> in %s, found nothing", localName, t.parent))
	}
	if n.NodeType() != dom.ElementNode || !strings.EqualFold(n.LocalName(), localName) {
		panic(errors.New("E401").WithDetailf("expected <%s>, found %s", localName, n))
	}
	t.next = n.NextSibling()
	return n
}

// PopComment claims a comment node.
func (t *HydrationTree) PopComment() *dom.Node {
	n := t.next
	if n == nil {
		panic(errors.New("E402").WithDetailf("expected comment in %s, found nothing", t.parent))
	}
	if n.NodeType() != dom.CommentNode {
		panic(errors.New("E401").WithDetailf("expected comment, found %s", n))
	}
	t.next = n.NextSibling()
	return n
}

// PopText claims a text node holding expected. Adjacent text that the parser
// merged into one node is split at len(expected), and an empty text node is
// created when the server emitted none. With strict set, the claimed data
// must equal expected.
func (t *HydrationTree) PopText(expected string, strict bool) *dom.Node {
	n := t.next
	if n == nil || n.NodeType() != dom.TextNode {
		if expected != "" {
			if n == nil {
				panic(errors.New("E402").WithDetailf("expected text %q in %s, found nothing", expected, t.parent))
			}
			panic(errors.New("E401").WithDetailf("expected text %q, found %s", expected, n))
		}
		text := dom.NewText("")
		t.parent.InsertBefore(text, n)
		return text
	}
	if len(n.Data()) > len(expected) {
		n.SplitText(len(expected))
	}
	if strict && n.Data() != expected {
		panic(errors.New("E403").WithDetailf("expected %q, found %q", expected, n.Data()))
	}
	t.next = n.NextSibling()
	return n
}

// Enter descends into the children of el, which must have been claimed.
func (t *HydrationTree) Enter(el *dom.Node) {
	t.stack = append(t.stack, t.parent)
	t.parent = el
	t.next = el.FirstChild()
}

// Leave returns to the parent of the current element. Unclaimed children
// left behind are a mismatch.
func (t *HydrationTree) Leave() {
	if t.next != nil {
		panic(errors.New("E401").WithDetailf("unexpected %s in %s", t.next, t.parent))
	}
	el := t.parent
	t.parent = t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
	t.next = el.NextSibling()
}
