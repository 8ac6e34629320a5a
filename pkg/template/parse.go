package template

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/vango-dev/weft/internal/errors"
	"github.com/vango-dev/weft/pkg/dom"
	"github.com/vango-dev/weft/pkg/part"
	"github.com/vango-dev/weft/pkg/weft"
)

var attributeNamePattern = regexp.MustCompile(`([^\s"'<>/=]+)\s*=\s*["']?$`)

// Parse builds a template from the static strings of a template literal.
// placeholder must not occur in strs; it marks holes while the combined
// markup goes through the HTML parser.
func Parse(strs []string, placeholder string, mode weft.TemplateMode) (Renderer, error) {
	if len(strs) == 0 {
		return nil, errors.New("E302").WithDetail("template has no strings")
	}
	arity := len(strs) - 1

	if arity == 0 && strings.TrimSpace(strs[0]) == "" {
		return Empty, nil
	}
	if mode == weft.ModeTextarea {
		return parseText(strs), nil
	}
	if arity == 1 {
		before, after := strings.TrimSpace(strs[0]), strings.TrimSpace(strs[1])
		switch {
		case before == "" && after == "":
			return &TextTemplate{Preceding: strs[0], Following: strs[1]}, nil
		case isChildNodeHole(before, after):
			return ChildNode, nil
		}
	}
	return parseTagged(strs, placeholder, mode)
}

func isChildNodeHole(before, after string) bool {
	return (before == "<" && after == "/>") || (before == "<!--" && after == "-->")
}

// parseText builds a template whose content is all text, as inside a
// <textarea>.
func parseText(strs []string) Renderer {
	if len(strs) == 2 {
		return &TextTemplate{Preceding: strs[0], Following: strs[1]}
	}
	t := &TaggedTemplate{mode: weft.ModeTextarea, fragment: dom.NewFragment(), arity: len(strs) - 1}
	if len(strs) == 1 {
		t.fragment.AppendChild(dom.NewText(strs[0]))
		return t
	}
	for i := 0; i < t.arity; i++ {
		following := ""
		if i == t.arity-1 {
			following = strs[i+1]
		}
		t.fragment.AppendChild(dom.NewText(""))
		t.holes = append(t.holes, hole{kind: part.KindText, index: i, bind: i, preceding: strs[i], following: following})
	}
	return t
}

type parser struct {
	placeholder string
	token       *regexp.Regexp
	names       []string
	holes       []*pendingHole
	mode        weft.TemplateMode
}

type pendingHole struct {
	hole
	node *dom.Node
}

func parseTagged(strs []string, placeholder string, mode weft.TemplateMode) (Renderer, error) {
	arity := len(strs) - 1
	p := &parser{
		placeholder: placeholder,
		token:       regexp.MustCompile(regexp.QuoteMeta(placeholder) + `-(\d+)-`),
		names:       make([]string, arity),
		holes:       make([]*pendingHole, arity),
		mode:        mode,
	}

	for _, s := range strs {
		if strings.Contains(s, placeholder) {
			return nil, errors.New("E301").WithDetailf("markup contains the placeholder %q", placeholder)
		}
	}

	parts := append([]string(nil), strs...)
	var b strings.Builder
	for i := 0; i < arity; i++ {
		marker := placeholder + "-" + strconv.Itoa(i) + "-"
		switch {
		case strings.HasSuffix(parts[i], "<") && strings.HasPrefix(strings.TrimLeft(parts[i+1], " \t\n"), "/>"):
			parts[i] = strings.TrimSuffix(parts[i], "<")
			parts[i+1] = strings.TrimPrefix(strings.TrimLeft(parts[i+1], " \t\n"), "/>")
			b.WriteString(parts[i])
			b.WriteString("<!--" + marker + "-->")
		case strings.HasSuffix(parts[i], "<!--") && strings.HasPrefix(parts[i+1], "-->"):
			parts[i] = strings.TrimSuffix(parts[i], "<!--")
			parts[i+1] = strings.TrimPrefix(parts[i+1], "-->")
			b.WriteString(parts[i])
			b.WriteString("<!--" + marker + "-->")
		default:
			if m := attributeNamePattern.FindStringSubmatch(parts[i]); m != nil {
				p.names[i] = m[1]
			}
			b.WriteString(parts[i])
			b.WriteString(marker)
		}
	}
	b.WriteString(parts[arity])

	fragment, err := dom.ParseFragment(strings.NewReader(b.String()), contextElement(mode))
	if err != nil {
		return nil, errors.New("E301").Wrap(err)
	}
	if err := p.walk(fragment); err != nil {
		return nil, err
	}

	index := make(map[*dom.Node]int)
	i := 0
	preorder(fragment, func(n *dom.Node) {
		index[n] = i
		i++
	})

	t := &TaggedTemplate{mode: mode, fragment: fragment, arity: arity, holes: make([]hole, arity)}
	for i, h := range p.holes {
		if h == nil {
			return nil, errors.New("E302").WithDetailf("hole %d did not survive parsing; holes are only allowed in attribute values, text and as <${...}/>", i)
		}
		h.index = index[h.node]
		t.holes[i] = h.hole
	}
	return t, nil
}

func contextElement(mode weft.TemplateMode) *dom.Node {
	switch mode {
	case weft.ModeSVG:
		return dom.NewElementNS(dom.SVGNamespace, "svg")
	case weft.ModeMathML:
		return dom.NewElementNS(dom.MathMLNamespace, "math")
	default:
		return dom.NewElement("body")
	}
}

// holeIndex returns the index of s when s is exactly one marker.
func (p *parser) holeIndex(s string) (int, bool) {
	m := p.token.FindStringSubmatchIndex(s)
	if m == nil || m[0] != 0 || m[1] != len(s) {
		return 0, false
	}
	i, err := strconv.Atoi(s[m[2]:m[3]])
	if err != nil || i >= len(p.holes) {
		return 0, false
	}
	return i, true
}

func (p *parser) record(i int, h hole, node *dom.Node) error {
	if p.holes[i] != nil {
		return errors.New("E301").WithDetailf("hole %d appears twice", i)
	}
	h.bind = i
	p.holes[i] = &pendingHole{hole: h, node: node}
	return nil
}

func (p *parser) walk(parent *dom.Node) error {
	for c := parent.FirstChild(); c != nil; {
		next := c.NextSibling()
		switch c.NodeType() {
		case dom.ElementNode:
			if err := p.element(c); err != nil {
				return err
			}
			if err := p.walk(c); err != nil {
				return err
			}
		case dom.CommentNode:
			if i, ok := p.holeIndex(c.Data()); ok {
				c.SetData("")
				h := hole{kind: part.KindChildNode, namespace: childNamespace(parent, p.mode.Namespace())}
				if err := p.record(i, h, c); err != nil {
					return err
				}
			} else if strings.Contains(c.Data(), p.placeholder) {
				return errors.New("E301").WithDetail("holes inside comments must be the whole comment: <!--${...}-->")
			}
		case dom.TextNode:
			if err := p.text(c); err != nil {
				return err
			}
		}
		c = next
	}
	return nil
}

func (p *parser) element(el *dom.Node) error {
	if strings.Contains(el.LocalName(), p.placeholder) {
		return errors.New("E301").WithDetailf("hole in tag name of %s", el)
	}
	for _, a := range el.Attributes() {
		if i, ok := p.holeIndex(a.Name); ok {
			if a.Value != "" {
				return errors.New("E301").WithDetailf("spread hole on %s must not have a value", el)
			}
			el.RemoveAttribute(a.Name)
			if err := p.record(i, hole{kind: part.KindElement}, el); err != nil {
				return err
			}
			continue
		}
		if strings.Contains(a.Name, p.placeholder) {
			return errors.New("E301").WithDetailf("hole in attribute name on %s", el)
		}
		i, ok := p.holeIndex(a.Value)
		if !ok {
			if strings.Contains(a.Value, p.placeholder) {
				return errors.New("E301").WithDetailf("partial attribute interpolation in %s=%q on %s; bind the whole value", a.Name, a.Value, el)
			}
			continue
		}
		el.RemoveAttribute(a.Name)
		name := p.names[i]
		if !strings.EqualFold(name, a.Name) {
			name = a.Name
		}
		if err := p.record(i, attributeHole(name), el); err != nil {
			return err
		}
	}
	return nil
}

func attributeHole(name string) hole {
	switch {
	case strings.HasPrefix(name, "@"):
		return hole{kind: part.KindEvent, name: name[1:]}
	case strings.HasPrefix(name, "."):
		return hole{kind: part.KindProperty, name: name[1:]}
	case strings.HasPrefix(name, "$"):
		return hole{kind: part.KindLive, name: name[1:]}
	default:
		return hole{kind: part.KindAttribute, name: name}
	}
}

// text splits a text node holding markers into one empty text node per
// hole, each carrying the static text around it.
func (p *parser) text(n *dom.Node) error {
	data := n.Data()
	matches := p.token.FindAllStringSubmatchIndex(data, -1)
	if len(matches) == 0 {
		return nil
	}
	parent := n.ParentNode()
	last := 0
	for k, m := range matches {
		i, err := strconv.Atoi(data[m[2]:m[3]])
		if err != nil || i >= len(p.holes) {
			return errors.New("E301").WithDetailf("unknown hole marker %q", data[m[0]:m[1]])
		}
		h := hole{kind: part.KindText, preceding: data[last:m[0]]}
		if k == len(matches)-1 {
			h.following = data[m[1]:]
		}
		text := dom.NewText("")
		parent.InsertBefore(text, n)
		if err := p.record(i, h, text); err != nil {
			return err
		}
		last = m[1]
	}
	n.Remove()
	return nil
}

func preorder(root *dom.Node, fn func(*dom.Node)) {
	for c := root.FirstChild(); c != nil; c = c.NextSibling() {
		fn(c)
		preorder(c, fn)
	}
}
