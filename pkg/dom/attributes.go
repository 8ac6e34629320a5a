package dom

import (
	"sort"
	"strings"
)

// Attribute is a single element attribute.
type Attribute struct {
	Name  string
	Value string
}

// Attributes returns a copy of the element's attributes in insertion order.
func (n *Node) Attributes() []Attribute {
	return append([]Attribute(nil), n.attrs...)
}

// GetAttribute returns the attribute value and whether it is present.
func (n *Node) GetAttribute(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// HasAttribute reports whether the attribute is present.
func (n *Node) HasAttribute(name string) bool {
	_, ok := n.GetAttribute(name)
	return ok
}

// SetAttribute sets an attribute, keeping the position of an existing one.
func (n *Node) SetAttribute(name, value string) {
	for i := range n.attrs {
		if n.attrs[i].Name == name {
			n.attrs[i].Value = value
			return
		}
	}
	n.attrs = append(n.attrs, Attribute{Name: name, Value: value})
}

// RemoveAttribute removes an attribute if present.
func (n *Node) RemoveAttribute(name string) {
	for i := range n.attrs {
		if n.attrs[i].Name == name {
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			return
		}
	}
}

// ToggleAttribute adds (force=true) or removes (force=false) an empty
// attribute and reports whether it is present afterwards.
func (n *Node) ToggleAttribute(name string, force bool) bool {
	if force {
		if !n.HasAttribute(name) {
			n.SetAttribute(name, "")
		}
		return true
	}
	n.RemoveAttribute(name)
	return false
}

// reflectedBooleans are properties mirrored by the presence of an attribute
// until they are explicitly assigned.
var reflectedBooleans = map[string]bool{
	"checked":  true,
	"disabled": true,
	"hidden":   true,
	"multiple": true,
	"readOnly": true,
	"required": true,
	"selected": true,
}

// reflectedStrings are properties mirrored by an attribute value until they
// are explicitly assigned.
var reflectedStrings = map[string]string{
	"value":     "value",
	"id":        "id",
	"className": "class",
	"title":     "title",
	"href":      "href",
	"name":      "name",
	"type":      "type",
}

// Property returns a property value. Unassigned properties that reflect an
// attribute (value, checked, className, ...) are read from the attribute.
func (n *Node) Property(name string) (any, bool) {
	if v, ok := n.props[name]; ok {
		return v, true
	}
	switch {
	case name == "textContent":
		return n.TextContent(), true
	case reflectedBooleans[name]:
		return n.HasAttribute(strings.ToLower(name)), true
	}
	if attr, ok := reflectedStrings[name]; ok {
		v, _ := n.GetAttribute(attr)
		return v, true
	}
	return nil, false
}

// SetProperty assigns a property. textContent replaces the children.
func (n *Node) SetProperty(name string, value any) {
	if name == "textContent" {
		s, _ := value.(string)
		n.SetTextContent(s)
		return
	}
	if n.props == nil {
		n.props = make(map[string]any)
	}
	n.props[name] = value
}

// DeleteProperty removes an assigned property, restoring attribute reflection.
func (n *Node) DeleteProperty(name string) {
	delete(n.props, name)
}

// ClassList returns a view over the element's class attribute.
func (n *Node) ClassList() *TokenList {
	return &TokenList{node: n, attr: "class"}
}

// TokenList is a live view over a whitespace separated attribute.
type TokenList struct {
	node *Node
	attr string
}

// Values returns the tokens in order.
func (l *TokenList) Values() []string {
	v, _ := l.node.GetAttribute(l.attr)
	return strings.Fields(v)
}

// Contains reports whether token is present.
func (l *TokenList) Contains(token string) bool {
	for _, t := range l.Values() {
		if t == token {
			return true
		}
	}
	return false
}

// Add appends tokens that are not present yet.
func (l *TokenList) Add(tokens ...string) {
	values := l.Values()
	changed := false
	for _, token := range tokens {
		if token == "" || containsString(values, token) {
			continue
		}
		values = append(values, token)
		changed = true
	}
	if changed || !l.node.HasAttribute(l.attr) {
		l.node.SetAttribute(l.attr, strings.Join(values, " "))
	}
}

// Remove removes tokens.
func (l *TokenList) Remove(tokens ...string) {
	if !l.node.HasAttribute(l.attr) {
		return
	}
	values := l.Values()
	kept := values[:0]
	for _, v := range values {
		if !containsString(tokens, v) {
			kept = append(kept, v)
		}
	}
	l.node.SetAttribute(l.attr, strings.Join(kept, " "))
}

// Toggle adds or removes token according to force.
func (l *TokenList) Toggle(token string, force bool) {
	if force {
		l.Add(token)
	} else {
		l.Remove(token)
	}
}

func containsString(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

// Style returns a view over the element's style attribute.
func (n *Node) Style() *StyleDeclaration {
	return &StyleDeclaration{node: n}
}

// StyleDeclaration is a live view over the style attribute.
type StyleDeclaration struct {
	node *Node
}

type styleEntry struct {
	name, value string
}

func (s *StyleDeclaration) entries() []styleEntry {
	raw, _ := s.node.GetAttribute("style")
	var entries []styleEntry
	for _, decl := range strings.Split(raw, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		entries = append(entries, styleEntry{name: name, value: strings.TrimSpace(value)})
	}
	return entries
}

func (s *StyleDeclaration) write(entries []styleEntry) {
	if len(entries) == 0 {
		s.node.RemoveAttribute("style")
		return
	}
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = e.name + ": " + e.value
	}
	s.node.SetAttribute("style", strings.Join(parts, "; "))
}

// GetPropertyValue returns the value of a declaration, or "".
func (s *StyleDeclaration) GetPropertyValue(name string) string {
	for _, e := range s.entries() {
		if e.name == name {
			return e.value
		}
	}
	return ""
}

// SetProperty sets a declaration; an empty value removes it.
func (s *StyleDeclaration) SetProperty(name, value string) {
	if value == "" {
		s.RemoveProperty(name)
		return
	}
	entries := s.entries()
	for i := range entries {
		if entries[i].name == name {
			entries[i].value = value
			s.write(entries)
			return
		}
	}
	s.write(append(entries, styleEntry{name: name, value: value}))
}

// RemoveProperty removes a declaration.
func (s *StyleDeclaration) RemoveProperty(name string) {
	entries := s.entries()
	kept := entries[:0]
	for _, e := range entries {
		if e.name != name {
			kept = append(kept, e)
		}
	}
	if len(kept) != len(entries) {
		s.write(kept)
	}
}

// Names returns the declared property names in sorted order.
func (s *StyleDeclaration) Names() []string {
	var names []string
	for _, e := range s.entries() {
		names = append(names, e.name)
	}
	sort.Strings(names)
	return names
}
