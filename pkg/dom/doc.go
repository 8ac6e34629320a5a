// Package dom provides the in-memory host document used by the weft engine.
//
// The engine never touches a browser directly. Everything it needs from a host
// document (node creation, tree mutation, attributes, properties, events) is
// provided by *Node. The same tree backs client rendering in tests and
// tooling, server-side rendering via WriteHTML, and hydration input via
// ParseHTML.
//
// # Tree Mutation
//
//	ul := dom.NewElement("ul")
//	li := dom.NewElement("li")
//	li.AppendChild(dom.NewText("foo"))
//	ul.AppendChild(li)
//	fmt.Println(ul.OuterHTML()) // <ul><li>foo</li></ul>
//
// Inserting a fragment moves its children, as in the DOM.
//
// # Events
//
// Listeners must be comparable values (typically pointers) so they can be
// removed again. ListenerFunc is provided for one-off registrations through
// AddEventListenerFunc, which returns a remover instead.
//
// # Namespaces
//
// Elements carry a namespace URI (HTMLNamespace, SVGNamespace,
// MathMLNamespace). Parsing maps foreign content to the proper namespace and
// serialization self-closes empty foreign elements.
package dom
