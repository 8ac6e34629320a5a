// Package primitive provides the directive types that bind plain values:
// attributes, properties, live properties, events, class lists, inline
// styles, refs, spreads and text.
//
// Each primitive is a singleton. Hosts pick one per part kind (and, for
// child-node parts, per value) and the runtime checks the value with
// EnsureValue before binding it.
package primitive
