// Package directive provides directives built on top of the core runtime:
// keyed lists (Repeat, List) and wrappers that pick a slot layout for a value
// (Keyed, Cached, Strict).
package directive
