// Package template parses template literals into reusable templates and
// instantiates them into the DOM.
//
// A template is parsed once per static string array. Holes may appear in
// attribute values, in text, as a whole comment (<!--${x}-->) or as a
// self-closing tag (<${x}/>), and as a valueless attribute for spreads.
// Attribute names select the part kind:
//
//	<button @click=${onClick}>   event
//	<input .value=${v}>          property
//	<input $value=${v}>          live property
//	<div :class=${classes}>      class list
//	<div ${props}>               spread
//
// Render clones the static fragment and attaches a slot per hole; Hydrate
// walks server-rendered DOM with a weft.HydrationTree and claims the same
// nodes instead.
package template
