// Package pages loads page markup for prerendering.
//
// A page is a markup file, name.html, whose ${key} holes are filled from an
// optional data file of the same name, name.json:
//
//	<!-- pages/index.html -->
//	<main class=${theme}><h1>${title}</h1>${body}</main>
//
//	// pages/index.json
//	{"theme": "dark", "title": "Docs", "body": "Welcome"}
//
// Pages render through a server host, so the output carries the markers a
// client runtime needs to hydrate it.
package pages
