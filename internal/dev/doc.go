// Package dev provides the development server.
//
// The server renders pages from the project's pages directory on every
// request, so edits show up without a build step:
//
//   - Watcher: polls the pages directory and config file for changes
//   - Server: renders pages through a server host and serves them
//   - Hub: notifies browsers of changes and streams runtime events
//
// # Usage
//
//	srv := dev.NewServer(dev.ServerOptions{Config: cfg})
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Routes
//
//	GET /                          page index
//	GET /pages/{name}              rendered page
//	GET /_weft/pages/{name}/holes  holes of a page as JSON
//	GET /_weft/ws                  WebSocket for reloads and events
//	GET /metrics                   Prometheus metrics (metrics.enabled)
//
// # Protocol
//
// Messages on /_weft/ws are JSON-encoded:
//
//	{"type": "reload", "page": "index"}  // reload browsers showing index
//	{"type": "reload"}                   // reload every browser
//	{"type": "error", "error": "..."}    // show the error overlay
//	{"type": "clear"}                    // clear the error overlay
//	{"type": "event", "event": {...}}    // a runtime event (dev.events)
package dev
