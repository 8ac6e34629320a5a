// Package host provides the two weft.Host implementations: ClientHost for a
// live document and ServerHost for rendering markup to send to a client.
//
// Both run on a scheduler.Loop. Nothing happens until the loop is driven:
//
//	h := host.NewClient()
//	rt := weft.NewRuntime(h)
//	root := weft.CreateRoot(App.With(props), container, rt)
//	handle := root.Mount()
//	h.Loop().RunUntilIdle()
//	err := handle.Err()
package host
