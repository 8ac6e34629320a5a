// Package errors provides structured, actionable error messages for weft.
//
// Every failure the engine detects synchronously (directive misuse, hook
// order violations, invalid template markup, hydration mismatches) is a
// *WeftError carrying a registered code. The render pipeline panics with these
// values; the runtime recovers them at coroutine boundaries and surfaces them
// through update tasks, so callers see ordinary errors:
//
//	err := handle.Wait(ctx)
//	if errors.HasCode(err, "E201") {
//	    // hook order changed between renders
//	}
//
// # Error Categories
//
//   - directive: value rejected by a primitive, strict slot type change
//   - hook: hook order violations, hooks after finalization
//   - template: invalid markup, hole/value count mismatch
//   - hydration: server markup does not match the template
//   - render: component render failures
//   - scheduler: host callback failures
//   - config, cli: tooling errors
//
// Format renders an error for terminals, with colors enabled when stderr is
// a TTY.
package errors
