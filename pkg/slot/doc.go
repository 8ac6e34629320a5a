// Package slot implements the slot layouts that decide how a part reconciles
// a new value with the binding it already holds.
//
//   - Strict keeps one binding and rejects a change of directive type.
//   - Flexible swaps bindings on a type change and reuses the previous one
//     when the type switches back.
//   - Keyed ties binding identity to the directive key.
//   - Cached keeps one inner slot per key.
//
// Slots never touch the DOM outside Commit and Rollback. The owner of a slot
// commits it when Reconcile or Attach reported pending work, and rolls it
// back when it removes the slot's content.
package slot
