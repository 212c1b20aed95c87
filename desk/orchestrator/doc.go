// Package orchestrator drives the borrow/return lifecycle of one open book.
//
// A BookDetailView owns exactly one core.State. Every method blocks for the
// duration of its backend calls and returns the resulting state; decisions are
// taken by the pure functions in desk/core, requests go through the feature
// handlers passed in as Ports. After every successful mutation the view
// re-resolves the borrow status and refreshes the catalog instead of patching
// local state.
package orchestrator
