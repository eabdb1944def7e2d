// Package owner contains the ownership state machine that guards a single
// persisted record: the current owner account and an optional status string.
//
// Only the current owner may transfer ownership or change the status. Every
// operation receives the storage capability explicitly; the Machine itself is
// a long-lived value bound to one fixed key.
package owner
