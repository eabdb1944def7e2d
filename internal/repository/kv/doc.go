// Package kv implements the persistent key-value stores that hold the owner
// record and the contract info record.
//
// Every backend satisfies Store: a value is loaded and saved as a whole, and a
// save replaces the previous value atomically. Missing keys are reported with
// ErrNotFound.
package kv
