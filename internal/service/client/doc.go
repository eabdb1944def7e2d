// Package client implements the owner-ctl operations.
//
// Each operation loads settings, connects to the owner server, performs one
// call and prints the result. Updates are sent as the local user unless an
// explicit caller is given, and are retried while the server is unreachable.
package client
