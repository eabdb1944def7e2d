// Package watcher implements owner-watch, which polls the owner server and
// logs every ownership transfer and status change it observes.
package watcher
