// Package assets is the container and asset-lifetime provider the graph
// model relies on: it creates named objects, tracks which objects reference
// which, answers "is this object still referenced elsewhere", and defers
// deletions until the owner loop asks for them to be performed.
//
// # Concurrency Model
//
// The graph model itself is driven from one owner goroutine, but the store is
// also read by the status endpoint and written by image-input imports started
// from watcher events. Objects live in a sync.Map keyed by their canonical
// path; the reference graph and the deletion queue share a single mutex since
// they are updated together.
package assets
