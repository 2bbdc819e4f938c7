// Package searcher implements the binary heaps used by nearest-neighbor
// search: bounded max-heaps for result collection and min-heaps for
// best-first branch exploration.
package searcher
