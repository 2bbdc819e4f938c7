// Package resource bounds the resources used by background training: the
// number of concurrent training tasks and the memory held by sample buffers.
package resource
