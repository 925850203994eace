// Package trigger produces the sort, page and search events a coordinator
// consumes. Each source is decoupled from the coordinator through a sink
// function, so views and tests can wire them to anything.
package trigger
