// Package cache stores fetched list pages keyed by their query parameters.
//
// Two stores are provided:
//   - FileStore: JSON files in a directory (default ~/.datatable/cache/),
//     surviving process restarts
//   - MemoryStore: a process-local map for short-lived views
//
// Entries expire after a configurable TTL (default 30 seconds). Keys are
// SHA256 hashes of a canonical encoding of the query parameters, so two
// requests for the same page, sort, keyword and filters share an entry.
package cache
