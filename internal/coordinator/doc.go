// Package coordinator turns sort, page and search triggers into a single
// stream of paginated fetches.
//
// A Coordinator owns the view state of one list. Every trigger records the
// new partial state and starts a fetch cycle; a cycle started later always
// supersedes earlier ones. Each cycle carries a generation number, and a
// completion whose generation is no longer current is dropped without
// touching the published page or the loading flag. Superseded fetches also
// have their context cancelled, but correctness never depends on the
// fetcher honouring it.
//
// All cycle bookkeeping and every subscriber callback run on one goroutine
// per attached session, fed by an unbounded FIFO queue. Public methods only
// enqueue work, so callbacks may call back into the coordinator.
//
// Fetch failures are never surfaced to subscribers: they are logged, handed
// to the Observer, and published as an empty page so the view always
// resolves its loading state.
package coordinator
