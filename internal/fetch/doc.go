// Package fetch defines the Fetcher contract consumed by the query
// coordinator and provides its implementations:
//   - HTTPFetcher: REST list endpoint (limit/offset/search/ordering query
//     string, envelope-or-array response) plus item CRUD
//   - CachedFetcher: page cache in front of any Fetcher, with concurrent
//     identical requests collapsed into one load
//   - FetchAll: every page of a list, fetched concurrently
//
// Fetchers never retry on behalf of the coordinator and must be safe for
// concurrent calls: a new Fetch may start before the previous one returns.
package fetch
