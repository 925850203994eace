// Package query defines the immutable request and result values exchanged
// between list views, the query coordinator, and fetchers.
//
// This package contains the shared list-fetch contract, including:
//   - Parameters: one fetch request (pagination, sort, search keyword, extra filters)
//   - State: the mutable-by-replacement view state a Parameters value is derived from
//   - Page: the result of one fetch (items plus total count)
//   - DecodePage: the envelope-or-array compatibility decoder for list responses
//   - Meta: pager metadata (current page, total pages, page window)
//
// Values in this package are never mutated in place once built; maps are
// copied on construction and on access.
package query
