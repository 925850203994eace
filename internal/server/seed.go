package server

import (
	"fmt"
	"strings"
)

//nolint:gochecknoglobals // Seed vocabularies.
var (
	firstNames = []string{"Ada", "Grace", "Alan", "Edsger", "Barbara", "Donald", "Frances", "Ken", "Radia", "Niklaus", "Margaret", "Dennis"}
	lastNames  = []string{"Lovelace", "Hopper", "Turing", "Dijkstra", "Liskov", "Knuth", "Allen", "Thompson", "Perlman", "Wirth", "Hamilton", "Ritchie"}
	cities     = []string{"London", "New York", "Zurich", "Austin", "Boston", "Berlin", "Paris", "Toronto", "Oslo", "Lisbon", "Kyoto"}
)

// SeedItems returns n deterministic demo items with IDs 1..n.
func SeedItems(n int) []Item {
	items := make([]Item, n)
	for i := range items {
		first := firstNames[i%len(firstNames)]
		last := lastNames[(i/len(firstNames))%len(lastNames)]
		items[i] = Item{
			ID:     i + 1,
			Name:   fmt.Sprintf("%s %s %d", first, last, i+1),
			Email:  fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), i+1),
			City:   cities[i%len(cities)],
			Active: i%3 != 0,
		}
	}
	return items
}

