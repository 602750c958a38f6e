// Package seeders provides a registry of database seed functions for
// local development, run with `saydalia seed`.
//
// Define a seeder in any file in this package:
//
//	func init() {
//	    seeders.Register("demo", SeedDemo)
//	}
package seeders

import (
	"context"
	"fmt"
	"sync"
)

// SeederFunc is the signature for a seed function. Seeders run after the
// database connection is established and indexes are in place.
type SeederFunc func(ctx context.Context) error

type entry struct {
	name string
	fn   SeederFunc
}

var (
	mu      sync.Mutex
	entries []entry
)

// Register adds a seeder under a name. Registration order is run order.
func Register(name string, fn SeederFunc) {
	mu.Lock()
	defer mu.Unlock()
	entries = append(entries, entry{name: name, fn: fn})
}

// Run executes all registered seeders in order, stopping at the first
// failure.
func Run(ctx context.Context) error {
	mu.Lock()
	list := append([]entry(nil), entries...)
	mu.Unlock()

	for _, e := range list {
		fmt.Printf("Seeding %s…\n", e.name)
		if err := e.fn(ctx); err != nil {
			return fmt.Errorf("seeder %s: %w", e.name, err)
		}
	}
	fmt.Printf("Done (%d seeders).\n", len(list))
	return nil
}
