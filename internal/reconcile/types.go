// Package reconcile implements the classifier and resolver of the
// three-way reconciliation engine: given the current, local, and
// master inventories, it computes the four candidate sets and reduces
// each into conflicts, no-op resolutions, and actionable mutations.
package reconcile

import (
	"sort"

	"github.com/tonimelisma/dat/internal/inventory"
)

// PathSet is a set of paths, used for the four candidate sets (push,
// pull, purge, kill).
type PathSet map[string]struct{}

// NewPathSet builds a PathSet from the given paths.
func NewPathSet(paths ...string) PathSet {
	s := make(PathSet, len(paths))
	for _, p := range paths {
		s[p] = struct{}{}
	}

	return s
}

// Add inserts path into the set.
func (s PathSet) Add(path string) {
	s[path] = struct{}{}
}

// Has reports whether path is a member.
func (s PathSet) Has(path string) bool {
	_, ok := s[path]
	return ok
}

// Sorted returns the set's members sorted ascending, for deterministic
// iteration and output.
func (s PathSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}

	sort.Strings(out)

	return out
}

// Intersect returns the members present in both s and paths, as a sorted
// slice. Used by status -r to split out the "deleted remotely but
// modified locally" cross-category (kill_conflict ∩ push) from the
// generic conflict report.
func (s PathSet) Intersect(paths []string) []string {
	var out []string

	for _, p := range paths {
		if s.Has(p) {
			out = append(out, p)
		}
	}

	return out
}

// Delta is the pure result of a resolver: a classification of every
// candidate path into conflict / resolved / actionable, plus the state
// mutations an actionable path requires. Resolvers never mutate their
// input inventories — Apply is the sole mutating step, called by the
// orchestrator only for non-dry commands. This is what lets status -r's
// dry run simply discard a Delta instead of running a snapshot-and-restore
// dance around a mutating resolver.
type Delta struct {
	// Conflicts holds paths the resolver refuses to auto-resolve.
	Conflicts []string

	// Resolved holds paths where the candidate set included a path that,
	// on inspection, was already a no-op (one side already matches the
	// eventual target) -- nothing to transport, but Local may still need
	// a fingerprint update.
	Resolved []string

	// Actionable holds paths that need a transport operation (upload,
	// download, or remote/local delete) in addition to a snapshot update.
	Actionable []string

	// LocalSet/LocalDelete describe how .dat/local must change once the
	// transport side of Actionable (and Resolved, where noted) paths has
	// been confirmed.
	LocalSet    map[string]string
	LocalDelete []string

	// MasterSet/MasterDelete describe how the remote master inventory
	// must change. Only populated by push/purge resolution — pull/kill
	// never mutate master, since master is the authority being read.
	MasterSet    map[string]string
	MasterDelete []string
}

func newDelta() *Delta {
	return &Delta{
		LocalSet:     make(map[string]string),
		MasterSet:    make(map[string]string),
		LocalDelete:  nil,
		MasterDelete: nil,
	}
}

// Apply mutates inv according to set (path -> new fingerprint) and
// deletes (paths to remove). It is the only function in this package
// that mutates an Inventory in place; resolvers themselves stay pure.
func Apply(inv *inventory.Inventory, set map[string]string, deletes []string) error {
	for _, p := range deletes {
		inv.Delete(p)
	}

	for p, digest := range set {
		if err := inv.Set(p, digest); err != nil {
			return err
		}
	}

	return nil
}
