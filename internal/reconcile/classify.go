package reconcile

import "github.com/tonimelisma/dat/internal/inventory"

// Push returns { p : p in current AND (p not in local OR current[p] !=
// local[p]) }. When local is empty, push is every path in current (the
// first-ever push).
func Push(current, local *inventory.Inventory) PathSet {
	set := make(PathSet)

	if local.Len() == 0 {
		for _, p := range current.Paths() {
			set.Add(p)
		}

		return set
	}

	for _, p := range current.Paths() {
		c, _ := current.Get(p)

		l, ok := local.Get(p)
		if !ok || c != l {
			set.Add(p)
		}
	}

	return set
}

// Purge returns { p : p in local AND p not in current }.
func Purge(current, local *inventory.Inventory) PathSet {
	set := make(PathSet)

	for _, p := range local.Paths() {
		if !current.Has(p) {
			set.Add(p)
		}
	}

	return set
}

// Pull returns { p : p in master AND (p not in local OR master[p] !=
// local[p]) }.
func Pull(master, local *inventory.Inventory) PathSet {
	set := make(PathSet)

	for _, p := range master.Paths() {
		m, _ := master.Get(p)

		l, ok := local.Get(p)
		if !ok || m != l {
			set.Add(p)
		}
	}

	return set
}

// Kill returns { p : p in local AND p not in master }.
func Kill(master, local *inventory.Inventory) PathSet {
	set := make(PathSet)

	for _, p := range local.Paths() {
		if !master.Has(p) {
			set.Add(p)
		}
	}

	return set
}
