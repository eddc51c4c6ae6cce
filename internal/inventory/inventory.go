// Package inventory implements the Path -> Fingerprint mapping that
// backs every side of the three-way reconciliation (current, local,
// master), plus its sorted, tab-separated on-disk form.
package inventory

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tonimelisma/dat/internal/daterrors"
)

// Inventory is a Path -> Fingerprint map. Key order is irrelevant in
// memory; callers needing determinism should use Paths(), which returns
// keys sorted ascending.
type Inventory struct {
	entries map[string]string
}

// New returns an empty Inventory.
func New() *Inventory {
	return &Inventory{entries: make(map[string]string)}
}

// Set records path's fingerprint. Returns daterrors.ErrInvalidPath if
// path contains a literal tab or newline, since either would corrupt
// the tab-separated on-disk format.
func (inv *Inventory) Set(path, digest string) error {
	if strings.ContainsAny(path, "\t\n\r") {
		return fmt.Errorf("%w: %q", daterrors.ErrInvalidPath, path)
	}

	inv.entries[path] = digest

	return nil
}

// Delete removes path from the inventory. No-op if absent.
func (inv *Inventory) Delete(path string) {
	delete(inv.entries, path)
}

// Get returns path's fingerprint and whether it was present.
func (inv *Inventory) Get(path string) (string, bool) {
	d, ok := inv.entries[path]
	return d, ok
}

// Has reports whether path is present.
func (inv *Inventory) Has(path string) bool {
	_, ok := inv.entries[path]
	return ok
}

// Len returns the number of entries.
func (inv *Inventory) Len() int {
	return len(inv.entries)
}

// Paths returns every path, sorted ascending.
func (inv *Inventory) Paths() []string {
	paths := make([]string, 0, len(inv.entries))
	for p := range inv.entries {
		paths = append(paths, p)
	}

	sort.Strings(paths)

	return paths
}

// Clone returns a deep copy, used by dry-run callers that want to
// classify without risking accidental mutation of a shared inventory.
func (inv *Inventory) Clone() *Inventory {
	c := New()
	for k, v := range inv.entries {
		c.entries[k] = v
	}

	return c
}

// WriteTo serializes the inventory in sorted path<TAB>fingerprint<LF>
// form.
func (inv *Inventory) WriteTo(w io.Writer) (int64, error) {
	var total int64

	for _, p := range inv.Paths() {
		n, err := fmt.Fprintf(w, "%s\t%s\n", p, inv.entries[p])
		total += int64(n)

		if err != nil {
			return total, err
		}
	}

	return total, nil
}

// Parse reads the tab-separated inventory format. Tolerates a trailing
// \r (CRLF line endings); rejects any line without exactly one tab.
func Parse(r io.Reader) (*Inventory, error) {
	inv := New()
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 2 {
			return nil, fmt.Errorf("inventory: line %d: expected exactly one tab, got %d", lineNo, len(fields)-1)
		}

		inv.entries[fields[0]] = fields[1]
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("inventory: scanning: %w", err)
	}

	return inv, nil
}

// Read loads an inventory from path. A missing file yields an empty
// inventory (the documented "empty on first use" local-snapshot state),
// not an error.
func Read(path string) (*Inventory, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}

		return nil, fmt.Errorf("inventory: opening %s: %w", path, err)
	}
	defer f.Close()

	return Parse(f)
}

// Write persists the inventory to path atomically: write to a temp file
// in the same directory, fsync, then rename over the destination.
func Write(path string, inv *Inventory) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".tmp-inventory-*")
	if err != nil {
		return fmt.Errorf("inventory: creating temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()

	defer func() {
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	if _, err := inv.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("inventory: writing %s: %w", tmpPath, err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("inventory: fsync %s: %w", tmpPath, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("inventory: closing %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("inventory: renaming %s to %s: %w", tmpPath, path, err)
	}

	return nil
}
