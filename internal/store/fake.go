package store

import (
	"context"

	"github.com/tonimelisma/dat/internal/inventory"
)

// Fake is an in-memory Adapter, used by orchestrator tests in place of
// a real S3 bucket. It mirrors the semantics of S3Adapter closely
// enough to exercise the orchestrator's push/pull/status/stash flows
// end-to-end without shelling out to the aws CLI.
type Fake struct {
	Bucket       map[string][]byte // object key (without prefix) -> contents
	MasterInv    *inventory.Inventory
	BucketExists bool
	Files        map[string][]byte // simulated local filesystem contents, by path relative to root
}

// NewFake returns an empty Fake store.
func NewFake() *Fake {
	return &Fake{
		Bucket: make(map[string][]byte),
		Files:  make(map[string][]byte),
	}
}

func (f *Fake) FetchMaster(context.Context) (*inventory.Inventory, error) {
	if f.MasterInv == nil {
		return nil, ErrNotFound
	}

	return f.MasterInv.Clone(), nil
}

func (f *Fake) CreatePrefix(context.Context) error {
	f.BucketExists = true
	return nil
}

func (f *Fake) SyncUpload(_ context.Context, _ string, includePaths []string, master *inventory.Inventory) error {
	f.MasterInv = master.Clone()

	included := make(map[string]bool, len(includePaths))
	for _, p := range includePaths {
		included[p] = true

		if data, ok := f.Files[p]; ok {
			f.Bucket[p] = data
		}
	}

	for key := range f.Bucket {
		if !included[key] {
			delete(f.Bucket, key)
		}
	}

	return nil
}

func (f *Fake) SyncDownload(_ context.Context, _ string, includePaths []string) error {
	included := make(map[string]bool, len(includePaths))
	for _, p := range includePaths {
		included[p] = true

		if data, ok := f.Bucket[p]; ok {
			f.Files[p] = data
		}
	}

	for path := range f.Files {
		if !included[path] {
			delete(f.Files, path)
		}
	}

	return nil
}

func (f *Fake) ListRemote(context.Context) ([]string, error) {
	keys := make([]string, 0, len(f.Bucket))
	for k := range f.Bucket {
		keys = append(keys, k)
	}

	return keys, nil
}

func (f *Fake) RemovePrefix(context.Context) error {
	f.Bucket = make(map[string][]byte)
	f.MasterInv = nil
	f.BucketExists = false

	return nil
}
