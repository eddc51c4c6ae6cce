// Package store implements the store adapter: fetching and pushing the
// remote master inventory object, and syncing individual blobs under
// include-lists, against an S3 bucket or bucket/prefix.
package store

import (
	"context"
	"errors"

	"github.com/tonimelisma/dat/internal/inventory"
)

// ErrNotFound is returned by FetchMaster when the remote master object
// does not exist yet (HTTP 404 / NoSuchKey).
var ErrNotFound = errors.New("store: master object not found")

// MasterKey is the object key for the master inventory, relative to
// the prefix.
const MasterKey = ".dat/master"

// Adapter is the narrow contract the reconciliation core depends on.
// The orchestrator is the only caller; the core packages (reconcile,
// inventory, walker) never import it.
type Adapter interface {
	// FetchMaster downloads and parses the remote master inventory.
	// Returns ErrNotFound if no master object exists yet.
	FetchMaster(ctx context.Context) (*inventory.Inventory, error)

	// CreatePrefix creates the bucket (when the id has no "/") in the
	// given region. Idempotent: a bucket that already exists is not an
	// error.
	CreatePrefix(ctx context.Context) error

	// SyncUpload uploads every path in includePaths from root, plus the
	// serialized master inventory, and deletes any remote object under
	// the prefix not in that combined include list. Uploads do not
	// follow symlinks.
	SyncUpload(ctx context.Context, root string, includePaths []string, master *inventory.Inventory) error

	// SyncDownload downloads every path in includePaths into root, and
	// deletes any local file under root not in includePaths.
	SyncDownload(ctx context.Context, root string, includePaths []string) error

	// RemovePrefix recursively deletes every object at the prefix (and
	// the bucket itself, when the id is bare).
	RemovePrefix(ctx context.Context) error

	// ListRemote lists every object key under the prefix, relative to
	// it, excluding the master object itself. Used by repair-master to
	// rebuild the master inventory from ground truth.
	ListRemote(ctx context.Context) ([]string, error)
}

// ID splits a repository id of the form "bucket" or "bucket/prefix"
// into its bucket and prefix components.
type ID struct {
	Bucket string
	Prefix string // "" for a bare bucket id
}

// ParseID parses raw (the .dat/config "aws" value) into an ID.
func ParseID(raw string) ID {
	for i := 0; i < len(raw); i++ {
		if raw[i] == '/' {
			return ID{Bucket: raw[:i], Prefix: raw[i+1:]}
		}
	}

	return ID{Bucket: raw}
}

// Key joins the ID's prefix (if any) with objectKey.
func (id ID) Key(objectKey string) string {
	if id.Prefix == "" {
		return objectKey
	}

	return id.Prefix + "/" + objectKey
}
