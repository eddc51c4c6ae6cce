package store

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/tonimelisma/dat/internal/daterrors"
	"github.com/tonimelisma/dat/internal/inventory"
)

// SyncUpload uploads includePaths and the master object in a single aws
// CLI invocation, deleting any remote object under the prefix not in
// that list. The master inventory is written to a transient file at
// root/.dat/master, included in the sync via --include, and removed
// afterward. Master and data travel in the same sync call, which does
// not order the objects it uploads: an interrupted sync can leave the
// remote master ahead of or behind the data it describes. It drives
// the real aws CLI with an explicit argument slice, never a shell
// string, so a path containing shell metacharacters cannot escape the
// include list.
func (a *S3Adapter) SyncUpload(ctx context.Context, root string, includePaths []string, master *inventory.Inventory) error {
	masterPath := filepath.Join(root, filepath.FromSlash(MasterKey))

	if err := writeTransientMaster(masterPath, master); err != nil {
		return err
	}
	defer os.Remove(masterPath)

	args := a.baseSyncArgs("sync", root, a.destURI())
	args = append(args, "--no-follow-symlinks", "--delete", "--exclude", "*")
	args = append(args, includeFlags(includePaths)...)
	args = append(args, "--include", MasterKey)

	return a.runAWS(ctx, args)
}

func writeTransientMaster(path string, master *inventory.Inventory) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: creating %s: %w", daterrors.ErrLocalIO, filepath.Dir(path), err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: writing %s: %w", daterrors.ErrLocalIO, path, err)
	}

	if _, err := master.WriteTo(f); err != nil {
		f.Close()
		os.Remove(path)

		return fmt.Errorf("%w: writing %s: %w", daterrors.ErrLocalIO, path, err)
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("%w: writing %s: %w", daterrors.ErrLocalIO, path, err)
	}

	return nil
}

// SyncDownload downloads includePaths into root, deleting any local
// file under root not in includePaths.
func (a *S3Adapter) SyncDownload(ctx context.Context, root string, includePaths []string) error {
	args := a.baseSyncArgs("sync", a.destURI(), root)
	args = append(args, "--delete", "--exclude", "*")
	args = append(args, includeFlags(includePaths)...)
	args = append(args, "--exclude", MasterKey, "--exclude", ".dat/*")

	return a.runAWS(ctx, args)
}

func (a *S3Adapter) destURI() string {
	uri := "s3://" + a.id.Bucket
	if a.id.Prefix != "" {
		uri += "/" + a.id.Prefix
	}

	return uri
}

func (a *S3Adapter) baseSyncArgs(cmd, src, dst string) []string {
	args := []string{"s3", cmd, src, dst}

	if a.profile != "" {
		args = append(args, "--profile", a.profile)
	}

	if a.region != "" {
		args = append(args, "--region", a.region)
	}

	return args
}

func includeFlags(paths []string) []string {
	flags := make([]string, 0, len(paths)*2)
	for _, p := range paths {
		flags = append(flags, "--include", p)
	}

	return flags
}

func (a *S3Adapter) runAWS(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, "aws", args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if looksLikeAuthFailure(stderr.String()) {
			return daterrors.Wrap(daterrors.ErrTransportAuth, daterrors.NotLoggedInHint)
		}

		return fmt.Errorf("%w: aws %v: %w: %s", daterrors.ErrTransportOther, args, err, stderr.String())
	}

	return nil
}

func looksLikeAuthFailure(stderr string) bool {
	for _, marker := range []string{"ExpiredToken", "InvalidAccessKeyId", "Unable to locate credentials", "token has expired"} {
		if strings.Contains(stderr, marker) {
			return true
		}
	}

	return false
}
