// Package fingerprint computes stable content fingerprints for files in
// the working tree. The digest is MD5: used only for change detection,
// never for authentication, but kept bit-compatible with the existing
// on-disk inventory format for cross-tool interop.
package fingerprint

import (
	"crypto/md5" //nolint:gosec // content-addressing only, not authentication.
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// chunkSize bounds each read fed into the digest accumulator.
const chunkSize = 4096

// Of reads path in chunkSize pieces and returns its MD5 digest as a
// lowercase 32-character hex string. The caller is responsible for
// having already resolved any symlink-following decision.
func Of(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("fingerprint: opening %s: %w", path, err)
	}
	defer f.Close()

	h := md5.New() //nolint:gosec
	buf := make([]byte, chunkSize)

	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("fingerprint: reading %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// AtRoot fingerprints the file at root/relPath, but only if relPath does
// not escape root through a symlink. A symlink pointing outside root is
// treated as excluded (ok=false, err=nil) rather than an error, mirroring
// the source transport's --no-follow-symlinks choice for pushes.
func AtRoot(root, relPath string) (digest string, ok bool, err error) {
	abs := filepath.Join(root, relPath)

	info, err := os.Lstat(abs)
	if err != nil {
		return "", false, fmt.Errorf("fingerprint: stat %s: %w", abs, err)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		resolved, err := filepath.EvalSymlinks(abs)
		if err != nil {
			// Broken symlink: excluded, not fatal.
			return "", false, nil //nolint:nilerr
		}

		resolvedRoot, err := filepath.EvalSymlinks(root)
		if err != nil {
			return "", false, fmt.Errorf("fingerprint: resolving root %s: %w", root, err)
		}

		if !withinRoot(resolvedRoot, resolved) {
			return "", false, nil
		}

		abs = resolved
	}

	digest, err = Of(abs)
	if err != nil {
		return "", false, err
	}

	return digest, true, nil
}

func withinRoot(root, candidate string) bool {
	rel, err := filepath.Rel(root, candidate)
	if err != nil {
		return false
	}

	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
