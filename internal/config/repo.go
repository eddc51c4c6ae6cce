// Package config implements the two configuration layers of dat: the
// per-repository .dat/config file (a plain key: value format, parsed
// here with a hand-rolled line scanner — never a structured format
// library, because byte-for-byte on-disk compatibility matters) and an
// optional user-level preferences.toml consulted for defaults.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tonimelisma/dat/internal/daterrors"
)

// RepoConfig is the parsed form of .dat/config.
type RepoConfig struct {
	// Aws is the bucket or bucket/prefix identifying the remote.
	Aws string
	// Pushed records whether a push has ever succeeded.
	Pushed bool
	// Profile is an optional AWS shared-credentials profile name.
	Profile string
	// Region is an optional AWS region; DefaultRegion is used if empty.
	Region string
	// Subdir is an optional relative subtree treated as the working root.
	Subdir string
}

// DefaultRegion is used when RepoConfig.Region is empty.
const DefaultRegion = "us-east-1"

// knownKeys lists every recognized config key, used to flag unknown
// keys as malformed rather than silently ignoring typos.
var knownKeys = map[string]bool{
	"aws":     true,
	"pushed":  true,
	"profile": true,
	"region":  true,
	"subdir":  true,
}

// LoadRepoConfig reads and parses .dat/config at path. A missing file
// is reported as daterrors.ErrNotARepo: the command is not being run
// inside a dat repository.
func LoadRepoConfig(path string) (*RepoConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, daterrors.Wrap(daterrors.ErrNotARepo, "run 'dat init' first")
		}

		return nil, fmt.Errorf("config: opening %s: %w", path, err)
	}
	defer f.Close()

	cfg := &RepoConfig{Region: DefaultRegion}

	scanner := bufio.NewScanner(f)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := splitKeyValue(line)
		if !ok {
			return nil, fmt.Errorf("%w: %s line %d: %q", daterrors.ErrConfigMalformed, path, lineNo, line)
		}

		if !knownKeys[key] {
			return nil, fmt.Errorf("%w: %s line %d: unrecognized key %q", daterrors.ErrConfigMalformed, path, lineNo, key)
		}

		if err := cfg.assign(key, value); err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %w", daterrors.ErrConfigMalformed, path, lineNo, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if cfg.Aws == "" {
		return nil, fmt.Errorf("%w: %s: missing required key %q", daterrors.ErrConfigMalformed, path, "aws")
	}

	return cfg, nil
}

func splitKeyValue(line string) (key, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", false
	}

	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:]), true
}

func (c *RepoConfig) assign(key, value string) error {
	switch key {
	case "aws":
		c.Aws = value
	case "pushed":
		switch value {
		case "True":
			c.Pushed = true
		case "False":
			c.Pushed = false
		default:
			return fmt.Errorf("pushed must be True or False, got %q", value)
		}
	case "profile":
		c.Profile = value
	case "region":
		c.Region = value
	case "subdir":
		c.Subdir = value
	}

	return nil
}

// WriteRepoConfig serializes cfg to path in key: value form, one per
// line, sorted for determinism, via an atomic temp-file-and-rename
// write (the same discipline as inventory.Write).
func WriteRepoConfig(path string, cfg *RepoConfig) error {
	fields := map[string]string{
		"aws": cfg.Aws,
	}

	if cfg.Profile != "" {
		fields["profile"] = cfg.Profile
	}

	if cfg.Region != "" {
		fields["region"] = cfg.Region
	}

	if cfg.Subdir != "" {
		fields["subdir"] = cfg.Subdir
	}

	fields["pushed"] = boolString(cfg.Pushed)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s: %s\n", k, fields[k])
	}

	return atomicWriteFile(path, []byte(sb.String()))
}

func boolString(b bool) string {
	if b {
		return "True"
	}

	return "False"
}

func atomicWriteFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-config-*")
	if err != nil {
		return fmt.Errorf("config: creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("config: writing %s: %w", tmpPath, err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("config: fsync %s: %w", tmpPath, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("config: closing %s: %w", tmpPath, err)
	}

	return os.Rename(tmpPath, path)
}
