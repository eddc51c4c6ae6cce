package config

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultID derives the default repository id for `dat init` with no
// bucket argument: "<user>.<cwd-path-dotted>", matching the source
// tool's convention of deriving a bucket name from the account and
// working directory so bare `dat init` works without typing a bucket
// name.
func DefaultID(cwd string) string {
	user := currentUser()
	slug := dottedSlug(cwd)

	if user == "" {
		return slug
	}

	return user + "." + slug
}

func currentUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}

	return os.Getenv("USERNAME")
}

// dottedSlug turns an absolute path into a dot-separated, lowercase,
// DNS-bucket-safe slug, e.g. "/home/toni/projects/blog" -> "home.toni.projects.blog".
func dottedSlug(path string) string {
	clean := filepath.ToSlash(filepath.Clean(path))
	clean = strings.Trim(clean, "/")

	parts := strings.Split(clean, "/")
	for i, p := range parts {
		parts[i] = sanitizeLabel(p)
	}

	return strings.ToLower(strings.Join(parts, "."))
}

func sanitizeLabel(s string) string {
	var b strings.Builder

	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}

	return b.String()
}
