package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDottedSlug_BasicPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "home.toni.projects.blog", dottedSlug("/home/toni/projects/blog"))
}

func TestDottedSlug_SanitizesUnsafeCharacters(t *testing.T) {
	t.Parallel()

	got := dottedSlug("/a/b c/d_e")
	assert.Equal(t, "a.b-c.d-e", got)
}

func TestDefaultID_WithUser(t *testing.T) {
	t.Setenv("USER", "toni")

	got := DefaultID("/home/toni/blog")
	assert.Equal(t, "toni.home.toni.blog", got)
}

func TestDefaultID_NoUserFallsBackToSlugOnly(t *testing.T) {
	t.Setenv("USER", "")
	t.Setenv("USERNAME", "")

	got := DefaultID("/home/toni/blog")
	assert.Equal(t, "home.toni.blog", got)
}
