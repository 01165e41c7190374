package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Tech", "tech"},
		{"Hello World", "hello-world"},
		{"  Spaces   everywhere  ", "spaces-everywhere"},
		{"Café Society", "cafe-society"},
		{"Rock & Roll!", "rock-roll"},
		{"already-slugged_name", "already-slugged_name"},
		{"--Trim me__", "trim-me"},
		{"日本語", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestValidSlug(t *testing.T) {
	assert.True(t, ValidSlug("go-lang_2"))
	assert.False(t, ValidSlug(""))
	assert.False(t, ValidSlug("go lang"))
	assert.False(t, ValidSlug("café"))
}

func TestSanitizeContent(t *testing.T) {
	assert.Equal(t, "hello", SanitizeContent("  hello  "))
	assert.Equal(t, "", SanitizeContent("<script>alert(1)</script>"))
	assert.Equal(t, "<b>bold</b>", SanitizeContent("<b>bold</b>"))
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	assert.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)
	assert.True(t, CheckPassword(hash, "s3cret-pass"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
