package slug_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nyozov/services/internal/shared/slug"
)

func TestFromName(t *testing.T) {
	cases := map[string]string{
		"Pottery & Co.":   "pottery-co",
		"  My   Store  ":  "my-store",
		"Çini Atölyesi":   "ini-at-lyesi",
		"---":             "store",
		"":                "store",
		"already-slugged": "already-slugged",
	}
	for in, want := range cases {
		assert.Equal(t, want, slug.FromName(in), "input %q", in)
	}
}

func TestDisambiguateKeepsBase(t *testing.T) {
	got := slug.Disambiguate("pottery")
	assert.True(t, strings.HasPrefix(got, "pottery-"))
	assert.Greater(t, len(got), len("pottery-"))
}
