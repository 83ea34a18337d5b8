package slug

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// FromName derives a URL slug from a store name.
func FromName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonAlnum.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "store"
	}
	return s
}

// Disambiguate appends a millisecond timestamp so a colliding slug
// stays readable while becoming unique.
func Disambiguate(base string) string {
	return base + "-" + strconv.FormatInt(time.Now().UnixMilli(), 10)
}
