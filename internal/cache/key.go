package cache

import (
	"net/url"
	"strconv"
	"strings"

	v1 "github.com/devstats-lab/devstats/internal/api/v1"
)

// Keys are built as "<operation>/<dimension>/<window>[/...]". Free-form
// values are path-escaped so a value containing "/" cannot collide with
// another key.

func PopularKey(dim v1.Dimension, days int) string {
	return join("popular", string(dim), strconv.Itoa(days))
}

func CountKey(days int, filter *v1.Filter) string {
	if filter == nil {
		return join("count", strconv.Itoa(days))
	}
	return join("count", strconv.Itoa(days), string(filter.Field), url.PathEscape(filter.Value))
}

func InfoKey(field v1.Dimension, value string, days int) string {
	return join("info", string(field), url.PathEscape(value), strconv.Itoa(days))
}

func IndexPageKey(days int) string {
	return join("page", "index", strconv.Itoa(days))
}

func DetailPageKey(field v1.Dimension, value string, days int) string {
	return join("page", string(field), url.PathEscape(value), strconv.Itoa(days))
}

func join(parts ...string) string {
	return strings.Join(parts, "/")
}
