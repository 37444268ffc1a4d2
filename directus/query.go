package directus

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Query holds the global Directus query parameters.
type Query struct {
	Fields []string
	Filter map[string]any
	Sort   []string
	// Limit and Offset are sent only when positive; -1 means "no limit" to Directus.
	Limit  int
	Offset int
	Search string
	// Meta requests metadata, e.g. "total_count,filter_count" or "*".
	Meta string
}

// Values encodes q as URL query parameters.
func (q Query) Values() (url.Values, error) {
	v := url.Values{}
	if len(q.Fields) > 0 {
		v.Set("fields", strings.Join(q.Fields, ","))
	}
	if len(q.Filter) > 0 {
		b, err := json.Marshal(q.Filter)
		if err != nil {
			return nil, fmt.Errorf("directus: encode filter: %w", err)
		}
		v.Set("filter", string(b))
	}
	if len(q.Sort) > 0 {
		v.Set("sort", strings.Join(q.Sort, ","))
	}
	if q.Limit > 0 || q.Limit == -1 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Meta != "" {
		v.Set("meta", q.Meta)
	}
	return v, nil
}

const systemPrefix = "directus_"

// collectionPath returns the endpoint of a collection. System collections are
// served from their own root endpoint (directus_users -> /users).
func collectionPath(collection string) string {
	if rest, ok := strings.CutPrefix(collection, systemPrefix); ok && rest != "" {
		return "/" + rest
	}
	return "/items/" + url.PathEscape(collection)
}
