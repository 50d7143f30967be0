package request

import (
	"net/http"
	"strings"
)

// ParseIDList splits a comma-separated query parameter into IDs, dropping
// empty entries.
func ParseIDList(r *http.Request, name string) []string {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}

// ParseBool reads a boolean query parameter. "1" and "true" are truthy,
// everything else is false.
func ParseBool(r *http.Request, name string) bool {
	v := r.URL.Query().Get(name)
	return v == "1" || v == "true"
}
