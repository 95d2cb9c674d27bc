package utils

import "strings"

// ResolveTenantSlug maps a request host to a tenant slug. The slug is the
// leftmost DNS label with any port removed, lower-cased. Hosts whose label is
// not in allowed resolve to fallback.
func ResolveTenantSlug(host string, allowed map[string]struct{}, fallback string) string {
	label := host
	if i := strings.IndexByte(label, '.'); i >= 0 {
		label = label[:i]
	}
	if i := strings.IndexByte(label, ':'); i >= 0 {
		label = label[:i]
	}
	label = strings.ToLower(strings.TrimSpace(label))

	if _, ok := allowed[label]; ok {
		return label
	}
	return fallback
}
