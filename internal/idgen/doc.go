// Package idgen wraps the UUID generator so that engine ids can be made
// deterministic in tests. Callers should treat identifiers as opaque strings.
package idgen
