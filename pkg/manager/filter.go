package manager

import "strings"

// FilterHosts returns the records whose name contains query as an ordered,
// case-insensitive subsequence. Matches keep their input order;
// there is no ranking.
//
// An empty query (after trimming) returns all unchanged.
func FilterHosts(all []HostRecord, query string) []HostRecord {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return all
	}
	out := make([]HostRecord, 0, len(all))
	for _, h := range all {
		if matchesLowered(strings.ToLower(h.Name), q) {
			out = append(out, h)
		}
	}
	return out
}

// MatchesSubsequence reports whether every character of query appears in
// name in the same order, ignoring case. "dbx" matches "dev-box".
func MatchesSubsequence(name, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return matchesLowered(strings.ToLower(name), q)
}

// matchesLowered walks text once with a single cursor into query.
func matchesLowered(text, query string) bool {
	rq := []rune(query)
	qi := 0
	for _, r := range text {
		if qi < len(rq) && r == rq[qi] {
			qi++
		}
	}
	return qi == len(rq)
}
