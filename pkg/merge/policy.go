package merge

// coalesce scans sources in priority order and returns the first non-nil
// value produced by the field accessor. This is the single merge policy for
// every optional scalar across games, teams and players: given providers
// ordered p0, p1, p2 the merged field is p0's value when present, else p1's,
// independent of what later providers report.
func coalesce[S any, T any](sources []S, get func(S) *T) *T {
	for _, s := range sources {
		if v := get(s); v != nil {
			return v
		}
	}
	return nil
}

// coalesceString is the same policy for non-pointer string fields, where the
// empty string means absent.
func coalesceString[S any](sources []S, get func(S) string) string {
	for _, s := range sources {
		if v := get(s); v != "" {
			return v
		}
	}
	return ""
}
