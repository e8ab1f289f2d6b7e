package reconciler

// mostCommon returns the most frequent value and the distinct values in
// first-seen order. Ties on frequency break toward the value seen first,
// an explicit contract rather than an artifact of map iteration. Values
// for which skip returns true are ignored; skip may be nil.
func mostCommon[T comparable](values []T, skip func(T) bool) (chosen T, distinct []T) {
	counts := make(map[T]int)
	for _, v := range values {
		if skip != nil && skip(v) {
			continue
		}
		if counts[v] == 0 {
			distinct = append(distinct, v)
		}
		counts[v]++
	}

	if len(distinct) == 0 {
		var zero T
		return zero, nil
	}

	chosen = distinct[0]
	for _, v := range distinct[1:] {
		if counts[v] > counts[chosen] {
			chosen = v
		}
	}
	return chosen, distinct
}

// distinctNonEmpty returns the distinct non-empty values in first-seen order.
func distinctNonEmpty(values []string) []string {
	seen := make(map[string]struct{})
	var unique []string
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		unique = append(unique, v)
	}
	return unique
}
