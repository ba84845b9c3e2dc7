package shop

// dedupeIDs drops repeated ids, keeping first occurrences in order.
func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func unionIDs(current, add []int64) []int64 {
	return dedupeIDs(append(append(make([]int64, 0, len(current)+len(add)), current...), add...))
}

func differenceIDs(current, remove []int64) []int64 {
	drop := make(map[int64]struct{}, len(remove))
	for _, id := range remove {
		drop[id] = struct{}{}
	}

	out := make([]int64, 0, len(current))
	for _, id := range dedupeIDs(current) {
		if _, ok := drop[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
