package catalogs

import "strconv"

// DisambiguateIDs rewrites colliding event ids within one adapter batch by
// appending "-2", "-3", ... in encounter order. The first occurrence keeps
// its id. It returns the number of rewritten ids.
func DisambiguateIDs(events []*Event) int {
	used := make(map[string]struct{}, len(events))
	for _, e := range events {
		used[e.EventID] = struct{}{}
	}

	seen := make(map[string]struct{}, len(events))
	rewritten := 0
	for _, e := range events {
		if _, dup := seen[e.EventID]; !dup {
			seen[e.EventID] = struct{}{}
			continue
		}
		base := e.EventID
		for n := 2; ; n++ {
			candidate := base + "-" + strconv.Itoa(n)
			_, taken := used[candidate]
			if _, seenAlready := seen[candidate]; !taken && !seenAlready {
				e.EventID = candidate
				break
			}
		}
		used[e.EventID] = struct{}{}
		seen[e.EventID] = struct{}{}
		rewritten++
	}
	return rewritten
}
