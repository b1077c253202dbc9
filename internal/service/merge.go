package service

// NoMatchID is the sentinel allow-list entry fed to the listing query when
// the merged, stock-filtered candidate set is empty. No product row ever
// has id 0, so the listing deliberately shows zero results instead of
// falling back to the platform's unrestricted search.
const NoMatchID int64 = 0

// MergeCandidates unions the three candidate sources into one deduplicated
// id list with first-seen-wins ordering: title matches first, then
// attribute matches, then tag matches, each internally in retrieval order.
// The deterministic order keeps pagination stable across identical requests.
func MergeCandidates(titleIDs, attributeIDs, tagIDs []int64) []int64 {
	seen := make(map[int64]struct{}, len(titleIDs)+len(attributeIDs)+len(tagIDs))
	out := make([]int64, 0, len(titleIDs)+len(attributeIDs)+len(tagIDs))
	for _, list := range [][]int64{titleIDs, attributeIDs, tagIDs} {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// RestrictionIDs converts a merged candidate list into the listing query
// allow-list, substituting the no-match sentinel for an empty set.
func RestrictionIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return []int64{NoMatchID}
	}
	return ids
}
