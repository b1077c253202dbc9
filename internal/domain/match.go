package domain

// MatchSet maps parent product ids to the variant ids that matched the
// current term. Parents keep first-seen order so downstream merging and
// pagination stay deterministic. A MatchSet lives for one request only.
type MatchSet struct {
	parents  []int64
	variants map[int64][]int64
}

func NewMatchSet() *MatchSet {
	return &MatchSet{variants: make(map[int64][]int64)}
}

// Add records a matching variant for a parent. Duplicate variant ids for
// the same parent are dropped; the attribute index may emit them when a
// variant carries several terms matching the same pattern.
func (m *MatchSet) Add(parentID, variantID int64) {
	existing, ok := m.variants[parentID]
	if !ok {
		m.parents = append(m.parents, parentID)
		m.variants[parentID] = []int64{variantID}
		return
	}
	for _, id := range existing {
		if id == variantID {
			return
		}
	}
	m.variants[parentID] = append(existing, variantID)
}

// Parents returns the matched parent product ids in first-seen order.
func (m *MatchSet) Parents() []int64 {
	out := make([]int64, len(m.parents))
	copy(out, m.parents)
	return out
}

// Representative returns the first matching variant for a parent.
func (m *MatchSet) Representative(parentID int64) (int64, bool) {
	ids := m.variants[parentID]
	if len(ids) == 0 {
		return 0, false
	}
	return ids[0], true
}

// Variants returns all matching variant ids for a parent in retrieval order.
func (m *MatchSet) Variants(parentID int64) []int64 {
	ids := m.variants[parentID]
	out := make([]int64, len(ids))
	copy(out, ids)
	return out
}

// Has reports whether the parent product has at least one matching variant.
func (m *MatchSet) Has(parentID int64) bool {
	return len(m.variants[parentID]) > 0
}

func (m *MatchSet) Len() int {
	return len(m.parents)
}

func (m *MatchSet) IsEmpty() bool {
	return len(m.parents) == 0
}
