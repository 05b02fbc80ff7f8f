package vracmap

// PartnerGroup is the set of shop identifiers belonging to one partner organisation.
type PartnerGroup struct {
	Name string `json:"name,omitempty"`
	IDs  []ID   `json:"ids"`
}

// PartnerIndex answers partner membership by shop identifier.
// It is immutable once built and safe for concurrent use.
type PartnerIndex struct {
	ids map[ID]struct{}
}

// NewPartnerIndex flattens the identifiers of every group into one set.
// Duplicates within or across groups collapse.
func NewPartnerIndex(groups []PartnerGroup) *PartnerIndex {
	n := 0
	for _, g := range groups {
		n += len(g.IDs)
	}
	idx := &PartnerIndex{ids: make(map[ID]struct{}, n)}
	for _, g := range groups {
		for _, id := range g.IDs {
			idx.ids[id] = struct{}{}
		}
	}
	return idx
}

// Contains reports whether id appears in any group. A nil index contains nothing.
func (p *PartnerIndex) Contains(id ID) bool {
	if p == nil {
		return false
	}
	_, ok := p.ids[id]
	return ok
}

// Len returns the number of distinct partner identifiers.
func (p *PartnerIndex) Len() int {
	if p == nil {
		return 0
	}
	return len(p.ids)
}
