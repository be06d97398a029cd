package game

import "github.com/google/uuid"

// CostReducer lowers the fate cost of matching cards.
type CostReducer struct {
	ID       string
	Amount   int
	PlayType PlayType         // empty matches any play type
	Match    func(*Card) bool // nil matches every card
	Limit    int              // uses before the reducer expires; 0 means unlimited
	uses     int
}

func (r *CostReducer) applies(playType PlayType, card *Card, ignoreType bool) bool {
	if r.Limit > 0 && r.uses >= r.Limit {
		return false
	}
	if !ignoreType && r.PlayType != PlayTypeNone && r.PlayType != playType {
		return false
	}
	return r.Match == nil || r.Match(card)
}

// CostReducerManager keeps a player's reducers in registration order.
type CostReducerManager struct {
	reducers []*CostReducer
}

// NewCostReducerManager creates an empty manager.
func NewCostReducerManager() *CostReducerManager {
	return &CostReducerManager{
		reducers: make([]*CostReducer, 0),
	}
}

// AddReducer registers a reducer and returns its ID.
func (m *CostReducerManager) AddReducer(r *CostReducer) string {
	if r == nil {
		return ""
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	m.reducers = append(m.reducers, r)
	return r.ID
}

// RemoveReducer removes a reducer by ID.
func (m *CostReducerManager) RemoveReducer(id string) {
	for i, r := range m.reducers {
		if r.ID == id {
			m.reducers = append(m.reducers[:i], m.reducers[i+1:]...)
			return
		}
	}
}

// TotalReduction sums every reducer applying to card.
func (m *CostReducerManager) TotalReduction(playType PlayType, card *Card, ignoreType bool) int {
	total := 0
	for _, r := range m.reducers {
		if r.applies(playType, card, ignoreType) {
			total += r.Amount
		}
	}
	return total
}

// MarkUsed consumes a use of each applying reducer and drops exhausted ones.
func (m *CostReducerManager) MarkUsed(playType PlayType, card *Card, ignoreType bool) {
	kept := m.reducers[:0]
	for _, r := range m.reducers {
		if r.applies(playType, card, ignoreType) {
			r.uses++
		}
		if r.Limit > 0 && r.uses >= r.Limit {
			continue
		}
		kept = append(kept, r)
	}
	m.reducers = kept
}

// Len returns the number of active reducers.
func (m *CostReducerManager) Len() int {
	return len(m.reducers)
}
