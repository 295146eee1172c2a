package model

import "time"

// HistoryEntry is one persisted valuation. Address and BuildingClass are
// denormalized from InputSnapshot for listing.
type HistoryEntry struct {
	Timestamp     time.Time        `json:"timestamp"`
	ID            string           `json:"id"`
	BuildingClass string           `json:"buildingClass"`
	Address       Address          `json:"address"`
	Results       ValuationResult  `json:"results"`
	InputSnapshot ValuationRequest `json:"inputSnapshot"`
}

// Clone returns a deep copy.
func (e HistoryEntry) Clone() HistoryEntry {
	c := e
	c.Results = e.Results.Clone()
	c.InputSnapshot = e.InputSnapshot.Clone()
	return c
}
