package model

import "time"

// Action is the kind of mutation a history entry records.
type Action string

// History actions. No other values are stored.
const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

// HistoryEntry is an append-only audit record of one mutation. Item fields
// are a snapshot taken at the time of the action and are nil when unknown.
type HistoryEntry struct {
	ID           int64     `json:"id"`
	Action       Action    `json:"action"`
	ItemID       *string   `json:"itemId"`
	ItemName     *string   `json:"itemName"`
	ItemBrand    *string   `json:"itemBrand"`
	ItemSerial   *string   `json:"itemSerial"`
	ItemLocation *string   `json:"itemLocation"`
	Details      string    `json:"details"`
	Timestamp    time.Time `json:"timestamp"`
}

// Snapshot is the item state captured with a history entry.
type Snapshot struct {
	ItemID   string
	Name     string
	Brand    string
	Serial   string
	Location string
}
