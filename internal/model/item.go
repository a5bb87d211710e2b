package model

import "time"

// Item is a tracked piece of office equipment.
type Item struct {
	ID              string    `json:"id"`
	SequenceNumber  int64     `json:"sequenceNumber"`
	Name            string    `json:"name"`
	Brand           string    `json:"brand"`
	SerialNumber    string    `json:"serialNumber"`
	Location        string    `json:"location"`
	ConditionBefore string    `json:"conditionBefore"`
	ChecklistFlag   string    `json:"checklistFlag"`
	ConditionAfter  string    `json:"conditionAfter"`
	Notes           string    `json:"notes"`
	DateReceived    string    `json:"dateReceived"`
	DateChecked     string    `json:"dateChecked"`
	QRImageRef      string    `json:"qrImageRef"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Checklist flag values.
const (
	ChecklistNo  = "Tidak"
	ChecklistYes = "Ya"
)

// ConditionGood is the condition assumed for imported rows without one.
const ConditionGood = "Baik"

// Draft is a caller-supplied item before defaults and an ID are applied.
// QRImageRef may hold an inline data URL that the store externalizes.
type Draft struct {
	Name            string `json:"name"`
	Brand           string `json:"brand"`
	SerialNumber    string `json:"serialNumber"`
	Location        string `json:"location"`
	ConditionBefore string `json:"conditionBefore"`
	ChecklistFlag   string `json:"checklistFlag"`
	ConditionAfter  string `json:"conditionAfter"`
	Notes           string `json:"notes"`
	DateReceived    string `json:"dateReceived"`
	DateChecked     string `json:"dateChecked"`
	QRImageRef      string `json:"qrImageRef"`
}

// Patch is a partial update. A nil field is left alone, and so is a field
// set to the empty string. Fields listed in Clear are blanked explicitly.
type Patch struct {
	Name            *string `json:"name,omitempty"`
	Brand           *string `json:"brand,omitempty"`
	SerialNumber    *string `json:"serialNumber,omitempty"`
	Location        *string `json:"location,omitempty"`
	ConditionBefore *string `json:"conditionBefore,omitempty"`
	ChecklistFlag   *string `json:"checklistFlag,omitempty"`
	ConditionAfter  *string `json:"conditionAfter,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	DateReceived    *string `json:"dateReceived,omitempty"`
	DateChecked     *string `json:"dateChecked,omitempty"`
	QRImageRef      *string `json:"qrImageRef,omitempty"`

	Clear []string `json:"clear,omitempty"`
}

// Snapshot returns the denormalized fields recorded in history.
func (i *Item) Snapshot() Snapshot {
	return Snapshot{
		ItemID:   i.ID,
		Name:     i.Name,
		Brand:    i.Brand,
		Serial:   i.SerialNumber,
		Location: i.Location,
	}
}

// QRPayload is the text encoded into an item's QR image. The keys are the
// ones printed labels already carry, so they are kept as-is.
type QRPayload struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Brand    string `json:"merk"`
	Serial   string `json:"sn"`
	Location string `json:"lokasi"`
}

// QRPayload returns the payload for the item's QR image.
func (i *Item) QRPayload() QRPayload {
	return QRPayload{
		ID:       i.ID,
		Name:     i.Name,
		Brand:    i.Brand,
		Serial:   i.SerialNumber,
		Location: i.Location,
	}
}

// Stats summarizes the inventory.
type Stats struct {
	Total  int            `json:"total"`
	ByName map[string]int `json:"byName"`
}
