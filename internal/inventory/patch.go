package inventory

import (
	"fmt"
	"slices"

	"github.com/erazemk/inventaris/internal/model"
)

// clearable lists the JSON field names a Patch may blank. Name is required
// and can only be replaced.
var clearable = []string{
	"brand", "serialNumber", "location", "conditionBefore", "checklistFlag",
	"conditionAfter", "notes", "dateReceived", "dateChecked", "qrImageRef",
}

func validateClear(p model.Patch) error {
	set := map[string]*string{
		"name":            p.Name,
		"brand":           p.Brand,
		"serialNumber":    p.SerialNumber,
		"location":        p.Location,
		"conditionBefore": p.ConditionBefore,
		"checklistFlag":   p.ChecklistFlag,
		"conditionAfter":  p.ConditionAfter,
		"notes":           p.Notes,
		"dateReceived":    p.DateReceived,
		"dateChecked":     p.DateChecked,
		"qrImageRef":      p.QRImageRef,
	}
	for _, field := range p.Clear {
		if field == "name" {
			return &ValidationError{Field: "name", Message: "name cannot be cleared"}
		}
		if !slices.Contains(clearable, field) {
			return &ValidationError{Field: "clear", Message: fmt.Sprintf("unknown field %q", field)}
		}
		if v := set[field]; v != nil && *v != "" {
			return &ValidationError{Field: field, Message: "field is both set and cleared"}
		}
	}
	return nil
}

// merge returns a copy of current with p applied.
func (s *Service) merge(current *model.Item, p model.Patch) *model.Item {
	merged := *current

	apply := func(dst *string, v *string) {
		if v != nil && *v != "" {
			*dst = *v
		}
	}
	applyDate := func(dst *string, v *string) {
		if v != nil && *v != "" {
			*dst = s.dates.Normalize(*v)
		}
	}

	apply(&merged.Name, p.Name)
	apply(&merged.Brand, p.Brand)
	apply(&merged.SerialNumber, p.SerialNumber)
	apply(&merged.Location, p.Location)
	apply(&merged.ConditionBefore, p.ConditionBefore)
	apply(&merged.ChecklistFlag, p.ChecklistFlag)
	apply(&merged.ConditionAfter, p.ConditionAfter)
	apply(&merged.Notes, p.Notes)
	applyDate(&merged.DateReceived, p.DateReceived)
	applyDate(&merged.DateChecked, p.DateChecked)
	apply(&merged.QRImageRef, p.QRImageRef)

	for _, field := range p.Clear {
		switch field {
		case "brand":
			merged.Brand = ""
		case "serialNumber":
			merged.SerialNumber = ""
		case "location":
			merged.Location = ""
		case "conditionBefore":
			merged.ConditionBefore = ""
		case "checklistFlag":
			merged.ChecklistFlag = ""
		case "conditionAfter":
			merged.ConditionAfter = ""
		case "notes":
			merged.Notes = ""
		case "dateReceived":
			merged.DateReceived = ""
		case "dateChecked":
			merged.DateChecked = ""
		case "qrImageRef":
			merged.QRImageRef = ""
		}
	}
	return &merged
}
