package importer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/erazemk/inventaris/internal/model"
)

// Row is one decoded spreadsheet row keyed by its header.
type Row map[string]any

// Field is a canonical item field and the header spellings accepted for it,
// in priority order.
type Field struct {
	Name    string
	Aliases []string
	Default string
}

// Canonical field names.
const (
	FieldName            = "name"
	FieldBrand           = "brand"
	FieldSerialNumber    = "serialNumber"
	FieldLocation        = "location"
	FieldConditionBefore = "conditionBefore"
	FieldChecklistFlag   = "checklistFlag"
	FieldConditionAfter  = "conditionAfter"
	FieldNotes           = "notes"
	FieldDate            = "date"
	FieldDateReceived    = "dateReceived"
)

// Fields is the header alias table used to map rows to drafts.
var Fields = []Field{
	{Name: FieldName, Aliases: []string{"Nama Barang", "name", "Name", "NAMA BARANG"}},
	{Name: FieldBrand, Aliases: []string{"Merk", "merk", "MERK", "brand"}},
	{Name: FieldSerialNumber, Aliases: []string{"SN", "sn", "Serial Number", "serialNumber"}},
	{Name: FieldLocation, Aliases: []string{"Lokasi", "lokasi", "LOKASI", "location"}},
	{Name: FieldConditionBefore, Aliases: []string{"Kondisi (Before)", "kondisiBefore", "Kondisi Before", "kondisi_before", "conditionBefore"}, Default: model.ConditionGood},
	{Name: FieldChecklistFlag, Aliases: []string{"Checklist", "checklist", "CHECKLIST", "checklistFlag"}, Default: model.ChecklistNo},
	{Name: FieldConditionAfter, Aliases: []string{"Kondisi (After)", "kondisiAfter", "Kondisi After", "kondisi_after", "conditionAfter"}},
	{Name: FieldNotes, Aliases: []string{"Catatan", "catatan", "CATATAN", "notes"}},
	{Name: FieldDate, Aliases: []string{"Tanggal", "date", "dateChecked"}},
	{Name: FieldDateReceived, Aliases: []string{"Tanggal Masuk", "tanggalMasuk", "dateReceived"}},
}

// Resolve maps a row to canonical field values. The first alias with a
// non-empty value wins; otherwise the field's default is used.
func Resolve(row Row) map[string]string {
	out := make(map[string]string, len(Fields))
	for _, f := range Fields {
		out[f.Name] = f.Default
		for _, alias := range f.Aliases {
			if v := stringify(row[alias]); v != "" {
				out[f.Name] = v
				break
			}
		}
	}
	return out
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if !t {
			return ""
		}
		return "true"
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
