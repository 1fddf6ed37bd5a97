// Package normalize maps heterogeneous spreadsheet rows onto domain models.
//
// Each collection has one Table of logical fields to candidate column keys.
// Lookup tries every candidate against the trimmed row keys first, then
// case-insensitively, and takes the first defined, non-empty value.
package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/okian/tally/internal/domain/model"
)

// Table maps a logical field name to its candidate column keys in priority order.
type Table map[string][]string

// Logical field names shared by the tables.
const (
	FieldID          = "id"
	FieldName        = "name"
	FieldCategory    = "category"
	FieldPoints      = "points"
	FieldDate        = "date"
	FieldOrganizer   = "organizer"
	FieldStatus      = "status"
	FieldDescription = "description"
	FieldUpdatedAt   = "updatedAt"
	FieldPSCode      = "psCode"
	FieldPosition    = "position"
	FieldDepartment  = "department"
	FieldEvent       = "event"
	FieldTimestamp   = "timestamp"
)

// Defaults applied to events when the column is missing or blank.
const (
	DefaultCategory  = "unspecified"
	DefaultOrganizer = "unspecified"
	DefaultStatus    = model.StatusActive
)

// EventFields covers the events sheet, including its historical misspelling.
var EventFields = Table{
	FieldID:          {"ID", "id"},
	FieldName:        {"Name", "name"},
	FieldCategory:    {"Catagory", "Category", "category"},
	FieldPoints:      {"Point", "Points", "points"},
	FieldDate:        {"Date", "date"},
	FieldOrganizer:   {"Organizer", "organizer"},
	FieldStatus:      {"Status", "status"},
	FieldDescription: {"Description", "description"},
	FieldUpdatedAt:   {"Updated At", "updatedAt", "createdAt"},
}

// UserFields covers the participant directory sheet.
var UserFields = Table{
	FieldPSCode:     {"PS Code", "psCode", "ps_code"},
	FieldName:       {"ชื่อ-นามสกุล", "name", "fullName"},
	FieldPosition:   {"ระดับ", "position", "level"},
	FieldDepartment: {"หน่วยงาน", "department", "unit"},
}

// RecordFields covers the attendance sheet.
var RecordFields = Table{
	FieldName:       {"Name", "name"},
	FieldPosition:   {"Position", "position"},
	FieldDepartment: {"Department", "department"},
	FieldEvent:      {"Event", "event"},
	FieldPoints:     {"Points", "points", "Point"},
	FieldDate:       {"Date", "date"},
	FieldTimestamp:  {"Timestamp", "timestamp"},
}

// Normalizer resolves logical fields of raw rows using a Table.
type Normalizer struct {
	table Table
}

// New returns a Normalizer over t.
func New(t Table) *Normalizer {
	return &Normalizer{table: t}
}

// Lookup returns the value of a logical field in row.
func (n *Normalizer) Lookup(row model.RemoteRecord, field string) (any, bool) {
	return lookup(row, n.table[field])
}

// String returns the logical field as trimmed text, or def when absent.
func (n *Normalizer) String(row model.RemoteRecord, field, def string) string {
	v, ok := n.Lookup(row, field)
	if !ok {
		return def
	}
	return toString(v)
}

// Float returns the logical field as a number, or 0 when absent or unparseable.
func (n *Normalizer) Float(row model.RemoteRecord, field string) float64 {
	v, ok := n.Lookup(row, field)
	if !ok {
		return 0
	}
	return toFloat(v)
}

// Int returns the logical field truncated to a non-negative integer.
func (n *Normalizer) Int(row model.RemoteRecord, field string) int {
	f := n.Float(row, field)
	if f <= 0 || math.IsNaN(f) {
		return 0
	}
	if f >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

func lookup(row model.RemoteRecord, candidates []string) (any, bool) {
	if len(row) == 0 || len(candidates) == 0 {
		return nil, false
	}

	keys := make([]string, 0, len(row))
	trimmed := make(map[string]string, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	// stable match order when two raw keys trim to the same header
	sort.Strings(keys)
	for _, k := range keys {
		tk := strings.TrimSpace(k)
		if _, dup := trimmed[tk]; !dup || isEmpty(row[trimmed[tk]]) {
			trimmed[tk] = k
		}
	}

	for _, c := range candidates {
		if k, ok := trimmed[strings.TrimSpace(c)]; ok && !isEmpty(row[k]) {
			return row[k], true
		}
	}
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		for _, k := range keys {
			if strings.EqualFold(strings.TrimSpace(k), c) && !isEmpty(row[k]) {
				return row[k], true
			}
		}
	}
	return nil, false
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	default:
		return false
	}
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	default:
		return 0
	}
}
