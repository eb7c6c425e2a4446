package data

import (
	"database/sql/driver"
	"sort"
	"strings"
)

const (
	leadIDAttribute = "id"
)

// LeadAttributes is the open attribute bag of a lead
type LeadAttributes map[string]interface{}

// Scan reads the attribute bag from a JSON column
func (attributes *LeadAttributes) Scan(value interface{}) error {
	*attributes = LeadAttributes{}
	return scanJSONColumn(value, attributes)
}

// Value writes the attribute bag as a JSON column
func (attributes LeadAttributes) Value() (driver.Value, error) {
	if attributes == nil {
		return jsonColumnValue(LeadAttributes{})
	}
	return jsonColumnValue(map[string]interface{}(attributes))
}

// Lead is an inbound sales lead; identity plus whatever fields the ingestion side supplied
type Lead struct {
	ID         string         `json:"id"`
	Attributes LeadAttributes `json:"attributes"`
}

// Get returns the attribute value for field; `id` resolves to the lead id. Lookup falls back to a
// case-insensitive match when no exact key exists; among several such keys the lowest in byte order wins.
func (lead *Lead) Get(field string) (interface{}, bool) {
	if field == leadIDAttribute {
		return lead.ID, len(lead.ID) > 0
	}
	if value, ok := lead.Attributes[field]; ok {
		return value, true
	}
	candidates := make([]string, 0, 1)
	for key := range lead.Attributes {
		if strings.EqualFold(key, field) {
			candidates = append(candidates, key)
		}
	}
	if len(candidates) == 0 {
		return nil, false
	}
	sort.Strings(candidates)
	return lead.Attributes[candidates[0]], true
}

// Clone returns a copy with its own attribute map
func (lead *Lead) Clone() *Lead {
	attributes := make(LeadAttributes, len(lead.Attributes))
	for key, value := range lead.Attributes {
		attributes[key] = value
	}
	return &Lead{ID: lead.ID, Attributes: attributes}
}

// IsInValidState returns false if the lead has no id
func (lead *Lead) IsInValidState() bool {
	return len(lead.ID) > 0
}

// NewLead creates a lead with the given id and attributes
func NewLead(id string, attributes map[string]interface{}) (*Lead, error) {
	if len(id) <= 0 {
		return nil, ErrInsufficientInformationForCreating
	}
	if attributes == nil {
		attributes = map[string]interface{}{}
	}
	return &Lead{ID: id, Attributes: attributes}, nil
}
