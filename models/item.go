package models

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"content-qa-cms/rules"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FieldErrors collects validation and save messages per field.
type FieldErrors map[string][]string

func (e FieldErrors) First(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Item is a content entity of one of the configured item types.
type Item struct {
	ID        uint              `json:"id" gorm:"primarykey"`
	Type      string            `json:"type" gorm:"not null;index"`
	AuthorID  uint              `json:"author_id" gorm:"not null"`
	Fields    datatypes.JSONMap `json:"fields"`
	NodeID    *uint             `json:"node_id"`
	Node      *Node             `json:"-" gorm:"foreignKey:NodeID"`
	QaStateID *uint             `json:"qa_state_id"`
	QaState   *QaState          `json:"qa_state,omitempty" gorm:"foreignKey:QaStateID"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	DeletedAt gorm.DeletedAt    `json:"-" gorm:"index"`

	// Scenario is the validation context of the next save.
	Scenario rules.Scenario `json:"-" gorm:"-"`
	Errors   FieldErrors    `json:"errors,omitempty" gorm:"-"`
}

// Label is the human readable item name, e.g. "Article #12".
func (i *Item) Label() string {
	if i.ID == 0 {
		return "new " + i.Type
	}
	return fmt.Sprintf("%s #%d", i.Type, i.ID)
}

// Values returns a snapshot of the field values including the identity field.
func (i *Item) Values() rules.Values {
	values := make(rules.Values, len(i.Fields)+1)
	maps.Copy(values, i.Fields)
	if i.ID != 0 {
		values[rules.IdentityField] = i.ID
	} else {
		delete(values, rules.IdentityField)
	}
	return values
}

// Assign copies the allowed keys of values into the item's fields.
func (i *Item) Assign(values map[string]any, allowed []string) {
	if i.Fields == nil {
		i.Fields = datatypes.JSONMap{}
	}
	for key, val := range values {
		if slices.Contains(allowed, key) {
			i.Fields[key] = val
		}
	}
}

func (i *Item) AddError(field, message string) {
	if i.Errors == nil {
		i.Errors = FieldErrors{}
	}
	i.Errors[field] = append(i.Errors[field], message)
}

func (i *Item) HasErrors() bool {
	return len(i.Errors) > 0
}

func (i *Item) ClearErrors() {
	i.Errors = nil
}
