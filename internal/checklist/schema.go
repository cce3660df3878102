// Package checklist validates driver checklist submissions against a form schema.
package checklist

// FieldType is the input kind of a form field.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldSelect   FieldType = "select"
	FieldCheckbox FieldType = "checkbox"
	FieldRadio    FieldType = "radio"
	FieldNumber   FieldType = "number"
	FieldDate     FieldType = "date"
	FieldTime     FieldType = "time"
	// FieldBoolean is a yes/no question; it behaves like a checkbox.
	FieldBoolean FieldType = "boolean"
)

type Option struct {
	Value interface{} `json:"value"`
	Label string      `json:"label"`
}

type Constraints struct {
	MinLength *int     `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
}

// Operator compares a dependency's field value against the rule value.
type Operator string

const (
	OpEquals    Operator = "equals"
	OpNotEquals Operator = "notEquals"
	OpIn        Operator = "in"
)

type Rule struct {
	FieldID  string      `json:"fieldId"`
	Operator Operator    `json:"operator"`
	Value    interface{} `json:"value"`
}

// Dependency makes a field visible only when its rules hold.
type Dependency struct {
	When  string `json:"when"` // "all" or "any"
	Rules []Rule `json:"rules"`
}

type Field struct {
	ID           string       `json:"id"`
	Type         FieldType    `json:"type"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	Required     bool         `json:"required,omitempty"`
	Constraints  *Constraints `json:"constraints,omitempty"`
	DependsOn    *Dependency  `json:"dependsOn,omitempty"`
	Options      []Option     `json:"options,omitempty"`
	DefaultValue interface{}  `json:"defaultValue,omitempty"`
}

// Schema is an ordered list of fields.
type Schema []Field

func (f Field) isBoolean() bool {
	return f.Type == FieldCheckbox || f.Type == FieldBoolean
}

func intPtr(v int) *int { return &v }
